// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"net/http"
	"time"
)

// newMistral creates a Mistral provider. Mistral's chat completions API is
// OpenAI-compatible, so it reuses the OpenAI provider with a different
// base URL. Mistral has no reasoning-effort parameter, so every model
// takes temperature and max_tokens.
func newMistral(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	return &openAIProvider{
		name:      "mistral",
		config:    cfg,
		client:    &http.Client{Timeout: 90 * time.Second},
		reasoning: func(string) bool { return false },
	}
}
