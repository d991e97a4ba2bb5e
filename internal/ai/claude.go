// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// claudeProvider implements the Provider interface using the Anthropic
// Messages API (POST /v1/messages).
type claudeProvider struct {
	config ProviderConfig
	client *http.Client
}

// newClaude creates a new Anthropic Claude provider.
func newClaude(cfg ProviderConfig) *claudeProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	return &claudeProvider{
		config: cfg,
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *claudeProvider) Name() string { return "claude" }

// Generate sends a message to the Anthropic Messages API. The Messages API
// has no JSON mode; JSON requests rely on the prompt and the sanitizer.
func (p *claudeProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body := claudeRequest{
		Model:     modelFor(req, p.config),
		MaxTokens: maxTokens(req.MaxTokens),
		System:    req.System,
		Messages: []claudeMessage{
			{Role: "user", Content: req.User},
		},
	}

	headers := map[string]string{
		"x-api-key":         p.config.APIKey,
		"anthropic-version": "2023-06-01",
	}

	var result claudeResponse
	if err := postJSON(ctx, p.client, "claude", p.config.BaseURL+"/v1/messages", headers, body, &result); err != nil {
		return nil, err
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return &Response{
				Content:  block.Text,
				Provider: "claude",
				Model:    body.Model,
				Usage: Usage{
					PromptTokens:     result.Usage.InputTokens,
					CompletionTokens: result.Usage.OutputTokens,
					TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
				},
			}, nil
		}
	}

	return nil, errors.New("claude: no text content in response")
}

// --- Anthropic Messages API types ---

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
	Usage   claudeUsage          `json:"usage"`
}
