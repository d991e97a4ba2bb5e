package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const defaultTemperature = 0.7

// openAIProvider implements the Provider interface using the OpenAI
// chat completions API (POST /v1/chat/completions).
type openAIProvider struct {
	name   string
	config ProviderConfig
	client *http.Client
	// reasoning reports whether a model takes reasoning_effort and
	// max_completion_tokens instead of temperature and max_tokens.
	reasoning func(model string) bool
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &openAIProvider{
		name:      "openai",
		config:    cfg,
		client:    &http.Client{Timeout: 90 * time.Second},
		reasoning: IsReasoningModel,
	}
}

func (p *openAIProvider) Name() string { return p.name }

// IsReasoningModel reports whether an OpenAI model belongs to a reasoning
// family (o1, o3, o4, gpt-5).
func IsReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// buildRequest picks the request parameters for the model family.
func (p *openAIProvider) buildRequest(req Request) openAIRequest {
	model := modelFor(req, p.config)
	body := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	if p.reasoning(model) {
		body.MaxCompletionTokens = maxTokens(req.MaxTokens)
		if req.Effort != "" {
			body.ReasoningEffort = req.Effort
		} else {
			body.ReasoningEffort = "medium"
		}
	} else {
		t := defaultTemperature
		body.Temperature = &t
		body.MaxTokens = maxTokens(req.MaxTokens)
	}

	if req.Format == FormatJSON {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}
	return body
}

// Generate sends a chat completion request and returns the assistant's
// reply with token usage.
func (p *openAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	body := p.buildRequest(req)

	var result openAIResponse
	err := postJSON(ctx, p.client, p.name, p.config.BaseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.config.APIKey}, body, &result)
	if err != nil {
		return nil, err
	}

	if len(result.Choices) == 0 {
		return nil, errors.New(p.name + ": no choices returned")
	}

	return &Response{
		Content:  result.Choices[0].Message.Content,
		Provider: p.name,
		Model:    body.Model,
		Usage: Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}, nil
}

// --- OpenAI-compatible request/response types ---
// Used by both OpenAI and Mistral providers.

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model               string                `json:"model"`
	Messages            []openAIMessage       `json:"messages"`
	Temperature         *float64              `json:"temperature,omitempty"`
	MaxTokens           int                   `json:"max_tokens,omitempty"`
	MaxCompletionTokens int                   `json:"max_completion_tokens,omitempty"`
	ReasoningEffort     string                `json:"reasoning_effort,omitempty"`
	ResponseFormat      *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Usage   Usage          `json:"usage"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}
