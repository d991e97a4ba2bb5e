// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"aistyleguide/internal/metrics"
	"aistyleguide/internal/sanitize"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

// RetryConfig bounds the retry loop. Delay grows linearly: the wait before
// attempt n+1 is Delay*n.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// Client wraps a Provider with bounded retries, metrics and logging.
type Client struct {
	provider Provider
	retry    RetryConfig
}

// NewClient returns a Client. Zero values in cfg fall back to the defaults.
func NewClient(p Provider, cfg RetryConfig) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &Client{provider: p, retry: cfg}
}

// ProviderName returns the name of the wrapped provider.
func (c *Client) ProviderName() string { return c.provider.Name() }

// linearBackoff yields base, 2*base, 3*base, ...
func linearBackoff(base time.Duration) retry.Backoff {
	var n int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return base * time.Duration(n), false
	})
}

// Generate calls the provider until it returns non-empty content or the
// attempt budget runs out. The last error is returned unchanged. Code
// fences around the reply are stripped; a reply that is only fences counts
// as empty.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	format := req.Format
	if format == "" {
		format = FormatMarkdown
	}
	return c.do(ctx, req, func(resp *Response) error {
		cleaned := sanitize.Clean(resp.Content, format)
		if cleaned == "" {
			return ErrEmptyResponse
		}
		resp.Content = cleaned
		return nil
	})
}

// GenerateJSON requests JSON output and decodes it into out. Responses that
// do not decode count as failed attempts.
func (c *Client) GenerateJSON(ctx context.Context, req Request, out interface{}) (*Response, error) {
	req.Format = FormatJSON
	return c.do(ctx, req, func(resp *Response) error {
		cleaned := sanitize.Clean(resp.Content, sanitize.FormatJSON)
		if err := json.Unmarshal([]byte(cleaned), out); err != nil {
			return fmt.Errorf("%w: %v", ErrNotJSON, err)
		}
		resp.Content = cleaned
		return nil
	})
}

func (c *Client) do(ctx context.Context, req Request, check func(*Response) error) (*Response, error) {
	name := c.provider.Name()
	backoff := retry.WithMaxRetries(uint64(c.retry.MaxAttempts-1), linearBackoff(c.retry.Delay))

	var (
		result  *Response
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		start := time.Now()
		resp, err := c.provider.Generate(ctx, req)
		if err == nil && resp.Content == "" {
			err = ErrEmptyResponse
		}
		if err == nil {
			err = check(resp)
		}
		elapsed := time.Since(start)
		metrics.ObserveLLMCall(name, err, elapsed)

		if err != nil {
			kind := Classify(err)
			slog.Warn("llm call failed",
				"provider", name,
				"model", req.Model,
				"attempt", attempt,
				"max_attempts", c.retry.MaxAttempts,
				"duration", elapsed,
				"kind", kind,
				"error", err,
			)
			if attempt < c.retry.MaxAttempts {
				metrics.ObserveRetry(name, string(kind))
			}
			return retry.RetryableError(err)
		}

		metrics.ObserveTokens(name, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		slog.Info("llm call",
			"provider", name,
			"model", resp.Model,
			"attempt", attempt,
			"duration", elapsed,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
			"total_tokens", resp.Usage.TotalTokens,
		)
		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
