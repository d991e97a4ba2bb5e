// Package search queries the Firecrawl search API for blog research.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"aistyleguide/internal/models"
)

const (
	defaultBaseURL = "https://api.firecrawl.dev"
	defaultLimit   = 5
	attempts       = 2
	retryDelay     = 2 * time.Second
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("search: firecrawl API key not configured")

// Client calls POST /v1/search and returns scraped markdown per result.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	delay   time.Duration
}

// New creates a search client. An empty apiKey yields a client whose
// Search always fails with ErrNotConfigured.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		delay:   retryDelay,
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type searchRequest struct {
	Query         string        `json:"query"`
	Limit         int           `json:"limit"`
	ScrapeOptions scrapeOptions `json:"scrapeOptions"`
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

type searchResponse struct {
	Success bool           `json:"success"`
	Data    []searchResult `json:"data"`
	Error   string         `json:"error"`
}

type searchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Markdown    string `json:"markdown"`
}

// Search runs a query and returns up to limit research notes. Results
// without any text are dropped. The call is attempted twice.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.ResearchNote, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	body := searchRequest{
		Query:         query,
		Limit:         limit,
		ScrapeOptions: scrapeOptions{Formats: []string{"markdown"}},
	}

	var result searchResponse
	backoff := retry.WithMaxRetries(attempts-1, retry.BackoffFunc(func() (time.Duration, bool) { return c.delay, false }))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result = searchResponse{}
		if err := c.post(ctx, body, &result); err != nil {
			slog.Warn("firecrawl search failed", "query", query, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notes := make([]models.ResearchNote, 0, len(result.Data))
	for _, r := range result.Data {
		text := r.Markdown
		if strings.TrimSpace(text) == "" {
			text = r.Description
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		notes = append(notes, models.ResearchNote{Title: r.Title, URL: r.URL, Markdown: text})
	}
	return notes, nil
}

func (c *Client) post(ctx context.Context, body searchRequest, out *searchResponse) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("firecrawl marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("firecrawl request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("firecrawl http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("firecrawl read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firecrawl API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("firecrawl unmarshal: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("firecrawl: %s", out.Error)
	}
	return nil
}
