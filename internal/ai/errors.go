package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrNotJSON is returned when a JSON response could not be decoded even
	// after sanitization.
	ErrNotJSON = errors.New("ai: response is not valid JSON")

	// ErrEmptyResponse is returned when the provider answered with no content.
	ErrEmptyResponse = errors.New("ai: empty response")
)

// APIError is a non-200 answer from a provider endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

const maxErrorBody = 500

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, body)
}

// ErrorKind is the closed set of provider failure classes.
type ErrorKind string

const (
	KindTimeout       ErrorKind = "timeout"
	KindRateLimit     ErrorKind = "rate_limit"
	KindQuota         ErrorKind = "quota"
	KindNetwork       ErrorKind = "network"
	KindContentPolicy ErrorKind = "content_policy"
	KindUnknown       ErrorKind = "unknown"
)

// Classify maps an error onto an ErrorKind. The HTTP status of an
// *APIError wins; the message text is only inspected afterwards.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		body := strings.ToLower(apiErr.Body)
		switch apiErr.StatusCode {
		case http.StatusPaymentRequired:
			return KindQuota
		case http.StatusTooManyRequests:
			if containsAny(body, "quota", "billing", "insufficient") {
				return KindQuota
			}
			return KindRateLimit
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return KindTimeout
		case http.StatusBadGateway, http.StatusServiceUnavailable:
			return KindNetwork
		case http.StatusBadRequest:
			if containsAny(body, "safety", "content_filter", "content policy", "content_policy") {
				return KindContentPolicy
			}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "etimedout"):
		return KindTimeout
	case containsAny(msg, "quota", "billing", "insufficient_quota"):
		return KindQuota
	case containsAny(msg, "429", "rate limit", "rate_limit", "too many requests"):
		return KindRateLimit
	case containsAny(msg, "econnreset", "econnrefused", "connection reset", "connection refused", "no such host", "eof"):
		return KindNetwork
	case containsAny(msg, "safety", "content_filter", "content policy", "moderation"):
		return KindContentPolicy
	}
	return KindUnknown
}

// HTTPStatus is the status a handler should answer with for this kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindQuota:
		return http.StatusPaymentRequired
	case KindNetwork:
		return http.StatusBadGateway
	case KindContentPolicy:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message is the user facing text for this kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindTimeout:
		return "The AI service took too long to respond. Please try again."
	case KindRateLimit:
		return "Too many requests right now. Please wait a moment and try again."
	case KindQuota:
		return "The AI service quota has been exhausted. Please try again later."
	case KindNetwork:
		return "Could not reach the AI service. Please check your connection and try again."
	case KindContentPolicy:
		return "The request was rejected by the AI content policy. Please revise your brand details."
	default:
		return "Something went wrong while generating content. Please try again."
	}
}

// Result is the outcome of a generation handed back to HTTP handlers.
type Result struct {
	Success bool      `json:"success"`
	Content string    `json:"content,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"-"`
}

// ResultOf builds a Result from a generation outcome.
func ResultOf(content string, err error) Result {
	if err != nil {
		kind := Classify(err)
		return Result{Error: kind.Message(), Kind: kind}
	}
	return Result{Success: true, Content: content}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
