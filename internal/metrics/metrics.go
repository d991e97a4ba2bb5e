// Package metrics provides Prometheus metrics for observability.
// Metrics are organized by domain: HTTP requests, model calls, and
// generation orchestrations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aistyleguide"

var (
	// HTTP metrics - track request volume and latency
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// LLM metrics - one observation per provider call attempt
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of model calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Model call duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"provider"},
	)

	LLMRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Total number of retried model calls by provider and error kind",
		},
		[]string{"provider", "kind"},
	)

	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens reported by providers, by provider and direction",
		},
		[]string{"provider", "direction"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the generation rate limiter",
		},
	)

	// Orchestration metrics - one observation per generated document
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "total",
			Help:      "Total number of document generations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Document generation duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
		[]string{"kind"},
	)
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ObserveLLMCall records a single provider call attempt.
func ObserveLLMCall(provider string, err error, d time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	LLMCallsTotal.WithLabelValues(provider, outcome).Inc()
	LLMCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveTokens records provider reported token usage. Zero values are
// skipped so providers that report nothing leave no series behind.
func ObserveTokens(provider string, prompt, completion int) {
	if prompt > 0 {
		LLMTokensTotal.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		LLMTokensTotal.WithLabelValues(provider, "completion").Add(float64(completion))
	}
}

// ObserveRetry records that a failed call is about to be retried.
func ObserveRetry(provider, kind string) {
	LLMRetriesTotal.WithLabelValues(provider, kind).Inc()
}

// ObserveGeneration records one finished orchestration.
func ObserveGeneration(kind string, err error, d time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	GenerationsTotal.WithLabelValues(kind, outcome).Inc()
	GenerationDuration.WithLabelValues(kind).Observe(d.Seconds())
}
