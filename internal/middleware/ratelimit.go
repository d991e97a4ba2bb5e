// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"aistyleguide/internal/metrics"
)

// sweepInterval is how often idle clients are dropped.
const sweepInterval = 5 * time.Minute

// RateLimiter allows each client IP at most limit requests in any sliding
// window. It guards the model-backed generation endpoints.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
	stop   chan struct{}
}

// NewRateLimiter creates a limiter and starts its sweeper. Call Stop to
// end the sweeper.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop ends the background sweeper.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) sweepLoop() {
	t := time.NewTicker(sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// recent drops timestamps older than the window. Callers hold mu.
func (rl *RateLimiter) recent(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	ts := rl.hits[key]
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// allow records a request for key. When the key is over the limit it
// returns false and the time until the oldest request leaves the window.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	ts := rl.recent(key, now)
	if len(ts) >= rl.limit {
		rl.hits[key] = ts
		return false, ts[0].Add(rl.window).Sub(now)
	}
	rl.hits[key] = append(ts, now)
	return true, 0
}

// cleanup forgets clients with nothing left in the window.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key := range rl.hits {
		if ts := rl.recent(key, now); len(ts) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = ts
		}
	}
}

// Middleware rejects over-limit clients with 429, a Retry-After header in
// whole seconds and the JSON error envelope.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(clientIP(r))
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		metrics.RateLimitedTotal.Inc()
		secs := int((wait + time.Second - 1) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
		WriteError(w, http.StatusTooManyRequests, "Too many generation requests. Please wait a moment and try again.")
	})
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
