package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecoverer(t *testing.T) {
	t.Run("passes through without panic", func(t *testing.T) {
		next, called := okHandler()
		rr := httptest.NewRecorder()
		Recoverer(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if !*called || rr.Code != http.StatusOK {
			t.Errorf("called=%v status=%d", *called, rr.Code)
		}
	})

	t.Run("recovers from panic", func(t *testing.T) {
		h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status: got %d, want 500", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
		if strings.Contains(rr.Body.String(), "boom") {
			t.Error("panic value must not leak to the client")
		}
	})
}
