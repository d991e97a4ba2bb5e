// Package router sets up all HTTP routes and middleware chains for the
// AI Style Guide service. It organizes routes into the public JSON API,
// the admin API and the public blog pages with appropriate middleware
// stacks.
package router

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aistyleguide/internal/handlers"
	"aistyleguide/internal/middleware"
	"aistyleguide/web"
)

// healthTimeout bounds every dependency check in /health.
const healthTimeout = 2 * time.Second

// Handlers bundles the handler groups served by the router.
type Handlers struct {
	API           *handlers.API
	Account       *handlers.Account
	Subscriptions *handlers.Subscriptions
	Export        *handlers.Export
	Admin         *handlers.Admin
	Public        *handlers.Public
}

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// Options configures the middleware stack.
type Options struct {
	Sessions      middleware.SessionLoader
	SecureCookies bool
	// GenerateLimiter rate-limits the generation endpoints. May be nil.
	GenerateLimiter *middleware.RateLimiter
	Health          map[string]HealthCheck
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.NewSecureHeaders(opts.SecureCookies))
	r.Use(middleware.LoadSession(opts.Sessions))

	limit := func(next http.Handler) http.Handler { return next }
	if opts.GenerateLimiter != nil {
		limit = opts.GenerateLimiter.Middleware
	}
	csrf := middleware.NewCSRF(opts.SecureCookies)

	// Health and metrics: no auth, no CSRF.
	r.Get("/health", healthHandler(opts.Health))
	r.Handle("/metrics", promhttp.Handler())

	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Route("/api", func(r chi.Router) {
		// Generation endpoints call the model provider.
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/extract-website", h.API.ExtractWebsite)
			r.Post("/preview", h.API.Preview)
			r.Post("/generate-styleguide", h.API.GenerateStyleGuide)
			r.Post("/rewrite-section", h.API.RewriteSection)
		})

		// Anonymous wizard progress.
		r.Get("/state", h.API.GetState)
		r.Put("/state/{key}", h.API.PutState)
		r.Delete("/state", h.API.DeleteState)
		r.Delete("/state/{key}", h.API.DeleteState)

		r.Post("/export", h.Export.Download)
		r.Post("/export-pdf", h.Export.ExportPDF)

		r.Post("/auth/signup", h.Account.Signup)
		r.Post("/auth/login", h.Account.Login)
		r.Post("/auth/logout", h.Account.Logout)

		r.Post("/stripe/webhook", h.Subscriptions.Webhook)

		// Signed-in customers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/export/share", h.Export.Share)
			r.Post("/save-style-guide", h.Account.SaveStyleGuide)
			r.Get("/load-style-guide", h.Account.LoadStyleGuide)
			r.Get("/user-subscription-tier", h.Account.SubscriptionTier)
			r.Post("/create-subscription-session", h.Subscriptions.CreateCheckoutSession)
			r.Post("/create-portal-session", h.Subscriptions.CreatePortalSession)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(csrf)

			// Accessible without a completed login.
			r.Get("/session", h.Admin.Session)
			r.Post("/login", h.Admin.Login)
			r.Post("/logout", h.Admin.Logout)
			r.Get("/2fa/setup", h.Admin.TwoFASetup)
			r.Post("/2fa/verify", h.Admin.TwoFAVerify)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/ai/providers", h.Admin.AIProviders)
				r.Post("/ai/provider", h.Admin.AISetProvider)
				r.Get("/generations", h.Admin.Generations)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Use(csrf)
			r.Use(middleware.RequireAdmin)
			r.With(limit).Post("/generate", h.Admin.BlogGenerate)
			r.Patch("/{slug}", h.Admin.BlogUpdate)
			r.Delete("/{slug}", h.Admin.BlogDelete)
		})
	})

	// Public blog pages.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/blog", http.StatusFound)
	})
	r.Get("/blog", h.Public.BlogIndex)
	r.Get("/blog/{slug}", h.Public.BlogPost)

	return r
}

// healthHandler reports ok when every dependency check passes and 503
// otherwise.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{"status": "ok"}

		if len(checks) > 0 {
			results := make(map[string]string, len(checks))
			for name, check := range checks {
				ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
				err := check(ctx)
				cancel()
				if err != nil {
					results[name] = err.Error()
					status = http.StatusServiceUnavailable
					body["status"] = "degraded"
					continue
				}
				results[name] = "ok"
			}
			body["checks"] = results
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
