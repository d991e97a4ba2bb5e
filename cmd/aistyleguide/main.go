// Package main is the entry point for the AI Style Guide server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/billing"
	"aistyleguide/internal/blog"
	"aistyleguide/internal/cache"
	"aistyleguide/internal/config"
	"aistyleguide/internal/database"
	"aistyleguide/internal/engine"
	"aistyleguide/internal/export"
	"aistyleguide/internal/extract"
	"aistyleguide/internal/handlers"
	"aistyleguide/internal/middleware"
	"aistyleguide/internal/render"
	"aistyleguide/internal/router"
	"aistyleguide/internal/search"
	"aistyleguide/internal/session"
	"aistyleguide/internal/state"
	"aistyleguide/internal/storage"
	"aistyleguide/internal/store"
	"aistyleguide/internal/styleguide"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Text output in development, JSON everywhere else.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.Seed(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	// Valkey backs sessions, client state and the page cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	secure := cfg.SecureCookies()
	sessionStore := session.NewStore(valkeyClient, secure)
	stateStore := state.NewStore(state.NewValkeyRepository(valkeyClient, state.DefaultTTL))
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	userStore := store.NewUserStore(db)
	guideStore := store.NewStyleGuideStore(db)
	postStore := store.NewBlogPostStore(db)
	genLog := store.NewGenerationLogStore(db)

	registry := ai.NewRegistry(cfg.AIProvider, cfg.AIProviders())
	slog.Info("ai providers initialized", "active", registry.ActiveName(), "available", registry.Available())
	client := ai.NewClient(registry, cfg.RetryConfig())

	eng, err := engine.New(cfg.TemplateDir)
	if err != nil {
		return err
	}
	if cfg.TemplateDir != "" && cfg.IsDev() {
		go func() {
			if err := eng.Watch(ctx); err != nil {
				slog.Warn("template watcher stopped", "error", err)
			}
		}()
	}

	renderer, err := render.New()
	if err != nil {
		return err
	}

	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	if err != nil {
		return err
	}
	var uploader export.Uploader
	if storageClient != nil {
		uploader = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, share links disabled")
	}

	researcher := search.New(cfg.FirecrawlKey, cfg.FirecrawlBaseURL)
	if !researcher.Enabled() {
		slog.Warn("web research not configured, blog posts are generated without sources")
	}

	billingClient := billing.NewClient(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceCore:     cfg.StripePriceCore,
		PriceComplete: cfg.StripePriceComplete,
	})
	if !billingClient.Enabled() {
		slog.Warn("stripe not configured, paid plans cannot be purchased")
	}

	guides := styleguide.NewService(client, eng, cfg.TraitCacheTTL)
	extractor := extract.NewService(client, extract.NewScraper())
	blogService := blog.NewService(client, researcher, postStore)

	account := handlers.NewAccount(sessionStore, userStore, guideStore)
	h := router.Handlers{
		API:           handlers.NewAPI(guides, extractor, stateStore, userStore, guideStore, registry, genLog, secure),
		Account:       account,
		Subscriptions: handlers.NewSubscriptions(billingClient, userStore, account, cfg.SiteURL),
		Export:        handlers.NewExport(export.New(renderer, uploader)),
		Admin:         handlers.NewAdmin(sessionStore, userStore, blogService, postStore, pageCache, registry, genLog),
		Public:        handlers.NewPublic(renderer, postStore, pageCache, cfg.SiteURL),
	}

	r := router.New(h, router.Options{
		Sessions:        sessionStore,
		SecureCookies:   secure,
		GenerateLimiter: middleware.NewRateLimiter(cfg.GenerateRateLimit, cfg.GenerateRateWindow),
		Health: map[string]router.HealthCheck{
			"database": db.PingContext,
			"valkey": func(ctx context.Context) error {
				return valkeyClient.Ping(ctx).Err()
			},
		},
	})

	// WriteTimeout must cover a complete guide, which chains several
	// model calls with retries.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
