// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the AI Style Guide
// service. Handlers are grouped by concern (generation API, accounts,
// admin, public blog) and receive their dependencies through the handler
// struct. Dependencies are interfaces so handlers can be tested without
// PostgreSQL, Valkey or a model provider.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/billing"
	"aistyleguide/internal/middleware"
	"aistyleguide/internal/models"
	"aistyleguide/internal/session"
	"aistyleguide/internal/styleguide"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// StyleGuideGenerator produces previews, full guides and section rewrites.
type StyleGuideGenerator interface {
	Preview(ctx context.Context, b models.BrandDetails) (*styleguide.Result, error)
	Generate(ctx context.Context, b models.BrandDetails, plan models.Plan, cached *models.TraitCache) (*styleguide.Result, error)
	RewriteSection(ctx context.Context, b models.BrandDetails, section, instruction string) (string, error)
	TraitTTL() time.Duration
}

// BrandExtractor turns a website or free text into brand details.
type BrandExtractor interface {
	FromURL(ctx context.Context, rawURL string) (models.BrandDetails, error)
	FromDescription(ctx context.Context, description string) (models.BrandDetails, error)
}

// BlogGenerator runs the research, outline and article pipeline.
type BlogGenerator interface {
	Generate(ctx context.Context, req models.BlogRequest) (*models.BlogPost, error)
}

// ProviderRegistry is the runtime view of configured model providers.
type ProviderRegistry interface {
	ActiveName() string
	ActiveModel() string
	Available() []string
	HasProvider(name string) bool
	SetActive(name string) error
	CheckPrompt(ctx context.Context, text string) (*ai.ModerationResult, error)
}

// Sessions manages login sessions.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// UserStore persists accounts.
type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	FindByStripeCustomer(customerID string) (*models.User, error)
	Create(email, password, displayName string, role models.Role) (*models.User, error)
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	SetSubscription(userID uuid.UUID, tier models.Tier, customerID string) error
	CheckPassword(user *models.User, password string) bool
}

// StyleGuideStore persists generated guides.
type StyleGuideStore interface {
	Save(g *models.StyleGuide) (*models.StyleGuide, error)
	FindForUser(id, userID uuid.UUID) (*models.StyleGuide, error)
	LatestForUser(userID uuid.UUID) (*models.StyleGuide, error)
}

// BlogPostStore reads and updates blog posts.
type BlogPostStore interface {
	FindBySlug(slug string) (*models.BlogPost, error)
	ListPublished(limit int) ([]models.BlogPost, error)
	SetPublished(slug string, published bool) (*models.BlogPost, error)
	Delete(slug string) (bool, error)
}

// GenerationLogger records one audit row per orchestration and lists
// recent rows for the admin.
type GenerationLogger interface {
	Log(e models.GenerationLog)
	Recent(limit int) ([]models.GenerationLog, error)
}

// PageCache stores rendered public pages.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidatePost(ctx context.Context, slug string)
}

// Billing is the payment provider client.
type Billing interface {
	Enabled() bool
	WebhookEnabled() bool
	CreateCheckoutSession(ctx context.Context, p billing.CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ParseEvent(payload []byte, header string) (*billing.Event, error)
}

// writeJSON encodes data with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

// writeSuccess writes {"success": true, ...payload}.
func writeSuccess(w http.ResponseWriter, payload map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeError writes {"success": false, "error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// decodeJSON reads a JSON body into dst and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large.")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON request body.")
		return false
	}
	return true
}

// validationMessage flattens ozzo validation errors into one sentence.
func validationMessage(err error) string {
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, field := range []string{"name", "description", "audience", "keywords", "englishVariant", "formalityLevel", "readingLevel", "traits", "url", "topic", "category"} {
			if fe, ok := errs[field]; ok && fe != nil {
				return capitalize(fe.Error()) + "."
			}
		}
	}
	return capitalize(err.Error()) + "."
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// writeGenerationError maps a failed generation onto the classified
// status and user facing message.
func writeGenerationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	kind := ai.Classify(err)
	slog.Error(op+" failed",
		"error", err,
		"kind", kind,
		"request_id", middleware.RequestIDFromCtx(r.Context()),
	)
	res := ai.ResultOf("", err)
	writeError(w, kind.HTTPStatus(), res.Error)
}

// generationRecorder writes a generation log row for one orchestration.
type generationRecorder struct {
	log      GenerationLogger
	registry ProviderRegistry
}

func (g generationRecorder) record(kind string, start time.Time, err error) {
	if g.log == nil {
		return
	}
	entry := models.GenerationLog{
		Kind:       kind,
		Success:    err == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if g.registry != nil {
		entry.Provider = g.registry.ActiveName()
		entry.Model = g.registry.ActiveModel()
	}
	if err != nil {
		entry.ErrorKind = string(ai.Classify(err))
	}
	g.log.Log(entry)
}

// checkModeration rejects brand text flagged by the moderation API. A
// failing moderation call does not block generation.
func checkModeration(ctx context.Context, w http.ResponseWriter, registry ProviderRegistry, text string) bool {
	if registry == nil || text == "" {
		return true
	}
	res, err := registry.CheckPrompt(ctx, text)
	if err != nil {
		slog.Warn("moderation check failed", "error", err)
		return true
	}
	if !res.Safe {
		writeError(w, http.StatusBadRequest, "Your input was flagged by content moderation ("+categoryList(res.Categories)+"). Please revise it.")
		return false
	}
	return true
}

func categoryList(cats []string) string {
	if len(cats) == 0 {
		return "policy"
	}
	return strings.Join(cats, ", ")
}
