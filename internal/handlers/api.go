package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"aistyleguide/internal/extract"
	"aistyleguide/internal/middleware"
	"aistyleguide/internal/models"
	"aistyleguide/internal/session"
	"aistyleguide/internal/state"
)

// API groups the generation endpoints used by the style guide wizard.
type API struct {
	guides    StyleGuideGenerator
	extractor BrandExtractor
	state     *state.Store
	users     UserStore
	saved     StyleGuideStore
	registry  ProviderRegistry
	recorder  generationRecorder
	secure    bool
}

// NewAPI creates the generation handler group. registry and genLog may be
// nil.
func NewAPI(guides StyleGuideGenerator, extractor BrandExtractor, st *state.Store, users UserStore, saved StyleGuideStore, registry ProviderRegistry, genLog GenerationLogger, secure bool) *API {
	return &API{
		guides:    guides,
		extractor: extractor,
		state:     st,
		users:     users,
		saved:     saved,
		registry:  registry,
		recorder:  generationRecorder{log: genLog, registry: registry},
		secure:    secure,
	}
}

type extractRequest struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ExtractWebsite derives brand details from a website URL or, when no URL
// is given, from a free text description.
func (a *API) ExtractWebsite(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	req.Description = strings.TrimSpace(req.Description)
	if req.URL == "" && req.Description == "" {
		writeError(w, http.StatusBadRequest, "Provide a website URL or a description.")
		return
	}

	start := time.Now()
	var (
		brand models.BrandDetails
		err   error
		kind  = "extract_url"
	)
	if req.URL != "" {
		brand, err = a.extractor.FromURL(r.Context(), req.URL)
	} else {
		kind = "extract_description"
		if !checkModeration(r.Context(), w, a.registry, req.Description) {
			return
		}
		brand, err = a.extractor.FromDescription(r.Context(), req.Description)
	}
	a.recorder.record(kind, start, err)

	if errors.Is(err, extract.ErrNoText) {
		writeError(w, http.StatusUnprocessableEntity, "We could not find readable text on that website. Try describing your brand instead.")
		return
	}
	if err != nil {
		writeGenerationError(w, r, "extract brand", err)
		return
	}

	client := state.ClientID(w, r, a.secure)
	if err := a.state.SetBrandDetails(r.Context(), client, brand); err != nil {
		slog.Warn("save brand details to state failed", "error", err)
	}
	writeSuccess(w, map[string]any{"brandDetails": brand})
}

type brandRequest struct {
	BrandDetails models.BrandDetails `json:"brandDetails"`
	Plan         string              `json:"plan"`
}

// prepareBrand normalizes and validates the brand details and runs them
// through moderation. It writes the response and returns false on failure.
func (a *API) prepareBrand(w http.ResponseWriter, r *http.Request, b *models.BrandDetails) bool {
	b.Normalize()
	if err := b.ValidateForGeneration(); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return checkModeration(r.Context(), w, a.registry, strings.Join([]string{b.Name, b.Description, b.Audience}, "\n"))
}

// Preview generates the free preview and remembers its traits so a later
// full generation can reuse them.
func (a *API) Preview(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !a.prepareBrand(w, r, &req.BrandDetails) {
		return
	}

	start := time.Now()
	res, err := a.guides.Preview(r.Context(), req.BrandDetails)
	a.recorder.record("preview", start, err)
	if err != nil {
		writeGenerationError(w, r, "generate preview", err)
		return
	}

	ctx := r.Context()
	client := state.ClientID(w, r, a.secure)
	if err := a.state.SetBrandDetails(ctx, client, req.BrandDetails); err != nil {
		slog.Warn("save brand details to state failed", "error", err)
	}
	if err := a.state.SetPreviewContent(ctx, client, res.Content); err != nil {
		slog.Warn("save preview to state failed", "error", err)
	}
	if err := a.state.SetPreviewTraits(ctx, client, res.Traits); err != nil {
		slog.Warn("save preview traits to state failed", "error", err)
	}

	writeSuccess(w, map[string]any{
		"content":             res.Content,
		"traits":              res.Traits.Content,
		"generatedAt":         res.Traits.GeneratedAt,
		"traitsReusableUntil": res.Traits.GeneratedAt.Add(a.guides.TraitTTL()),
	})
}

// GenerateStyleGuide generates the guide for the requested plan. Paid
// plans need a signed-in customer whose tier covers the plan.
func (a *API) GenerateStyleGuide(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := models.ParsePlan(req.Plan)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown plan.")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if plan != models.PlanPreview {
		if !sess.Authenticated() {
			writeError(w, http.StatusUnauthorized, "Please sign in to generate a full style guide.")
			return
		}
		if !a.tierAllows(w, sess, plan) {
			return
		}
	}
	if !a.prepareBrand(w, r, &req.BrandDetails) {
		return
	}

	ctx := r.Context()
	client := state.ClientID(w, r, a.secure)
	cached, err := a.state.PreviewTraits(ctx, client)
	if err != nil {
		slog.Warn("read cached traits failed", "error", err)
		cached = nil
	}

	start := time.Now()
	res, err := a.guides.Generate(ctx, req.BrandDetails, plan, cached)
	a.recorder.record("styleguide_"+string(plan), start, err)
	if err != nil {
		writeGenerationError(w, r, "generate style guide", err)
		return
	}

	if err := a.state.SetGeneratedStyleGuide(ctx, client, res.Content); err != nil {
		slog.Warn("save style guide to state failed", "error", err)
	}
	if err := a.state.SetPlan(ctx, client, plan); err != nil {
		slog.Warn("save plan to state failed", "error", err)
	}
	if !res.TraitsReused && res.Traits.Content != "" {
		if err := a.state.SetPreviewTraits(ctx, client, res.Traits); err != nil {
			slog.Warn("save preview traits to state failed", "error", err)
		}
	}

	payload := map[string]any{"content": res.Content, "plan": res.Plan, "traitsReused": res.TraitsReused}
	if sess.Authenticated() && plan != models.PlanPreview && a.saved != nil {
		guide, err := a.saved.Save(&models.StyleGuide{
			UserID:       sess.UserID,
			Title:        req.BrandDetails.Name + " Style Guide",
			Plan:         plan,
			BrandDetails: req.BrandDetails,
			Content:      res.Content,
		})
		if err != nil {
			slog.Warn("auto-save style guide failed", "error", err, "user_id", sess.UserID)
		} else if guide != nil {
			payload["id"] = guide.ID
		}
	}
	writeSuccess(w, payload)
}

// tierAllows checks the customer's subscription against the plan.
func (a *API) tierAllows(w http.ResponseWriter, sess *session.Data, plan models.Plan) bool {
	if sess.IsAdmin() {
		return true
	}
	user, err := a.users.FindByID(sess.UserID)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return false
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Please sign in to generate a full style guide.")
		return false
	}
	if !user.Tier().Allows(plan) {
		writeError(w, http.StatusPaymentRequired, "Your subscription does not include the "+string(plan)+" plan.")
		return false
	}
	return true
}

type rewriteRequest struct {
	BrandDetails models.BrandDetails `json:"brandDetails"`
	Section      string              `json:"section"`
	Instruction  string              `json:"instruction"`
}

// maxSectionLen caps the section text sent for a rewrite.
const maxSectionLen = 20_000

// RewriteSection rewrites one section of a guide.
func (a *API) RewriteSection(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Section) == "" {
		writeError(w, http.StatusBadRequest, "Section content is required.")
		return
	}
	if len(req.Section) > maxSectionLen {
		writeError(w, http.StatusBadRequest, "Section is too long.")
		return
	}
	req.BrandDetails.Normalize()
	if err := req.BrandDetails.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if !checkModeration(r.Context(), w, a.registry, req.Instruction) {
		return
	}

	start := time.Now()
	content, err := a.guides.RewriteSection(r.Context(), req.BrandDetails, req.Section, req.Instruction)
	a.recorder.record("rewrite", start, err)
	if err != nil {
		writeGenerationError(w, r, "rewrite section", err)
		return
	}
	writeSuccess(w, map[string]any{"content": content})
}
