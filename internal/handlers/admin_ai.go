package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"aistyleguide/internal/middleware"
)

// knownProviders lists every provider the registry can construct, in
// display order.
var knownProviders = []struct {
	Name  string
	Label string
	Env   string
}{
	{"openai", "OpenAI", "OPENAI_API_KEY"},
	{"gemini", "Google Gemini", "GEMINI_API_KEY"},
	{"claude", "Anthropic Claude", "CLAUDE_API_KEY"},
	{"mistral", "Mistral", "MISTRAL_API_KEY"},
}

// AIProviderInfo describes one provider for the admin settings view.
// API keys are never exposed.
type AIProviderInfo struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	HasKey    bool   `json:"hasKey"`
	Active    bool   `json:"active"`
	KeyEnvVar string `json:"keyEnvVar"`
}

// AIProviders lists the providers and which one is active.
func (a *Admin) AIProviders(w http.ResponseWriter, r *http.Request) {
	active := a.registry.ActiveName()
	list := make([]AIProviderInfo, 0, len(knownProviders))
	for _, p := range knownProviders {
		list = append(list, AIProviderInfo{
			Name:      p.Name,
			Label:     p.Label,
			HasKey:    a.registry.HasProvider(p.Name),
			Active:    p.Name == active,
			KeyEnvVar: p.Env,
		})
	}
	writeSuccess(w, map[string]any{
		"active":    active,
		"model":     a.registry.ActiveModel(),
		"providers": list,
	})
}

type setProviderRequest struct {
	Provider string `json:"provider"`
}

// AISetProvider switches the active provider at runtime.
func (a *Admin) AISetProvider(w http.ResponseWriter, r *http.Request) {
	var req setProviderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if err := a.registry.SetActive(name); err != nil {
		writeError(w, http.StatusBadRequest, "Provider "+name+" is not available. Check that its API key is configured.")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	slog.Info("ai provider switched", "provider", name, "by", sess.Email)
	writeSuccess(w, map[string]any{"active": name})
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Generations lists the most recent generation log rows. ?limit= caps the
// count.
func (a *Admin) Generations(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Limit must be a positive number.")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	if a.history == nil {
		writeSuccess(w, map[string]any{"generations": []any{}})
		return
	}
	rows, err := a.history.Recent(limit)
	if err != nil {
		slog.Error("list generation log failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not load generation history.")
		return
	}
	writeSuccess(w, map[string]any{"generations": rows})
}
