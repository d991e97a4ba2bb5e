package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aistyleguide/internal/models"
	"aistyleguide/internal/state"
)

// maxStateBytes caps a single stored state value.
const maxStateBytes = 256 << 10

// GetState returns every stored entry for the anonymous client.
func (a *API) GetState(w http.ResponseWriter, r *http.Request) {
	client := state.ClientID(w, r, a.secure)
	all, err := a.state.Repository().All(r.Context(), client)
	if err != nil {
		slog.Error("load client state failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not load saved progress.")
		return
	}
	entries := make(map[string]json.RawMessage, len(all))
	for k, v := range all {
		entries[string(k)] = v
	}
	writeSuccess(w, map[string]any{"state": entries})
}

// PutState replaces one entry. The body must decode as the entry's type.
func (a *API) PutState(w http.ResponseWriter, r *http.Request) {
	key, err := state.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown state key.")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxStateBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body is too large.")
		return
	}
	if err := checkStateValue(key, body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid value for "+string(key)+".")
		return
	}

	client := state.ClientID(w, r, a.secure)
	if err := a.state.Repository().Set(r.Context(), client, key, body); err != nil {
		slog.Error("save client state failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Could not save progress.")
		return
	}
	writeSuccess(w, nil)
}

// DeleteState clears one entry when a key is given, otherwise everything.
func (a *API) DeleteState(w http.ResponseWriter, r *http.Request) {
	client := state.ClientID(w, r, a.secure)
	ctx := r.Context()

	if raw := chi.URLParam(r, "key"); raw != "" {
		key, err := state.ParseKey(raw)
		if err != nil {
			writeError(w, http.StatusNotFound, "Unknown state key.")
			return
		}
		if err := a.state.Repository().Delete(ctx, client, key); err != nil {
			slog.Error("delete client state failed", "error", err, "key", key)
			writeError(w, http.StatusInternalServerError, "Could not clear progress.")
			return
		}
		writeSuccess(w, nil)
		return
	}

	if err := a.state.Clear(ctx, client); err != nil {
		slog.Error("clear client state failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not clear progress.")
		return
	}
	writeSuccess(w, nil)
}

// checkStateValue decodes body into the Go type stored under key.
func checkStateValue(key state.Key, body []byte) error {
	var v any
	switch key {
	case state.KeyBrandDetails:
		v = &models.BrandDetails{}
	case state.KeySelectedTraits, state.KeyKeywords:
		v = &[]string{}
	case state.KeyPreviewContent, state.KeyGeneratedStyleGuide:
		v = new(string)
	case state.KeyPreviewTraits:
		v = &models.TraitCache{}
	case state.KeyEmailCapture:
		v = &state.EmailCapture{}
	case state.KeyPaymentStatus:
		v = &state.PaymentStatus{}
	case state.KeyPlan:
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return err
		}
		_, err := models.ParsePlan(s)
		return err
	}
	return json.Unmarshal(body, v)
}
