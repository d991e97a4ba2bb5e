package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aistyleguide/internal/middleware"
	"aistyleguide/internal/models"
)

// BlogGenerate runs the blog pipeline for an admin and persists the post.
func (a *Admin) BlogGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.BlogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	req.AuthorName = sess.DisplayName
	req.AuthorEmail = sess.Email

	if !checkModeration(r.Context(), w, a.registry, req.Topic) {
		return
	}

	start := time.Now()
	post, err := a.blog.Generate(r.Context(), req)
	a.recorder.record("blog", start, err)
	if err != nil {
		writeGenerationError(w, r, "generate blog post", err)
		return
	}

	if post.Published && a.cache != nil {
		a.cache.InvalidatePost(r.Context(), post.Slug)
	}
	slog.Info("blog post generated", "slug", post.Slug, "published", post.Published, "by", sess.Email)
	writeSuccess(w, map[string]any{"post": post})
}

type patchPostRequest struct {
	Published *bool `json:"published"`
}

// BlogUpdate publishes or unpublishes a post.
func (a *Admin) BlogUpdate(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var req patchPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Published == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	post, err := a.posts.SetPublished(slug, *req.Published)
	if err != nil {
		slog.Error("update blog post failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "Could not update the post.")
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found.")
		return
	}
	if a.cache != nil {
		a.cache.InvalidatePost(r.Context(), slug)
	}
	writeSuccess(w, map[string]any{"post": post})
}

// BlogDelete removes a post. The request must carry confirm=true.
func (a *Admin) BlogDelete(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "Deleting a post requires confirm=true.")
		return
	}

	deleted, err := a.posts.Delete(slug)
	if err != nil {
		slog.Error("delete blog post failed", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "Could not delete the post.")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Post not found.")
		return
	}
	if a.cache != nil {
		a.cache.InvalidatePost(r.Context(), slug)
	}
	slog.Info("blog post deleted", "slug", slug)
	writeSuccess(w, nil)
}
