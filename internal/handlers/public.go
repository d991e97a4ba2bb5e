// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aistyleguide/internal/cache"
	"aistyleguide/internal/markdown"
	"aistyleguide/internal/render"
)

// blogIndexLimit is how many posts the blog index lists.
const blogIndexLimit = 50

// Public renders the public blog. It checks the Valkey page cache before
// rendering and stores rendered pages on a miss.
type Public struct {
	renderer *render.Renderer
	posts    BlogPostStore
	cache    PageCache
	siteURL  string
}

// NewPublic creates the public handler group. cache may be nil.
func NewPublic(renderer *render.Renderer, posts BlogPostStore, pageCache PageCache, siteURL string) *Public {
	return &Public{renderer: renderer, posts: posts, cache: pageCache, siteURL: siteURL}
}

func (p *Public) cached(w http.ResponseWriter, r *http.Request, key string) bool {
	if p.cache == nil {
		return false
	}
	body, ok := p.cache.Get(r.Context(), key)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "HIT")
	w.Write(body)
	return true
}

// serve renders name, writes it and stores it under key.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, key, name string, data *render.PageData) {
	var buf bytes.Buffer
	if err := p.renderer.Execute(&buf, name, data); err != nil {
		slog.Error("render page failed", "error", err, "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p.cache != nil {
		p.cache.Set(r.Context(), key, buf.Bytes())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", "MISS")
	w.Write(buf.Bytes())
}

// BlogIndex lists published posts.
func (p *Public) BlogIndex(w http.ResponseWriter, r *http.Request) {
	if p.cached(w, r, cache.IndexKey()) {
		return
	}
	posts, err := p.posts.ListPublished(blogIndexLimit)
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.serve(w, r, cache.IndexKey(), "blog_list", &render.PageData{
		Title:       "Blog",
		Description: "Writing guides and brand voice advice.",
		SiteURL:     p.siteURL,
		Data:        map[string]any{"Posts": posts},
	})
}

// BlogPost renders one published post.
func (p *Public) BlogPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	key := cache.PostKey(slug)
	if p.cached(w, r, key) {
		return
	}

	post, err := p.posts.FindBySlug(slug)
	if err != nil {
		slog.Error("find post by slug failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil || !post.Published {
		p.renderer.Page(w, http.StatusNotFound, "not_found", &render.PageData{Title: "Not Found", SiteURL: p.siteURL})
		return
	}

	body, err := markdown.ToHTML(post.Content)
	if err != nil {
		slog.Error("render post markdown failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.serve(w, r, key, "blog_post", &render.PageData{
		Title:       post.Title,
		Description: post.Excerpt,
		SiteURL:     p.siteURL,
		Data: map[string]any{
			"Post": post,
			"Body": template.HTML(body),
		},
	})
}
