// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is a marketing article produced by the admin generator.
type BlogPost struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt"`
	Category    string     `json:"category"`
	Keywords    []string   `json:"keywords"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AuthorName  string     `json:"author_name"`
	AuthorEmail string     `json:"author_email"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BlogRequest describes one blog generation run.
type BlogRequest struct {
	Topic       string   `json:"topic" yaml:"topic"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Category    string   `json:"category" yaml:"category"`
	Publish     bool     `json:"publish" yaml:"publish"`
	Research    bool     `json:"research" yaml:"research"`
	AuthorName  string   `json:"-" yaml:"-"`
	AuthorEmail string   `json:"-" yaml:"-"`
}

// OutlineSection is one planned heading with the points it should cover.
type OutlineSection struct {
	Heading   string   `json:"heading" jsonschema:"required"`
	KeyPoints []string `json:"key_points" jsonschema:"required"`
}

// ResearchExcerpt cites a search result the article should draw on.
type ResearchExcerpt struct {
	SourceURL string `json:"source_url" jsonschema:"required"`
	Excerpt   string `json:"excerpt" jsonschema:"required"`
}

// Outline is the structured plan used to steer article generation.
type Outline struct {
	Title            string            `json:"title" jsonschema:"required"`
	Format           string            `json:"format" jsonschema:"required,enum=how-to,enum=listicle,enum=guide,enum=template,enum=comparison"`
	IncludesTemplate bool              `json:"includes_template"`
	Sections         []OutlineSection  `json:"sections" jsonschema:"required,minItems=3"`
	ResearchExcerpts []ResearchExcerpt `json:"research_excerpts,omitempty"`
}

// Article is the generated body of a blog post.
type Article struct {
	Title    string   `json:"title" jsonschema:"required"`
	Content  string   `json:"content" jsonschema:"required,description=Markdown body of the article"`
	Excerpt  string   `json:"excerpt" jsonschema:"required,maxLength=300"`
	Keywords []string `json:"keywords" jsonschema:"required"`
}

// ResearchNote is one search result with its page content as markdown.
type ResearchNote struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}
