// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"aistyleguide/internal/models"
)

const blogColumns = `id, title, slug, content, excerpt, category, keywords, published,
	published_at, author_name, author_email, created_at, updated_at`

// BlogPostStore handles blog post database operations.
type BlogPostStore struct {
	db *sql.DB
}

// NewBlogPostStore creates a new BlogPostStore.
func NewBlogPostStore(db *sql.DB) *BlogPostStore {
	return &BlogPostStore{db: db}
}

func scanPost(row interface{ Scan(...any) error }) (*models.BlogPost, error) {
	p := &models.BlogPost{}
	// pgtype.Map caches per-type plans and is not safe for concurrent use.
	typeMap := pgtype.NewMap()
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Category,
		typeMap.SQLScanner(&p.Keywords), &p.Published, &p.PublishedAt,
		&p.AuthorName, &p.AuthorEmail, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// SlugExists reports whether a post already uses the slug.
func (s *BlogPostStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return exists, nil
}

// Create inserts a post and returns it with generated fields filled in.
func (s *BlogPostStore) Create(p *models.BlogPost) (*models.BlogPost, error) {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	out, err := scanPost(s.db.QueryRow(`
		INSERT INTO blog_posts (title, slug, content, excerpt, category, keywords, published, published_at, author_name, author_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+blogColumns,
		p.Title, p.Slug, p.Content, p.Excerpt, p.Category, keywords,
		p.Published, p.PublishedAt, p.AuthorName, p.AuthorEmail,
	))
	if err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}
	return out, nil
}

// FindBySlug loads a post. Returns nil if not found.
func (s *BlogPostStore) FindBySlug(slug string) (*models.BlogPost, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog post: %w", err)
	}
	return p, nil
}

// ListPublished returns published posts, newest first.
func (s *BlogPostStore) ListPublished(limit int) ([]models.BlogPost, error) {
	rows, err := s.db.Query(`
		SELECT `+blogColumns+` FROM blog_posts
		WHERE published
		ORDER BY published_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list blog posts: %w", err)
	}
	defer rows.Close()

	var posts []models.BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// SetPublished toggles publication. published_at is set the first time a
// post is published and kept afterwards. Returns nil if the slug is unknown.
func (s *BlogPostStore) SetPublished(slug string, published bool) (*models.BlogPost, error) {
	p, err := scanPost(s.db.QueryRow(`
		UPDATE blog_posts
		SET published = $1,
		    published_at = CASE WHEN $1 AND published_at IS NULL THEN NOW() ELSE published_at END,
		    updated_at = NOW()
		WHERE slug = $2
		RETURNING `+blogColumns, published, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set blog post published: %w", err)
	}
	return p, nil
}

// Delete removes a post. It reports whether a row was deleted.
func (s *BlogPostStore) Delete(slug string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM blog_posts WHERE slug = $1`, slug)
	if err != nil {
		return false, fmt.Errorf("delete blog post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete blog post: %w", err)
	}
	return n > 0, nil
}
