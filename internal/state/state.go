// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package state keeps the anonymous visitor's work in progress (brand
// details, selected traits, generated content) keyed by a client id
// cookie, so a failed generation never loses the user's input.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aistyleguide/internal/models"
)

// DefaultTTL is how long client state survives without being written.
const DefaultTTL = 30 * 24 * time.Hour

// Key names one stored entity.
type Key string

const (
	KeyBrandDetails        Key = "brandDetails"
	KeySelectedTraits      Key = "selectedTraits"
	KeyKeywords            Key = "keywords"
	KeyPreviewContent      Key = "previewContent"
	KeyGeneratedStyleGuide Key = "generatedStyleGuide"
	KeyPreviewTraits       Key = "previewTraits"
	KeyEmailCapture        Key = "emailCapture"
	KeyPaymentStatus       Key = "paymentStatus"
	KeyPlan                Key = "plan"
)

// Keys lists every known key in a stable order.
var Keys = []Key{
	KeyBrandDetails,
	KeySelectedTraits,
	KeyKeywords,
	KeyPreviewContent,
	KeyGeneratedStyleGuide,
	KeyPreviewTraits,
	KeyEmailCapture,
	KeyPaymentStatus,
	KeyPlan,
}

// ErrUnknownKey is returned for key names outside Keys.
var ErrUnknownKey = errors.New("state: unknown key")

// ParseKey validates a key name from a URL.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// Repository stores raw JSON values per client and key.
type Repository interface {
	Get(ctx context.Context, client string, key Key) (json.RawMessage, bool, error)
	Set(ctx context.Context, client string, key Key, value json.RawMessage) error
	Delete(ctx context.Context, client string, key Key) error
	// All returns every stored key for the client.
	All(ctx context.Context, client string) (map[Key]json.RawMessage, error)
	// Clear removes every key for the client.
	Clear(ctx context.Context, client string) error
}

// EmailCapture is an address left by a visitor before checkout.
type EmailCapture struct {
	Email      string    `json:"email"`
	CapturedAt time.Time `json:"capturedAt"`
}

// PaymentStatus mirrors the last checkout outcome seen by the client.
type PaymentStatus struct {
	Status    string      `json:"status"`
	Plan      models.Plan `json:"plan"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Store adds typed accessors on top of a Repository.
type Store struct {
	repo Repository
}

// NewStore wraps a repository.
func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Repository exposes the raw repository for the generic state endpoints.
func (s *Store) Repository() Repository { return s.repo }

func get[T any](ctx context.Context, r Repository, client string, key Key) (*T, error) {
	raw, ok, err := r.Get(ctx, client, key)
	if err != nil || !ok {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("state decode %s: %w", key, err)
	}
	return &v, nil
}

func set[T any](ctx context.Context, r Repository, client string, key Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("state encode %s: %w", key, err)
	}
	return r.Set(ctx, client, key, raw)
}

// BrandDetails returns the saved brand details or nil.
func (s *Store) BrandDetails(ctx context.Context, client string) (*models.BrandDetails, error) {
	return get[models.BrandDetails](ctx, s.repo, client, KeyBrandDetails)
}

// SetBrandDetails saves brand details.
func (s *Store) SetBrandDetails(ctx context.Context, client string, b models.BrandDetails) error {
	return set(ctx, s.repo, client, KeyBrandDetails, b)
}

// SelectedTraits returns the saved trait selection.
func (s *Store) SelectedTraits(ctx context.Context, client string) ([]string, error) {
	v, err := get[[]string](ctx, s.repo, client, KeySelectedTraits)
	if v == nil {
		return nil, err
	}
	return *v, err
}

// SetSelectedTraits saves the trait selection.
func (s *Store) SetSelectedTraits(ctx context.Context, client string, traits []string) error {
	return set(ctx, s.repo, client, KeySelectedTraits, traits)
}

// Keywords returns the saved keywords.
func (s *Store) Keywords(ctx context.Context, client string) ([]string, error) {
	v, err := get[[]string](ctx, s.repo, client, KeyKeywords)
	if v == nil {
		return nil, err
	}
	return *v, err
}

// SetKeywords saves keywords.
func (s *Store) SetKeywords(ctx context.Context, client string, kws []string) error {
	return set(ctx, s.repo, client, KeyKeywords, kws)
}

// PreviewContent returns the last preview markdown.
func (s *Store) PreviewContent(ctx context.Context, client string) (string, error) {
	v, err := get[string](ctx, s.repo, client, KeyPreviewContent)
	if v == nil {
		return "", err
	}
	return *v, err
}

// SetPreviewContent saves preview markdown.
func (s *Store) SetPreviewContent(ctx context.Context, client, content string) error {
	return set(ctx, s.repo, client, KeyPreviewContent, content)
}

// GeneratedStyleGuide returns the last full guide markdown.
func (s *Store) GeneratedStyleGuide(ctx context.Context, client string) (string, error) {
	v, err := get[string](ctx, s.repo, client, KeyGeneratedStyleGuide)
	if v == nil {
		return "", err
	}
	return *v, err
}

// SetGeneratedStyleGuide saves full guide markdown.
func (s *Store) SetGeneratedStyleGuide(ctx context.Context, client, content string) error {
	return set(ctx, s.repo, client, KeyGeneratedStyleGuide, content)
}

// PreviewTraits returns the cached trait sections with their timestamp.
func (s *Store) PreviewTraits(ctx context.Context, client string) (*models.TraitCache, error) {
	return get[models.TraitCache](ctx, s.repo, client, KeyPreviewTraits)
}

// SetPreviewTraits caches trait sections.
func (s *Store) SetPreviewTraits(ctx context.Context, client string, c models.TraitCache) error {
	return set(ctx, s.repo, client, KeyPreviewTraits, c)
}

// EmailCapture returns the captured email.
func (s *Store) EmailCapture(ctx context.Context, client string) (*EmailCapture, error) {
	return get[EmailCapture](ctx, s.repo, client, KeyEmailCapture)
}

// SetEmailCapture saves a captured email.
func (s *Store) SetEmailCapture(ctx context.Context, client string, e EmailCapture) error {
	return set(ctx, s.repo, client, KeyEmailCapture, e)
}

// PaymentStatus returns the last payment status.
func (s *Store) PaymentStatus(ctx context.Context, client string) (*PaymentStatus, error) {
	return get[PaymentStatus](ctx, s.repo, client, KeyPaymentStatus)
}

// SetPaymentStatus saves the payment status.
func (s *Store) SetPaymentStatus(ctx context.Context, client string, p PaymentStatus) error {
	return set(ctx, s.repo, client, KeyPaymentStatus, p)
}

// Plan returns the selected plan, or "" when none is stored.
func (s *Store) Plan(ctx context.Context, client string) (models.Plan, error) {
	v, err := get[models.Plan](ctx, s.repo, client, KeyPlan)
	if v == nil {
		return "", err
	}
	return *v, err
}

// SetPlan saves the selected plan.
func (s *Store) SetPlan(ctx context.Context, client string, p models.Plan) error {
	return set(ctx, s.repo, client, KeyPlan, p)
}

// Clear removes everything stored for the client.
func (s *Store) Clear(ctx context.Context, client string) error {
	return s.repo.Clear(ctx, client)
}
