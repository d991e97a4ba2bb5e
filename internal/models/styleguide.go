package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// StyleGuide is a generated document saved to a user's account. Saves
// overwrite the content column; the last write wins.
type StyleGuide struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	Title        string       `json:"title"`
	Plan         Plan         `json:"plan"`
	BrandDetails BrandDetails `json:"brand_details"`
	Content      string       `json:"content"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// TraitCache carries previously generated trait sections and when they
// were produced, so a later full generation can skip the trait call.
type TraitCache struct {
	Content     string    `json:"content"`
	Traits      []string  `json:"traits"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Fresh reports whether the cache was generated for the same trait
// selection and is younger than ttl at now.
func (c *TraitCache) Fresh(traits []string, ttl time.Duration, now time.Time) bool {
	if c == nil || c.Content == "" || c.GeneratedAt.IsZero() {
		return false
	}
	if now.Sub(c.GeneratedAt) >= ttl {
		return false
	}
	if len(c.Traits) != len(traits) {
		return false
	}
	for i := range traits {
		if !equalFoldTrim(c.Traits[i], traits[i]) {
			return false
		}
	}
	return true
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
