package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"aistyleguide/internal/models"
)

// StyleGuideStore persists generated style guides for signed-in users.
type StyleGuideStore struct {
	db *sql.DB
}

// NewStyleGuideStore creates a new StyleGuideStore.
func NewStyleGuideStore(db *sql.DB) *StyleGuideStore {
	return &StyleGuideStore{db: db}
}

// Save inserts a guide, or overwrites it when g.ID belongs to the same
// user. The last write wins.
func (s *StyleGuideStore) Save(g *models.StyleGuide) (*models.StyleGuide, error) {
	brand, err := json.Marshal(g.BrandDetails)
	if err != nil {
		return nil, fmt.Errorf("encode brand details: %w", err)
	}

	var row *sql.Row
	if g.ID == uuid.Nil {
		row = s.db.QueryRow(`
			INSERT INTO style_guides (user_id, title, plan, brand_details, content)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, g.UserID, g.Title, g.Plan, brand, g.Content)
	} else {
		row = s.db.QueryRow(`
			UPDATE style_guides
			SET title = $1, plan = $2, brand_details = $3, content = $4, updated_at = NOW()
			WHERE id = $5 AND user_id = $6
			RETURNING id, created_at, updated_at
		`, g.Title, g.Plan, brand, g.Content, g.ID, g.UserID)
	}

	out := *g
	err = row.Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save style guide: %w", err)
	}
	return &out, nil
}

// FindForUser loads one guide owned by the user. Returns nil if not found.
func (s *StyleGuideStore) FindForUser(id, userID uuid.UUID) (*models.StyleGuide, error) {
	g := &models.StyleGuide{}
	var brand []byte
	err := s.db.QueryRow(`
		SELECT id, user_id, title, plan, brand_details, content, created_at, updated_at
		FROM style_guides WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&g.ID, &g.UserID, &g.Title, &g.Plan, &brand, &g.Content, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find style guide: %w", err)
	}
	if err := json.Unmarshal(brand, &g.BrandDetails); err != nil {
		return nil, fmt.Errorf("decode brand details: %w", err)
	}
	return g, nil
}

// LatestForUser returns the most recently updated guide. Returns nil if
// the user has none.
func (s *StyleGuideStore) LatestForUser(userID uuid.UUID) (*models.StyleGuide, error) {
	var id uuid.UUID
	err := s.db.QueryRow(`
		SELECT id FROM style_guides WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1
	`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest style guide: %w", err)
	}
	return s.FindForUser(id, userID)
}
