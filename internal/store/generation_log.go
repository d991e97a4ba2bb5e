// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// generation_log.go records every generation run (style guide, preview,
// blog, extraction) for auditing. Writes are best-effort.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	"aistyleguide/internal/models"
)

// GenerationLogStore handles generation audit rows.
type GenerationLogStore struct {
	db *sql.DB
}

// NewGenerationLogStore creates a new GenerationLogStore.
func NewGenerationLogStore(db *sql.DB) *GenerationLogStore {
	return &GenerationLogStore{db: db}
}

// Log records a generation run. Failures are logged and swallowed.
func (s *GenerationLogStore) Log(e models.GenerationLog) {
	_, err := s.db.Exec(`
		INSERT INTO generation_log (kind, provider, model, success, error_kind, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.Kind, e.Provider, e.Model, e.Success, e.ErrorKind, e.DurationMs)
	if err != nil {
		slog.Warn("failed to log generation",
			"kind", e.Kind,
			"provider", e.Provider,
			"error", err,
		)
		return
	}
	slog.Debug("generation logged", "kind", e.Kind, "success", e.Success)
}

// Recent returns the most recent runs, newest first.
func (s *GenerationLogStore) Recent(limit int) ([]models.GenerationLog, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, provider, model, success, error_kind, duration_ms, created_at
		FROM generation_log
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generation log: %w", err)
	}
	defer rows.Close()

	var entries []models.GenerationLog
	for rows.Next() {
		var e models.GenerationLog
		if err := rows.Scan(&e.ID, &e.Kind, &e.Provider, &e.Model, &e.Success, &e.ErrorKind, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
