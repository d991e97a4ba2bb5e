package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationLog is an audit row written after each orchestration.
type GenerationLog struct {
	ID         uuid.UUID `json:"id"`
	Kind       string    `json:"kind"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Success    bool      `json:"success"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
