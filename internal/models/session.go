package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the part of a browser session that survives a restart.
// The watched list is stored separately.
type SessionState struct {
	ID         uuid.UUID `json:"id"`
	Query      string    `json:"query"`
	SelectedID string    `json:"selectedId,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
