// Package ui holds the per-session view state of the movie search page:
// the search results, the detail panel with its star rating, and the
// watched list with its summary.
package ui

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/models"
)

// Catalog is the remote movie database
type Catalog interface {
	SearchMovies(ctx context.Context, query string) ([]models.Movie, error)
	GetMovie(ctx context.Context, imdbID string) (*models.MovieDetail, error)
}

// WatchlistRepository persists a session's watched list
type WatchlistRepository interface {
	Load(ctx context.Context, sessionID uuid.UUID) ([]models.WatchedRecord, error)
	Save(ctx context.Context, sessionID uuid.UUID, records []models.WatchedRecord) error
}

// ErrStateNotFound is returned by a StateStore holding nothing for an id
var ErrStateNotFound = errors.New("session state not found")

// StateStore persists the query and selection of a session
type StateStore interface {
	Load(ctx context.Context, id uuid.UUID) (models.SessionState, error)
	Save(ctx context.Context, state models.SessionState) error
}
