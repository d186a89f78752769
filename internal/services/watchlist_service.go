package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/liamwears/popcorn/internal/models"
)

// WatchlistService persists each session's watched list
type WatchlistService struct {
	db *pgxpool.Pool
}

// NewWatchlistService creates a new WatchlistService
func NewWatchlistService(db *pgxpool.Pool) *WatchlistService {
	return &WatchlistService{db: db}
}

// Load returns the watched records of a session in insertion order
func (s *WatchlistService) Load(ctx context.Context, sessionID uuid.UUID) ([]models.WatchedRecord, error) {
	query := `
		SELECT imdb_id, title, year, poster, imdb_rating, runtime, user_rating
		FROM watched
		WHERE session_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watched records: %w", err)
	}
	defer rows.Close()

	var records []models.WatchedRecord
	for rows.Next() {
		var rec models.WatchedRecord
		var imdbRating, runtime float64
		err := rows.Scan(
			&rec.ImdbID,
			&rec.Title,
			&rec.Year,
			&rec.Poster,
			&imdbRating,
			&runtime,
			&rec.UserRating,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watched record: %w", err)
		}
		rec.ImdbRating = models.Score(imdbRating)
		rec.Runtime = models.Score(runtime)
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watched records: %w", err)
	}

	return records, nil
}

// Save replaces the stored watched list of a session with records
func (s *WatchlistService) Save(ctx context.Context, sessionID uuid.UUID, records []models.WatchedRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM watched WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear watched records: %w", err)
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for i, rec := range records {
			batch.Queue(`
				INSERT INTO watched (session_id, imdb_id, title, year, poster, imdb_rating, runtime, user_rating, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`,
				sessionID,
				rec.ImdbID,
				rec.Title,
				rec.Year,
				rec.Poster,
				float64(rec.ImdbRating),
				float64(rec.Runtime),
				rec.UserRating,
				i,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert watched records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit watched records: %w", err)
	}

	return nil
}
