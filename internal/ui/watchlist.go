package ui

import "github.com/liamwears/popcorn/internal/models"

// Watchlist is an ordered list of watched records, unique by identifier.
// Operations return a new Watchlist and never modify the receiver.
type Watchlist struct {
	records []models.WatchedRecord
}

// NewWatchlist builds a watchlist from stored records, dropping duplicates
func NewWatchlist(records []models.WatchedRecord) Watchlist {
	var w Watchlist
	for _, r := range records {
		w = w.Insert(r)
	}
	return w
}

// Insert appends rec unless a record with the same identifier exists
func (w Watchlist) Insert(rec models.WatchedRecord) Watchlist {
	if w.Contains(rec.ImdbID) {
		return w
	}
	next := make([]models.WatchedRecord, len(w.records), len(w.records)+1)
	copy(next, w.records)
	return Watchlist{records: append(next, rec)}
}

// Remove drops the record with imdbID; absent identifiers are ignored
func (w Watchlist) Remove(imdbID string) Watchlist {
	for i, r := range w.records {
		if r.ImdbID != imdbID {
			continue
		}
		next := make([]models.WatchedRecord, 0, len(w.records)-1)
		next = append(next, w.records[:i]...)
		next = append(next, w.records[i+1:]...)
		return Watchlist{records: next}
	}
	return w
}

// Contains reports whether imdbID is on the list
func (w Watchlist) Contains(imdbID string) bool {
	for _, r := range w.records {
		if r.ImdbID == imdbID {
			return true
		}
	}
	return false
}

// Len returns the number of records
func (w Watchlist) Len() int {
	return len(w.records)
}

// Records returns a copy of the records in insertion order
func (w Watchlist) Records() []models.WatchedRecord {
	out := make([]models.WatchedRecord, len(w.records))
	copy(out, w.records)
	return out
}

// Summary derives the aggregate statistics
func (w Watchlist) Summary() models.WatchedSummary {
	return models.Summarize(w.records)
}
