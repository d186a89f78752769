package models

import (
	"math"
	"strconv"
	"strings"
)

// Movie is a search result summary from the catalog
type Movie struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"title"`
	Year   string `json:"year"`
	Poster string `json:"poster"`
}

// MovieDetail is the full catalog record for one title
type MovieDetail struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"title"`
	Year       string `json:"year"`
	Poster     string `json:"poster"`
	Runtime    string `json:"runtime"`
	ImdbRating string `json:"imdbRating"`
	Plot       string `json:"plot"`
	Released   string `json:"released"`
	Actors     string `json:"actors"`
	Director   string `json:"director"`
	Genre      string `json:"genre"`
}

// WithFallbacks returns a copy with placeholder text for missing fields
func (d MovieDetail) WithFallbacks() MovieDetail {
	d.Title = fallback(d.Title, "Unknown Title")
	d.Released = fallback(d.Released, "Unknown Date")
	d.Runtime = fallback(d.Runtime, "Unknown Runtime")
	d.Genre = fallback(d.Genre, "Unknown Genre")
	d.ImdbRating = fallback(d.ImdbRating, "N/A")
	d.Plot = fallback(d.Plot, "No plot available")
	d.Actors = fallback(d.Actors, "Unknown actors")
	d.Director = fallback(d.Director, "Unknown director")
	return d
}

func fallback(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// WatchedRecord is a title the user has watched and rated
type WatchedRecord struct {
	ImdbID     string `db:"imdb_id" json:"imdbID"`
	Title      string `db:"title" json:"title"`
	Year       string `db:"year" json:"year"`
	Poster     string `db:"poster" json:"poster"`
	ImdbRating Score  `db:"imdb_rating" json:"imdbRating"`
	Runtime    Score  `db:"runtime" json:"runtime"`
	UserRating int    `db:"user_rating" json:"userRating"`
}

// NewWatchedRecord builds a watched record from a loaded detail.
// Non-numeric catalog values become NaN rather than errors.
func NewWatchedRecord(imdbID string, detail MovieDetail, userRating int) WatchedRecord {
	return WatchedRecord{
		ImdbID:     imdbID,
		Title:      detail.Title,
		Year:       detail.Year,
		Poster:     detail.Poster,
		ImdbRating: ParseScore(detail.ImdbRating),
		Runtime:    ParseRuntime(detail.Runtime),
		UserRating: userRating,
	}
}

// ParseScore coerces a catalog number ("8.6", "N/A", "") to a Score
func ParseScore(text string) Score {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Score(math.NaN())
	}
	return Score(v)
}

// ParseRuntime takes the leading token of a runtime such as "169 min"
func ParseRuntime(text string) Score {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	return ParseScore(fields[0])
}

// WatchedSummary holds aggregate statistics over the watched list
type WatchedSummary struct {
	Count         int   `json:"count"`
	AvgImdbRating Score `json:"avgImdbRating"`
	AvgUserRating Score `json:"avgUserRating"`
	AvgRuntime    Score `json:"avgRuntime"`
}

// Summarize computes the watched list statistics. Means over an empty list are 0.
func Summarize(records []WatchedRecord) WatchedSummary {
	summary := WatchedSummary{Count: len(records)}
	if len(records) == 0 {
		return summary
	}

	var imdb, user, runtime float64
	for _, r := range records {
		imdb += float64(r.ImdbRating)
		user += float64(r.UserRating)
		runtime += float64(r.Runtime)
	}

	n := float64(len(records))
	summary.AvgImdbRating = Score(imdb / n)
	summary.AvgUserRating = Score(user / n)
	summary.AvgRuntime = Score(runtime / n)
	return summary
}
