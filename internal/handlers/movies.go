package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/liamwears/popcorn/internal/middleware"
	"github.com/liamwears/popcorn/internal/ui"
)

// MovieHandler serves the session API: search, detail panel and watched list
type MovieHandler struct {
	logger *log.Logger
}

// NewMovieHandler creates a new movie handler
func NewMovieHandler(logger *log.Logger) *MovieHandler {
	return &MovieHandler{
		logger: logger,
	}
}

type queryInput struct {
	Query string `json:"query"`
}

type ratingInput struct {
	Action string `json:"action"`
	Star   int    `json:"star"`
}

type keyInput struct {
	Key string `json:"key"`
}

// State handles GET /api/state
func (h *MovieHandler) State(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, session.View())
}

// SetQuery handles PUT /api/query
func (h *MovieHandler) SetQuery(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	var input queryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	session.SetQuery(input.Query)
	writeJSON(w, http.StatusOK, session.View())
}

// Select handles POST /api/movies/{id}/select
func (h *MovieHandler) Select(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, `{"error":"Invalid movie ID"}`, http.StatusBadRequest)
		return
	}

	session.SelectMovie(id)
	writeJSON(w, http.StatusOK, session.View())
}

// Close handles POST /api/detail/close
func (h *MovieHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	session.CloseMovie()
	writeJSON(w, http.StatusOK, session.View())
}

// Rating handles POST /api/detail/rating
func (h *MovieHandler) Rating(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	var input ratingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	var err error
	switch input.Action {
	case "hover":
		err = session.HoverRating(input.Star)
	case "leave":
		err = session.LeaveRating()
	case "rate":
		err = session.Rate(input.Star)
	default:
		http.Error(w, `{"error":"Unknown rating action"}`, http.StatusBadRequest)
		return
	}

	if errors.Is(err, ui.ErrNoSelection) {
		http.Error(w, `{"error":"No movie selected"}`, http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"Invalid star"}`, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, session.View())
}

// Add handles POST /api/detail/add
func (h *MovieHandler) Add(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	err := session.AddWatched(r.Context())
	switch {
	case errors.Is(err, ui.ErrNoSelection):
		http.Error(w, `{"error":"No movie selected"}`, http.StatusConflict)
		return
	case errors.Is(err, ui.ErrDetailNotLoaded):
		http.Error(w, `{"error":"Movie details are still loading"}`, http.StatusConflict)
		return
	case err != nil:
		h.logger.Printf("Failed to add watched movie: %v", err)
		http.Error(w, `{"error":"Failed to add movie"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, session.View())
}

// Remove handles DELETE /api/watched/{id}
func (h *MovieHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	if err := session.RemoveWatched(r.Context(), r.PathValue("id")); err != nil {
		h.logger.Printf("Failed to remove watched movie: %v", err)
		http.Error(w, `{"error":"Failed to remove movie"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, session.View())
}

// Summary handles GET /api/watched/summary
func (h *MovieHandler) Summary(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, session.Watchlist().Summary())
}

// Key handles POST /api/keys
func (h *MovieHandler) Key(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"No session"}`, http.StatusUnauthorized)
		return
	}

	var input keyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	session.PressKey(input.Key)
	writeJSON(w, http.StatusOK, session.View())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
