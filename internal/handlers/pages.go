package handlers

import (
	"log"
	"net/http"

	"github.com/liamwears/popcorn/internal/ui"
)

// PageHandler serves the application shell
type PageHandler struct {
	cfg      ui.SessionConfig
	renderer *Renderer
	logger   *log.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(cfg ui.SessionConfig, renderer *Renderer, logger *log.Logger) *PageHandler {
	return &PageHandler{
		cfg:      cfg,
		renderer: renderer,
		logger:   logger,
	}
}

// Index handles GET /. The route sits behind RequireSession so the cookie
// exists before the first API call.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	// The shell carries configuration only; the script fetches /api/state.
	data := map[string]interface{}{
		"AppTitle":  h.cfg.AppTitle,
		"MaxRating": h.cfg.MaxRating,
	}

	h.renderer.RenderPage(w, "index.html", data)
}
