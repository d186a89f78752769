package ui

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/models"
	"github.com/sourcegraph/conc"
)

// SessionConfig holds the settings shared by every session
type SessionConfig struct {
	AppTitle      string
	DefaultQuery  string
	MaxRating     int
	IdleTimeout   time.Duration // how long a session stays in memory without requests
	SweepInterval time.Duration
}

func (cfg SessionConfig) withDefaults() SessionConfig {
	if cfg.AppTitle == "" {
		cfg.AppTitle = "usePopcorn"
	}
	if cfg.DefaultQuery == "" {
		cfg.DefaultQuery = "interstellar"
	}
	if cfg.MaxRating < 1 {
		cfg.MaxRating = 10
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return cfg
}

// Session is the state of one browser: the search, the detail panel and the
// watched list, wired together.
type Session struct {
	ID uuid.UUID

	logger *log.Logger
	doc    *Document
	search *SearchController
	detail *DetailController
	repo   WatchlistRepository
	states StateStore

	wg     conc.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	// selectMu serialises selection changes
	selectMu sync.Mutex

	mu        sync.Mutex
	watchlist Watchlist
}

func newSession(parent context.Context, deps sessionDeps, state models.SessionState, records []models.WatchedRecord) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:        state.ID,
		logger:    deps.logger,
		doc:       NewDocument(deps.cfg.AppTitle),
		repo:      deps.repo,
		states:    deps.states,
		ctx:       ctx,
		cancel:    cancel,
		watchlist: NewWatchlist(records),
	}
	s.search = NewSearchController(ctx, deps.catalog, &s.wg, deps.logger)
	s.detail = NewDetailController(ctx, deps.catalog, s.doc, &s.wg, deps.cfg.MaxRating, deps.logger)
	s.detail.SetOnClose(s.closeSelected)
	s.detail.SetOnAdd(s.insertWatched)

	query := state.Query
	if query == "" {
		query = deps.cfg.DefaultQuery
	}
	s.search.SetQuery(query)
	if state.SelectedID != "" {
		s.detail.Open(state.SelectedID)
	}

	return s
}

// SetQuery changes the search query
func (s *Session) SetQuery(query string) <-chan struct{} {
	done := s.search.SetQuery(query)
	s.persistState()
	return done
}

// SelectMovie opens imdbID, or closes the panel when it is already open
func (s *Session) SelectMovie(imdbID string) <-chan struct{} {
	s.selectMu.Lock()
	var done <-chan struct{}
	if s.detail.Selected() == imdbID {
		s.detail.Close()
		done = closedChan()
	} else {
		done = s.detail.Open(imdbID)
	}
	s.selectMu.Unlock()

	s.persistState()
	return done
}

// CloseMovie closes the detail panel
func (s *Session) CloseMovie() {
	s.selectMu.Lock()
	s.detail.Close()
	s.selectMu.Unlock()

	s.persistState()
}

// closeSelected closes the panel only while it still shows imdbID
func (s *Session) closeSelected(imdbID string) {
	s.selectMu.Lock()
	closed := s.detail.Selected() == imdbID
	if closed {
		s.detail.Close()
	}
	s.selectMu.Unlock()

	if closed {
		s.persistState()
	}
}

// SelectedID returns the open movie, "" when none
func (s *Session) SelectedID() string {
	return s.detail.Selected()
}

// HoverRating previews star i of the open panel
func (s *Session) HoverRating(i int) error {
	rating := s.detail.Rating()
	if rating == nil {
		return ErrNoSelection
	}
	if !rating.Hover(i) {
		return fmt.Errorf("star %d out of range", i)
	}
	return nil
}

// LeaveRating clears the star preview
func (s *Session) LeaveRating() error {
	rating := s.detail.Rating()
	if rating == nil {
		return ErrNoSelection
	}
	rating.Leave()
	return nil
}

// Rate commits star i of the open panel
func (s *Session) Rate(i int) error {
	rating := s.detail.Rating()
	if rating == nil {
		return ErrNoSelection
	}
	if !rating.Rate(i) {
		return fmt.Errorf("star %d out of range", i)
	}
	return nil
}

// AddWatched adds the open movie to the watched list and closes the panel
func (s *Session) AddWatched(ctx context.Context) error {
	return s.detail.Add(ctx)
}

// RemoveWatched drops imdbID from the watched list
func (s *Session) RemoveWatched(ctx context.Context, imdbID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.watchlist.Remove(imdbID)
	if next.Len() == s.watchlist.Len() {
		return nil
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return err
	}
	s.watchlist = next
	return nil
}

func (s *Session) insertWatched(ctx context.Context, rec models.WatchedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.watchlist.Insert(rec)
	if next.Len() == s.watchlist.Len() {
		return nil
	}
	if err := s.saveLocked(ctx, next); err != nil {
		return err
	}
	s.watchlist = next
	return nil
}

func (s *Session) saveLocked(ctx context.Context, next Watchlist) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.ID, next.Records()); err != nil {
		return fmt.Errorf("failed to save watched list: %w", err)
	}
	return nil
}

// Watchlist returns the current watched list
func (s *Session) Watchlist() Watchlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchlist
}

// PressKey delivers a global key press
func (s *Session) PressKey(key string) {
	s.doc.DispatchKey(key)
}

// Title returns the page title
func (s *Session) Title() string {
	return s.doc.Title()
}

// persistState stores query and selection; failures are only logged
func (s *Session) persistState() {
	if s.states == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	state := models.SessionState{
		ID:         s.ID,
		Query:      s.search.Query(),
		SelectedID: s.detail.Selected(),
	}
	if err := s.states.Save(ctx, state); err != nil {
		s.logger.Printf("Failed to save session %s: %v", s.ID, err)
	}
}

// View is the JSON snapshot the page renders
type View struct {
	Title      string                 `json:"title"`
	Search     SearchView             `json:"search"`
	SelectedID string                 `json:"selectedId,omitempty"`
	Detail     *DetailView            `json:"detail,omitempty"`
	Watched    []models.WatchedRecord `json:"watched"`
	Summary    models.WatchedSummary  `json:"summary"`
}

// View snapshots the session
func (s *Session) View() View {
	watchlist := s.Watchlist()
	detail := s.detail.View()

	view := View{
		Title:   s.doc.Title(),
		Search:  s.search.View(),
		Detail:  detail,
		Watched: watchlist.Records(),
		Summary: watchlist.Summary(),
	}
	if detail != nil {
		view.SelectedID = detail.ImdbID
	}
	return view
}

// Close stops in-flight fetches and waits for them
func (s *Session) Close() {
	s.cancel()
	s.detail.Close()
	s.search.Stop()
	s.wg.Wait()
}
