package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/models"
	"github.com/sourcegraph/conc"
)

// ErrUnknownSession is returned for identifiers with no live or stored session
var ErrUnknownSession = errors.New("unknown session")

type sessionDeps struct {
	catalog Catalog
	repo    WatchlistRepository
	states  StateStore
	cfg     SessionConfig
	logger  *log.Logger
}

// Manager owns the live sessions and restores stored ones on demand.
// Sessions idle for longer than SessionConfig.IdleTimeout are closed and
// dropped from memory; their stored state brings them back on the next Get.
type Manager struct {
	deps   sessionDeps
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
	sweep  conc.WaitGroup

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	lastSeen map[uuid.UUID]time.Time
}

// NewManager creates a session manager. repo and states may be nil, in which
// case sessions live only in memory.
func NewManager(catalog Catalog, repo WatchlistRepository, states StateStore, cfg SessionConfig, logger *log.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		deps: sessionDeps{
			catalog: catalog,
			repo:    repo,
			states:  states,
			cfg:     cfg.withDefaults(),
			logger:  logger,
		},
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
		lastSeen: make(map[uuid.UUID]time.Time),
	}
	m.sweep.Go(m.sweepLoop)
	return m
}

// Config returns the effective session settings
func (m *Manager) Config() SessionConfig {
	return m.deps.cfg
}

// Create starts a new session seeded with the default query
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	state := models.SessionState{ID: uuid.New(), Query: m.deps.cfg.DefaultQuery}
	s := newSession(m.ctx, m.deps, state, nil)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.lastSeen[s.ID] = m.now()
	m.mu.Unlock()

	s.persistState()
	m.deps.logger.Printf("Created session %s", s.ID)
	return s, nil
}

// Get returns the live session for id, restoring it from storage after a
// restart. ErrUnknownSession means the caller should Create one.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		m.lastSeen[id] = m.now()
	}
	m.mu.Unlock()
	if ok {
		return s, nil
	}

	if m.deps.states == nil {
		return nil, ErrUnknownSession
	}

	state, err := m.deps.states.Load(ctx, id)
	if errors.Is(err, ErrStateNotFound) {
		return nil, ErrUnknownSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	state.ID = id

	var records []models.WatchedRecord
	if m.deps.repo != nil {
		records, err = m.deps.repo.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load watched list: %w", err)
		}
	}

	restored := newSession(m.ctx, m.deps, state, records)

	m.mu.Lock()
	m.lastSeen[id] = m.now()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		restored.Close()
		return existing, nil
	}
	m.sessions[id] = restored
	m.mu.Unlock()

	m.deps.logger.Printf("Restored session %s with %d watched movies", id, len(records))
	return restored, nil
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Evict closes and forgets every session not seen since the idle timeout.
// It returns the number of sessions dropped.
func (m *Manager) Evict() int {
	cutoff := m.now().Add(-m.deps.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if m.lastSeen[id].Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
			delete(m.lastSeen, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.deps.logger.Printf("Evicted %d idle sessions", len(idle))
	}
	return len(idle)
}

func (m *Manager) sweepLoop() {
	ticker := time.NewTicker(m.deps.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.Evict()
		}
	}
}

// Shutdown closes every session and waits for their fetches
func (m *Manager) Shutdown() {
	m.cancel()
	m.sweep.Wait()

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[uuid.UUID]*Session)
	m.lastSeen = make(map[uuid.UUID]time.Time)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
