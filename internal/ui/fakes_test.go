package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/models"
)

var errBoom = errors.New("boom")

// fakeCatalog answers from maps. A gate blocks the matching call until it is
// closed, regardless of context cancellation.
type fakeCatalog struct {
	mu          sync.Mutex
	movies      map[string][]models.Movie
	searchErrs  map[string]error
	details     map[string]models.MovieDetail
	detailErrs  map[string]error
	gates       map[string]chan struct{}
	searchCalls []string
	detailCalls []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies:     make(map[string][]models.Movie),
		searchErrs: make(map[string]error),
		details:    make(map[string]models.MovieDetail),
		detailErrs: make(map[string]error),
		gates:      make(map[string]chan struct{}),
	}
}

func (f *fakeCatalog) gate(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeCatalog) wait(key string) {
	f.mu.Lock()
	ch := f.gates[key]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeCatalog) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.mu.Unlock()

	f.wait(query)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.searchErrs[query]; err != nil {
		return nil, err
	}
	return f.movies[query], nil
}

func (f *fakeCatalog) GetMovie(ctx context.Context, imdbID string) (*models.MovieDetail, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, imdbID)
	f.mu.Unlock()

	f.wait(imdbID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.detailErrs[imdbID]; err != nil {
		return nil, err
	}
	d, ok := f.details[imdbID]
	if !ok {
		return nil, errors.New("not found")
	}
	return &d, nil
}

func (f *fakeCatalog) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

type fakeRepo struct {
	mu      sync.Mutex
	lists   map[uuid.UUID][]models.WatchedRecord
	saves   int
	saveErr error
	// onSave runs inside Save, before the records are stored
	onSave func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{lists: make(map[uuid.UUID][]models.WatchedRecord)}
}

func (r *fakeRepo) Load(ctx context.Context, id uuid.UUID) ([]models.WatchedRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WatchedRecord(nil), r.lists[id]...), nil
}

func (r *fakeRepo) Save(ctx context.Context, id uuid.UUID, records []models.WatchedRecord) error {
	r.mu.Lock()
	onSave := r.onSave
	r.mu.Unlock()
	if onSave != nil {
		onSave()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.lists[id] = append([]models.WatchedRecord(nil), records...)
	return nil
}

type fakeStates struct {
	mu     sync.Mutex
	states map[uuid.UUID]models.SessionState
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: make(map[uuid.UUID]models.SessionState)}
}

func (s *fakeStates) Load(ctx context.Context, id uuid.UUID) (models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[id]
	if !ok {
		return models.SessionState{}, fmt.Errorf("%w: %s", ErrStateNotFound, id)
	}
	return state, nil
}

func (s *fakeStates) Save(ctx context.Context, state models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ID] = state
	return nil
}

func (s *fakeStates) get(id uuid.UUID) models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// waitFor fails the test if ch is not closed in time
func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch")
	}
}

var interstellar = models.MovieDetail{
	ImdbID:     "tt0816692",
	Title:      "Interstellar",
	Year:       "2014",
	Poster:     "https://example.com/interstellar.jpg",
	Runtime:    "169 min",
	ImdbRating: "8.7",
	Plot:       "A team of explorers travel through a wormhole in space.",
	Released:   "07 Nov 2014",
	Actors:     "Matthew McConaughey, Anne Hathaway",
	Director:   "Christopher Nolan",
	Genre:      "Adventure, Drama, Sci-Fi",
}

var inception = models.MovieDetail{
	ImdbID:     "tt1375666",
	Title:      "Inception",
	Year:       "2010",
	Runtime:    "148 min",
	ImdbRating: "8.8",
}

func seededCatalog() *fakeCatalog {
	c := newFakeCatalog()
	c.movies["interstellar"] = []models.Movie{
		{ImdbID: "tt0816692", Title: "Interstellar", Year: "2014"},
		{ImdbID: "tt4415360", Title: "The Science of Interstellar", Year: "2015"},
	}
	c.movies["inception"] = []models.Movie{
		{ImdbID: "tt1375666", Title: "Inception", Year: "2010"},
	}
	c.details[interstellar.ImdbID] = interstellar
	c.details[inception.ImdbID] = inception
	return c
}
