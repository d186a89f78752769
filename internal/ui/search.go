package ui

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/liamwears/popcorn/internal/models"
	"github.com/liamwears/popcorn/internal/services"
	"github.com/sourcegraph/conc"
)

// Messages shown in place of the results list
const (
	MsgMoviesNotFound = "Movies not found"
	MsgRequestFailed  = "Something went wrong with the request"
	MsgFetchFailed    = "Failed to fetch"
)

// SearchController runs a catalog search whenever the query changes.
// Only the most recently issued search may update the results.
type SearchController struct {
	catalog Catalog
	logger  *log.Logger
	wg      *conc.WaitGroup
	ctx     context.Context

	mu      sync.Mutex
	mounted bool
	query   string
	results []models.Movie
	loading bool
	errMsg  string
	gen     uint64
	cancel  context.CancelFunc
}

// NewSearchController creates a controller. Fetches run on wg and are
// cancelled when ctx ends.
func NewSearchController(ctx context.Context, catalog Catalog, wg *conc.WaitGroup, logger *log.Logger) *SearchController {
	return &SearchController{
		catalog: catalog,
		logger:  logger,
		wg:      wg,
		ctx:     ctx,
	}
}

// SetQuery changes the query and starts a search. Setting the current
// query again does nothing, except on the first call. The returned channel
// is closed once the search has finished.
func (c *SearchController) SetQuery(query string) <-chan struct{} {
	c.mu.Lock()
	if c.mounted && query == c.query {
		c.mu.Unlock()
		return closedChan()
	}
	c.mounted = true
	c.query = query

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	done := make(chan struct{})
	c.wg.Go(func() {
		defer close(done)
		defer cancel()

		movies, err := c.catalog.SearchMovies(ctx, query)

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || ctx.Err() != nil {
			return
		}

		c.loading = false
		if err != nil {
			c.logger.Printf("Search for %q failed: %v", query, err)
			c.results = nil
			c.errMsg = searchErrorMessage(err)
			return
		}
		c.results = movies
	})

	return done
}

// Query returns the current query
func (c *SearchController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Stop cancels the search in flight
func (c *SearchController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

func searchErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrMoviesNotFound):
		return MsgMoviesNotFound
	case errors.Is(err, services.ErrRequestFailed):
		return MsgRequestFailed
	default:
		return MsgFetchFailed
	}
}

// SearchView is the JSON shape of the search state
type SearchView struct {
	Query      string         `json:"query"`
	Results    []models.Movie `json:"results"`
	NumResults int            `json:"numResults"`
	IsLoading  bool           `json:"isLoading"`
	Error      string         `json:"error,omitempty"`
}

// View snapshots the search state
func (c *SearchController) View() SearchView {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]models.Movie, len(c.results))
	copy(results, c.results)
	return SearchView{
		Query:      c.query,
		Results:    results,
		NumResults: len(results),
		IsLoading:  c.loading,
		Error:      c.errMsg,
	}
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
