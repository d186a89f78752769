package ui

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/liamwears/popcorn/internal/models"
	"github.com/sourcegraph/conc"
)

var (
	// ErrNoSelection is returned when the detail view is closed
	ErrNoSelection = errors.New("no movie selected")
	// ErrDetailNotLoaded is returned when adding before the detail arrived
	ErrDetailNotLoaded = errors.New("movie details not loaded yet")
)

// TitlePrefix is prepended to the movie title in the page title
const TitlePrefix = "Movie | "

// DetailController shows the catalog record of the selected movie and lets
// the user rate it and add it to the watched list.
type DetailController struct {
	catalog   Catalog
	doc       *Document
	logger    *log.Logger
	wg        *conc.WaitGroup
	ctx       context.Context
	maxRating int

	mu           sync.Mutex
	open         bool
	selected     string
	detail       models.MovieDetail
	detailID     string
	loading      bool
	title        string
	titleApplied bool
	rating       *StarRating
	userRating   int
	gen          uint64
	cancel       context.CancelFunc
	removeKey    func()
	onClose      func(imdbID string)
	onAdd        func(context.Context, models.WatchedRecord) error
}

// NewDetailController creates a closed detail view
func NewDetailController(ctx context.Context, catalog Catalog, doc *Document, wg *conc.WaitGroup, maxRating int, logger *log.Logger) *DetailController {
	return &DetailController{
		catalog:   catalog,
		doc:       doc,
		logger:    logger,
		wg:        wg,
		ctx:       ctx,
		maxRating: maxRating,
	}
}

// SetOnClose sets the callback run by Escape and after Add. It receives the
// identifier that was shown, so the owner can ignore a close that lost a race
// with a newer selection. An open view moves its key listener over to the new
// callback.
func (c *DetailController) SetOnClose(fn func(imdbID string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
	if c.open {
		c.attachLocked()
	}
}

// SetOnAdd sets the callback receiving records built by Add
func (c *DetailController) SetOnAdd(fn func(context.Context, models.WatchedRecord) error) {
	c.mu.Lock()
	c.onAdd = fn
	c.mu.Unlock()
}

// Open shows imdbID and fetches its record. The returned channel is closed
// once the fetch has finished.
func (c *DetailController) Open(imdbID string) <-chan struct{} {
	c.mu.Lock()
	if !c.open {
		c.open = true
		c.detail = models.MovieDetail{}
		c.detailID = ""
		c.userRating = 0
		c.rating = NewStarRating(c.maxRating, nil, c.setUserRating)
		c.titleApplied = false
		c.attachLocked()
		c.applyTitleLocked()
	}
	c.selected = imdbID
	c.loading = true

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.mu.Unlock()

	done := make(chan struct{})
	c.wg.Go(func() {
		defer close(done)
		defer cancel()

		detail, err := c.catalog.GetMovie(ctx, imdbID)

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen || ctx.Err() != nil {
			return
		}
		c.loading = false
		if err != nil {
			c.logger.Printf("Error fetching movie details for %s: %v", imdbID, err)
			return
		}
		c.detail = *detail
		c.detailID = imdbID
		c.applyTitleLocked()
	})

	return done
}

// Close hides the view, detaches the key listener and restores the title
func (c *DetailController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}

	c.open = false
	c.selected = ""
	c.loading = false
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.removeKey != nil {
		c.removeKey()
		c.removeKey = nil
	}
	c.rating = nil
	c.doc.ResetTitle()
}

// Selected returns the shown identifier, "" when closed
func (c *DetailController) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Loading reports whether a fetch for the selected movie is in flight. It is
// false after a failed fetch, when Loaded is false as well.
func (c *DetailController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Loaded reports whether the record of the selected movie has arrived
func (c *DetailController) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedLocked()
}

func (c *DetailController) loadedLocked() bool {
	return c.open && c.detailID == c.selected
}

// Rating returns the star widget of the open view, nil when closed
func (c *DetailController) Rating() *StarRating {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rating
}

// Add builds a watched record from the loaded detail and hands it to the
// add callback, then closes the view. An unset rating is recorded as 0.
func (c *DetailController) Add(ctx context.Context) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrNoSelection
	}
	if !c.loadedLocked() {
		c.mu.Unlock()
		return ErrDetailNotLoaded
	}
	id := c.selected
	rec := models.NewWatchedRecord(id, c.detail, c.userRating)
	onAdd, onClose := c.onAdd, c.onClose
	c.mu.Unlock()

	if onAdd != nil {
		if err := onAdd(ctx, rec); err != nil {
			return err
		}
	}
	if onClose != nil {
		onClose(id)
	}
	return nil
}

func (c *DetailController) setUserRating(v int) {
	c.mu.Lock()
	c.userRating = v
	c.mu.Unlock()
}

func (c *DetailController) requestClose() {
	c.mu.Lock()
	onClose, id := c.onClose, c.selected
	c.mu.Unlock()

	if onClose != nil && id != "" {
		onClose(id)
	}
}

// attachLocked registers the Escape listener, replacing any previous one
func (c *DetailController) attachLocked() {
	if c.removeKey != nil {
		c.removeKey()
	}
	c.removeKey = c.doc.AddKeyListener(func(key string) {
		if key == KeyEscape {
			c.requestClose()
		}
	})
}

// applyTitleLocked mirrors the detail title into the page title
func (c *DetailController) applyTitleLocked() {
	if c.titleApplied && c.title == c.detail.Title {
		return
	}
	c.title = c.detail.Title
	c.titleApplied = true
	c.doc.SetTitle(TitlePrefix + c.title)
}

// DetailView is the JSON shape of the detail panel
type DetailView struct {
	ImdbID  string             `json:"imdbID"`
	Loading bool               `json:"loading"`
	Loaded  bool               `json:"loaded"`
	Movie   models.MovieDetail `json:"movie"`
	Display models.MovieDetail `json:"display"`
	Rating  RatingView         `json:"rating"`
	CanAdd  bool               `json:"canAdd"`
}

// View snapshots the panel, nil when closed
func (c *DetailController) View() *DetailView {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return nil
	}
	view := &DetailView{
		ImdbID:  c.selected,
		Loading: c.loading,
		Loaded:  c.loadedLocked(),
		Movie:   c.detail,
		Display: c.detail.WithFallbacks(),
		CanAdd:  c.loadedLocked(),
	}
	rating := c.rating
	c.mu.Unlock()

	view.Rating = rating.View()
	return view
}
