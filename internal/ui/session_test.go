package ui

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/liamwears/popcorn/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionFixture struct {
	catalog *fakeCatalog
	repo    *fakeRepo
	states  *fakeStates
	session *Session
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		catalog: seededCatalog(),
		repo:    newFakeRepo(),
		states:  newFakeStates(),
	}
	deps := sessionDeps{
		catalog: f.catalog,
		repo:    f.repo,
		states:  f.states,
		cfg:     SessionConfig{}.withDefaults(),
		logger:  testLogger(),
	}
	f.session = newSession(context.Background(), deps, models.SessionState{ID: uuid.New()}, nil)
	t.Cleanup(f.session.Close)
	f.session.wg.Wait()
	return f
}

func TestSession_MountsWithDefaultQuery(t *testing.T) {
	f := newSessionFixture(t)

	view := f.session.View()
	assert.Equal(t, "interstellar", view.Search.Query)
	assert.Equal(t, 2, view.Search.NumResults)
	assert.Equal(t, "usePopcorn", view.Title)
	assert.Nil(t, view.Detail)
	assert.Empty(t, view.Watched)
	assert.Equal(t, models.WatchedSummary{}, view.Summary)
}

func TestSession_SelectTogglesSelection(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	assert.Equal(t, interstellar.ImdbID, s.SelectedID())

	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	assert.Equal(t, "", s.SelectedID())
	assert.Nil(t, s.View().Detail)

	// selecting another movie replaces the selection
	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	waitFor(t, s.SelectMovie(inception.ImdbID))
	assert.Equal(t, inception.ImdbID, s.SelectedID())
}

func TestSession_AddInterstellarEndToEnd(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	results := s.View().Search.Results
	require.NotEmpty(t, results)

	waitFor(t, s.SelectMovie(results[0].ImdbID))
	view := s.View()
	require.NotNil(t, view.Detail)
	assert.True(t, view.Detail.Loaded)
	assert.Equal(t, 10, view.Detail.Rating.Max)

	require.NoError(t, s.Rate(7))
	assert.Equal(t, 8, s.View().Detail.Rating.Rating)

	require.NoError(t, s.AddWatched(context.Background()))

	view = s.View()
	require.Len(t, view.Watched, 1)
	got := view.Watched[0]
	assert.Equal(t, "tt0816692", got.ImdbID)
	assert.Equal(t, 8, got.UserRating)
	assert.Equal(t, models.Score(169), got.Runtime)
	assert.Equal(t, models.Score(8.7), got.ImdbRating)
	assert.Equal(t, "", view.SelectedID)
	assert.Nil(t, view.Detail)
	assert.Equal(t, "usePopcorn", view.Title)

	assert.Len(t, f.repo.lists[s.ID], 1)
}

func TestSession_AddThenRemove(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	ctx := context.Background()

	before := s.View()

	waitFor(t, s.SelectMovie(inception.ImdbID))
	require.NoError(t, s.Rate(8))
	require.NoError(t, s.AddWatched(ctx))
	assert.Equal(t, 1, s.View().Summary.Count)
	assert.Equal(t, models.Score(148), s.View().Summary.AvgRuntime)

	require.NoError(t, s.RemoveWatched(ctx, inception.ImdbID))

	after := s.View()
	assert.Len(t, after.Watched, len(before.Watched))
	assert.Equal(t, before.Summary, after.Summary)
	assert.Empty(t, f.repo.lists[s.ID])
}

func TestSession_RemoveAbsentIsNoop(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.session.RemoveWatched(context.Background(), "tt0000000"))
	assert.Equal(t, 0, f.repo.saves)
}

func TestSession_DuplicateAddIsIgnored(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	ctx := context.Background()

	waitFor(t, s.SelectMovie(inception.ImdbID))
	require.NoError(t, s.Rate(5))
	require.NoError(t, s.AddWatched(ctx))

	waitFor(t, s.SelectMovie(inception.ImdbID))
	require.NoError(t, s.Rate(1))
	require.NoError(t, s.AddWatched(ctx))

	watched := s.View().Watched
	require.Len(t, watched, 1)
	assert.Equal(t, 6, watched[0].UserRating)
	assert.Equal(t, 1, f.repo.saves)
}

func TestSession_AddWithoutRatingRecordsZero(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SelectMovie(inception.ImdbID))
	require.NoError(t, s.AddWatched(context.Background()))

	watched := s.View().Watched
	require.Len(t, watched, 1)
	assert.Equal(t, 0, watched[0].UserRating)
}

func TestSession_AddBeforeDetailLoaded(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	gate := f.catalog.gate(inception.ImdbID)

	done := s.SelectMovie(inception.ImdbID)
	assert.False(t, s.View().Detail.CanAdd)
	assert.ErrorIs(t, s.AddWatched(context.Background()), ErrDetailNotLoaded)
	assert.Equal(t, inception.ImdbID, s.SelectedID(), "failed add keeps the view open")

	close(gate)
	waitFor(t, done)
	assert.True(t, s.View().Detail.CanAdd)
}

func TestSession_AddWithoutSelection(t *testing.T) {
	f := newSessionFixture(t)
	assert.ErrorIs(t, f.session.AddWatched(context.Background()), ErrNoSelection)
	assert.ErrorIs(t, f.session.Rate(1), ErrNoSelection)
	assert.ErrorIs(t, f.session.HoverRating(1), ErrNoSelection)
	assert.ErrorIs(t, f.session.LeaveRating(), ErrNoSelection)
}

func TestSession_SaveFailureKeepsList(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	f.repo.saveErr = errBoom

	waitFor(t, s.SelectMovie(inception.ImdbID))
	err := s.AddWatched(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, s.View().Watched)
	assert.Equal(t, inception.ImdbID, s.SelectedID())
}

func TestSession_EscapeClosesDetail(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	assert.Equal(t, 1, s.doc.ListenerCount())

	s.PressKey("Enter")
	assert.Equal(t, interstellar.ImdbID, s.SelectedID())

	s.PressKey(KeyEscape)
	assert.Equal(t, "", s.SelectedID())
	assert.Equal(t, 0, s.doc.ListenerCount())
}

func TestSession_ListenersDoNotAccumulate(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	for i := 0; i < 5; i++ {
		waitFor(t, s.SelectMovie(interstellar.ImdbID))
		waitFor(t, s.SelectMovie(inception.ImdbID))
		assert.Equal(t, 1, s.doc.ListenerCount())
		s.CloseMovie()
		assert.Equal(t, 0, s.doc.ListenerCount())
	}
}

func TestSession_TitleFollowsDetail(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	gate := f.catalog.gate(interstellar.ImdbID)

	done := s.SelectMovie(interstellar.ImdbID)
	assert.Equal(t, "Movie | ", s.Title())

	close(gate)
	waitFor(t, done)
	assert.Equal(t, "Movie | Interstellar", s.Title())

	waitFor(t, s.SelectMovie(inception.ImdbID))
	assert.Equal(t, "Movie | Inception", s.Title())

	s.CloseMovie()
	assert.Equal(t, "usePopcorn", s.Title())
}

func TestSession_DetailFailureKeepsPreviousDetail(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	f.catalog.detailErrs["tt9999999"] = errBoom

	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	waitFor(t, s.SelectMovie("tt9999999"))

	detail := s.View().Detail
	require.NotNil(t, detail)
	assert.Equal(t, "tt9999999", detail.ImdbID)
	assert.Equal(t, "Interstellar", detail.Movie.Title)
	assert.False(t, detail.Loaded)
	assert.False(t, detail.Loading)
	assert.False(t, detail.CanAdd)
}

func TestSession_DetailLoadingFlag(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	gate := f.catalog.gate(interstellar.ImdbID)

	done := s.SelectMovie(interstellar.ImdbID)
	detail := s.View().Detail
	require.NotNil(t, detail)
	assert.True(t, detail.Loading)
	assert.False(t, detail.Loaded)

	close(gate)
	waitFor(t, done)
	detail = s.View().Detail
	assert.False(t, detail.Loading)
	assert.True(t, detail.Loaded)
}

func TestSession_FailedDetailStopsLoading(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	f.catalog.detailErrs["tt-broken"] = errBoom

	waitFor(t, s.SelectMovie("tt-broken"))

	detail := s.View().Detail
	require.NotNil(t, detail)
	assert.False(t, detail.Loading)
	assert.False(t, detail.Loaded)
	assert.False(t, detail.CanAdd)
}

func TestSession_AddKeepsNewerSelectionOpen(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SelectMovie(interstellar.ImdbID))

	var next <-chan struct{}
	f.repo.onSave = func() {
		next = s.SelectMovie(inception.ImdbID)
	}
	require.NoError(t, s.AddWatched(context.Background()))
	waitFor(t, next)

	view := s.View()
	require.Len(t, view.Watched, 1)
	assert.Equal(t, interstellar.ImdbID, view.Watched[0].ImdbID)
	assert.Equal(t, inception.ImdbID, view.SelectedID)
	require.NotNil(t, view.Detail)
	assert.Equal(t, "Movie | Inception", view.Title)
}

func TestSession_DetailFailureShowsFallbacks(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	f.catalog.detailErrs["tt9999999"] = errBoom

	waitFor(t, s.SelectMovie("tt9999999"))

	detail := s.View().Detail
	require.NotNil(t, detail)
	assert.Equal(t, "Unknown Title", detail.Display.Title)
	assert.Equal(t, "Unknown director", detail.Display.Director)
}

func TestSession_StaleDetailIsDiscarded(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session
	slow := f.catalog.gate(interstellar.ImdbID)

	first := s.SelectMovie(interstellar.ImdbID)
	second := s.SelectMovie(inception.ImdbID)
	waitFor(t, second)

	close(slow)
	waitFor(t, first)

	detail := s.View().Detail
	require.NotNil(t, detail)
	assert.Equal(t, "Inception", detail.Movie.Title)
	assert.Equal(t, "Movie | Inception", s.Title())
}

func TestSession_RatingResetsOnReopen(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	require.NoError(t, s.HoverRating(2))
	require.NoError(t, s.Rate(6))
	require.NoError(t, s.LeaveRating())
	assert.Equal(t, RatingView{Max: 10, Rating: 7, Label: "7"}, s.View().Detail.Rating)

	s.CloseMovie()
	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	assert.Equal(t, 0, s.View().Detail.Rating.Rating)
}

func TestSession_RatingOutOfRange(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SelectMovie(interstellar.ImdbID))
	assert.Error(t, s.Rate(10))
	assert.Error(t, s.HoverRating(-1))
}

func TestSession_PersistsQueryAndSelection(t *testing.T) {
	f := newSessionFixture(t)
	s := f.session

	waitFor(t, s.SetQuery("inception"))
	waitFor(t, s.SelectMovie(inception.ImdbID))

	state := f.states.get(s.ID)
	assert.Equal(t, "inception", state.Query)
	assert.Equal(t, inception.ImdbID, state.SelectedID)

	s.PressKey(KeyEscape)
	assert.Equal(t, "", f.states.get(s.ID).SelectedID)
}
