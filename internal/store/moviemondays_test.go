package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

func addSelection(t *testing.T, s *Store, mmID uint, tmdbID int64) *models.MovieSelection {
	t.Helper()
	sel := &models.MovieSelection{MovieMondayID: mmID, TmdbMovieID: tmdbID, Title: "m"}
	require.NoError(t, s.AddSelection(context.Background(), sel))
	return sel
}

func TestCreateMovieMondayUniquePerGroupAndDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	seedMovieMonday(t, s, g, u, date)

	// same calendar day, different time of day
	dup := &models.MovieMonday{Date: date.Add(19 * time.Hour), GroupID: g.ID, PickerUserID: u.ID}
	assert.ErrorIs(t, s.CreateMovieMonday(ctx, dup), ErrDuplicate)

	// a different group may use the same date
	g2 := seedGroup(t, s, u, "Other Club")
	other := &models.MovieMonday{Date: date, GroupID: g2.ID, PickerUserID: u.ID}
	assert.NoError(t, s.CreateMovieMonday(ctx, other))
}

func TestGetMovieMondayByDateIgnoresTimeOfDay(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	date := time.Date(2025, 6, 2, 20, 30, 0, 0, time.UTC)
	mm := seedMovieMonday(t, s, g, u, date)

	got, err := s.GetMovieMondayByDate(context.Background(), time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), []uint{g.ID})
	require.NoError(t, err)
	assert.Equal(t, mm.ID, got.ID)

	_, err = s.GetMovieMondayByDate(context.Background(), date, []uint{g.ID + 100})
	assert.Error(t, err)
}

func TestAddSelectionCapAndStatusTransition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	mm := seedMovieMonday(t, s, g, u, time.Now())

	addSelection(t, s, mm.ID, 100)
	addSelection(t, s, mm.ID, 200)

	got, err := s.GetMovieMonday(ctx, mm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	// 3rd selection moves pending -> in-progress
	addSelection(t, s, mm.ID, 300)
	got, err = s.GetMovieMonday(ctx, mm.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	// a 4th is rejected
	fourth := &models.MovieSelection{MovieMondayID: mm.ID, TmdbMovieID: 400, Title: "m"}
	assert.ErrorIs(t, s.AddSelection(ctx, fourth), ErrSelectionLimit)
}

func TestAddSelectionRejectsDuplicateMovie(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	mm := seedMovieMonday(t, s, g, u, time.Now())

	addSelection(t, s, mm.ID, 100)
	dup := &models.MovieSelection{MovieMondayID: mm.ID, TmdbMovieID: 100, Title: "m"}
	assert.ErrorIs(t, s.AddSelection(context.Background(), dup), ErrDuplicateSelection)
}

func TestSetWinnerExactlyOneWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	picker := seedUser(t, s)
	g := seedGroup(t, s, picker, "Film Club")
	mm := seedMovieMonday(t, s, g, picker, time.Now())
	a := addSelection(t, s, mm.ID, 100)
	b := addSelection(t, s, mm.ID, 200)
	addSelection(t, s, mm.ID, 300)

	got, err := s.SetWinner(ctx, mm.ID, a.ID, picker.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	// choosing a different winner afterwards still leaves exactly one
	got, err = s.SetWinner(ctx, mm.ID, b.ID, picker.ID)
	require.NoError(t, err)

	winners := 0
	for _, sel := range got.Selections {
		if sel.IsWinner {
			winners++
			assert.Equal(t, b.ID, sel.ID)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestSetWinnerPickerOnly(t *testing.T) {
	s := newTestStore(t)
	picker := seedUser(t, s)
	other := seedUser(t, s)
	g := seedGroup(t, s, picker, "Film Club")
	mm := seedMovieMonday(t, s, g, picker, time.Now())
	sel := addSelection(t, s, mm.ID, 100)

	_, err := s.SetWinner(context.Background(), mm.ID, sel.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotPicker)
}

func TestUpsertEventDetailsAdjustsCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	mm := seedMovieMonday(t, s, g, u, time.Now())

	require.NoError(t, s.UpsertEventDetails(ctx, &models.MovieMondayEventDetails{
		MovieMondayID: mm.ID,
		Meals:         models.StringList{"tacos", "nachos"},
		Cocktails:     models.StringList{"margarita"},
	}))

	stats, err := s.GetStatistics(ctx)
	require.NoError(t, err)
	byName := map[string]int64{}
	for _, st := range stats {
		byName[st.Name] = st.Value
	}
	assert.Equal(t, int64(2), byName[models.StatTotalMealsShared])
	assert.Equal(t, int64(1), byName[models.StatTotalCocktailsConsumed])
	assert.Equal(t, int64(1), byName[models.StatTotalMovieMondays])

	// replacing the lists applies the delta, not a second full count
	require.NoError(t, s.UpsertEventDetails(ctx, &models.MovieMondayEventDetails{
		MovieMondayID: mm.ID,
		Meals:         models.StringList{"tacos"},
		Cocktails:     models.StringList{"margarita", "old fashioned"},
	}))
	stats, err = s.GetStatistics(ctx)
	require.NoError(t, err)
	for _, st := range stats {
		byName[st.Name] = st.Value
	}
	assert.Equal(t, int64(1), byName[models.StatTotalMealsShared])
	assert.Equal(t, int64(2), byName[models.StatTotalCocktailsConsumed])
}
