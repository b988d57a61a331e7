package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

func TestIncrementStatCreatesAndAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.IncrementStat(ctx, models.StatTotalMovieMondays, 2))
	require.NoError(t, s.IncrementStat(ctx, models.StatTotalMovieMondays, 3))

	stats, err := s.GetStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(5), stats[0].Value)
}

func TestRecomputeStatisticsFromSourceTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	mm1 := seedMovieMonday(t, s, g, u, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	mm2 := seedMovieMonday(t, s, g, u, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC))

	require.NoError(t, s.UpsertEventDetails(ctx, &models.MovieMondayEventDetails{
		MovieMondayID: mm1.ID,
		Meals:         models.StringList{"tacos", "guac"},
		Cocktails:     models.StringList{"margarita"},
	}))
	require.NoError(t, s.UpsertEventDetails(ctx, &models.MovieMondayEventDetails{
		MovieMondayID: mm2.ID,
		Meals:         models.StringList{"pizza"},
	}))

	// drift the counters to prove recompute repairs them
	require.NoError(t, s.IncrementStat(ctx, models.StatTotalMealsShared, 40))

	totals, err := s.RecomputeStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals[models.StatTotalMovieMondays])
	assert.Equal(t, int64(3), totals[models.StatTotalMealsShared])
	assert.Equal(t, int64(1), totals[models.StatTotalCocktailsConsumed])

	stats, err := s.GetStatistics(ctx)
	require.NoError(t, err)
	byName := map[string]int64{}
	for _, st := range stats {
		byName[st.Name] = st.Value
	}
	assert.Equal(t, int64(3), byName[models.StatTotalMealsShared])
}

func TestRecomputeToleratesLegacyScalarValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	g := seedGroup(t, s, u, "Film Club")
	mm := seedMovieMonday(t, s, g, u, time.Now())

	// pre-migration rows stored a bare string instead of a JSON array
	require.NoError(t, s.DB.Exec(
		"INSERT INTO movie_monday_event_details (movie_monday_id, meals, cocktails, desserts, notes, created_at, updated_at) VALUES (?, ?, ?, ?, '', ?, ?)",
		mm.ID, "spaghetti", `["negroni","spritz"]`, "[]", time.Now(), time.Now(),
	).Error)

	totals, err := s.RecomputeStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals[models.StatTotalMealsShared])
	assert.Equal(t, int64(2), totals[models.StatTotalCocktailsConsumed])
}
