package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

func TestRegistrationCreatesDefaultCategory(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s)

	cats, err := s.ListCategoriesForUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, models.DefaultCategoryName, cats[0].Name)
}

func TestDefaultCategoryCannotBeDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	def, err := s.DefaultCategory(ctx, u.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteCategory(ctx, def.ID, u.ID), ErrDefaultCategory)

	// a second category is deletable
	extra := &models.WatchlistCategory{UserID: u.ID, Name: "Horror"}
	require.NoError(t, s.CreateCategory(ctx, extra))
	assert.NoError(t, s.DeleteCategory(ctx, extra.ID, u.ID))
}

func TestQuickAddIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)

	first, exists, err := s.QuickAdd(ctx, u.ID, &models.WatchlistItem{TmdbMovieID: 550, Title: "Fight Club"})
	require.NoError(t, err)
	assert.False(t, exists)

	second, exists, err := s.QuickAdd(ctx, u.ID, &models.WatchlistItem{TmdbMovieID: 550, Title: "Fight Club"})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, first.ID, second.ID)

	def, err := s.DefaultCategory(ctx, u.ID)
	require.NoError(t, err)
	c, err := s.GetCategory(ctx, def.ID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestAddItemRejectsDuplicateAndAssignsSortOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	def, err := s.DefaultCategory(ctx, u.ID)
	require.NoError(t, err)

	a := &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 1, Title: "a"}
	b := &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 2, Title: "b"}
	require.NoError(t, s.AddItem(ctx, a, u.ID))
	require.NoError(t, s.AddItem(ctx, b, u.ID))
	assert.Equal(t, 0, a.SortOrder)
	assert.Equal(t, 1, b.SortOrder)

	dup := &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 1, Title: "a"}
	assert.ErrorIs(t, s.AddItem(ctx, dup, u.ID), ErrDuplicateItem)
}

func TestAddItemForeignCategoryForbidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	intruder := seedUser(t, s)
	def, err := s.DefaultCategory(ctx, owner.ID)
	require.NoError(t, err)

	it := &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 1, Title: "a"}
	assert.ErrorIs(t, s.AddItem(ctx, it, intruder.ID), ErrForbidden)
}

func TestAddToCategoriesIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	other := seedUser(t, s)
	def, err := s.DefaultCategory(ctx, u.ID)
	require.NoError(t, err)
	otherDef, err := s.DefaultCategory(ctx, other.ID)
	require.NoError(t, err)

	// one foreign category poisons the whole batch
	_, _, err = s.AddToCategories(ctx, u.ID, []uint{def.ID, otherDef.ID}, &models.WatchlistItem{TmdbMovieID: 7, Title: "x"})
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := s.GetCategory(ctx, def.ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	// duplicates are skipped, not errors
	require.NoError(t, s.AddItem(ctx, &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 7, Title: "x"}, u.ID))
	second := &models.WatchlistCategory{UserID: u.ID, Name: "Second"}
	require.NoError(t, s.CreateCategory(ctx, second))
	added, skipped, err := s.AddToCategories(ctx, u.ID, []uint{def.ID, second.ID}, &models.WatchlistItem{TmdbMovieID: 7, Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID}, added)
	assert.Equal(t, []uint{def.ID}, skipped)
}

func TestReorderItemsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	def, err := s.DefaultCategory(ctx, u.ID)
	require.NoError(t, err)

	a := &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 1, Title: "a"}
	b := &models.WatchlistItem{CategoryID: def.ID, TmdbMovieID: 2, Title: "b"}
	require.NoError(t, s.AddItem(ctx, a, u.ID))
	require.NoError(t, s.AddItem(ctx, b, u.ID))

	require.NoError(t, s.ReorderItems(ctx, def.ID, u.ID, map[uint]int{a.ID: 5, b.ID: 2}))
	c, err := s.GetCategory(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, c.Items[0].ID)
	assert.Equal(t, a.ID, c.Items[1].ID)

	// an unknown item rolls the whole reorder back
	err = s.ReorderItems(ctx, def.ID, u.ID, map[uint]int{a.ID: 0, 99999: 1})
	assert.Error(t, err)
	c, err = s.GetCategory(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].SortOrder)
	assert.Equal(t, 5, c.Items[1].SortOrder)
}

func TestToggleLikeKeepsCounterConsistent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	fan := seedUser(t, s)
	cat := &models.WatchlistCategory{UserID: owner.ID, Name: "Best Of", IsPublic: true}
	require.NoError(t, s.CreateCategory(ctx, cat))

	checkConsistent := func(expected int) {
		t.Helper()
		got, err := s.GetCategory(ctx, cat.ID)
		require.NoError(t, err)
		rows, err := s.CountLikes(ctx, cat.ID)
		require.NoError(t, err)
		assert.Equal(t, expected, got.LikesCount)
		assert.Equal(t, int64(expected), rows)
	}

	liked, count, err := s.ToggleLike(ctx, cat.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)
	checkConsistent(1)

	liked, count, err = s.ToggleLike(ctx, cat.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)
	checkConsistent(0)
}

func TestToggleLikePrivateCategoryForbidden(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s)
	stranger := seedUser(t, s)
	cat := &models.WatchlistCategory{UserID: owner.ID, Name: "Secret"}
	require.NoError(t, s.CreateCategory(ctx, cat))

	_, _, err := s.ToggleLike(ctx, cat.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateCategoryRenameRegeneratesSlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s)
	cat := &models.WatchlistCategory{UserID: u.ID, Name: "Film Noir", IsPublic: true}
	require.NoError(t, s.CreateCategory(ctx, cat))
	assert.Equal(t, "film-noir", cat.Slug)

	name := "Neo Noir"
	got, err := s.UpdateCategory(ctx, cat.ID, u.ID, &name, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "neo-noir", got.Slug)
}
