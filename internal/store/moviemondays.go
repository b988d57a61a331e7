package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

// dayBounds normalizes a timestamp to its calendar day.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// CreateMovieMonday inserts an event, enforcing one per (group, date). The
// caller must already be a member of the group. totalMovieMondays is bumped in
// the same transaction.
func (s *Store) CreateMovieMonday(ctx context.Context, mm *models.MovieMonday) error {
	start, end := dayBounds(mm.Date)
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MovieMonday{}).
			Where("group_id = ? AND date >= ? AND date < ?", mm.GroupID, start, end).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		if mm.Status == "" {
			mm.Status = models.StatusPending
		}
		if err := tx.Create(mm).Error; err != nil {
			return err
		}
		return incrementStat(tx, models.StatTotalMovieMondays, 1)
	})
}

func (s *Store) GetMovieMonday(ctx context.Context, id uint) (*models.MovieMonday, error) {
	var mm models.MovieMonday
	if err := s.DB.WithContext(ctx).
		Preload("Selections").Preload("Selections.Cast", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Preload("Selections.Crew").Preload("EventDetails").
		First(&mm, id).Error; err != nil {
		return nil, err
	}
	return &mm, nil
}

// GetMovieMondayByDate matches on calendar day, scoped to the caller's groups.
func (s *Store) GetMovieMondayByDate(ctx context.Context, date time.Time, groupIDs []uint) (*models.MovieMonday, error) {
	start, end := dayBounds(date)
	var mm models.MovieMonday
	if err := s.DB.WithContext(ctx).
		Preload("Selections").Preload("EventDetails").
		Where("group_id IN ? AND date >= ? AND date < ?", groupIDs, start, end).
		First(&mm).Error; err != nil {
		return nil, err
	}
	return &mm, nil
}

func (s *Store) ListMovieMondaysForGroup(ctx context.Context, groupID uint) ([]models.MovieMonday, error) {
	var out []models.MovieMonday
	if err := s.DB.WithContext(ctx).Preload("Selections").
		Where("group_id = ?", groupID).Order("date DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AddSelection appends a candidate movie. At most 3 per event; a duplicate
// tmdb id is rejected; the 3rd insert moves the event to in-progress. All
// inside one transaction so a concurrent 3rd and 4th add cannot both land.
func (s *Store) AddSelection(ctx context.Context, sel *models.MovieSelection) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mm models.MovieMonday
		if err := tx.First(&mm, sel.MovieMondayID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.MovieSelection{}).
			Where("movie_monday_id = ?", sel.MovieMondayID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxSelections {
			return ErrSelectionLimit
		}
		var dup int64
		if err := tx.Model(&models.MovieSelection{}).
			Where("movie_monday_id = ? AND tmdb_movie_id = ?", sel.MovieMondayID, sel.TmdbMovieID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateSelection
		}
		if err := tx.Create(sel).Error; err != nil {
			return err
		}
		if count+1 == models.MaxSelections && mm.Status == models.StatusPending {
			return tx.Model(&mm).Update("status", models.StatusInProgress).Error
		}
		return nil
	})
}

// SetWinner marks exactly one selection as the winner and completes the
// event. Clear-all, set-one and the status update share one transaction so no
// observer ever sees two winners.
func (s *Store) SetWinner(ctx context.Context, movieMondayID, selectionID, callerID uint) (*models.MovieMonday, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mm models.MovieMonday
		if err := lockForUpdate(tx).First(&mm, movieMondayID).Error; err != nil {
			return err
		}
		if mm.PickerUserID != callerID {
			return ErrNotPicker
		}
		var sel models.MovieSelection
		if err := tx.First(&sel, "id = ? AND movie_monday_id = ?", selectionID, movieMondayID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MovieSelection{}).
			Where("movie_monday_id = ?", movieMondayID).
			Update("is_winner", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MovieSelection{}).
			Where("id = ?", selectionID).
			Update("is_winner", true).Error; err != nil {
			return err
		}
		return tx.Model(&mm).Update("status", models.StatusCompleted).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetMovieMonday(ctx, movieMondayID)
}

// UpsertEventDetails replaces the event's meal/cocktail/dessert lists and
// adjusts the shared counters by the delta inside the same transaction.
func (s *Store) UpsertEventDetails(ctx context.Context, details *models.MovieMondayEventDetails) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.MovieMondayEventDetails
		err := tx.First(&existing, "movie_monday_id = ?", details.MovieMondayID).Error
		switch {
		case err == nil:
			mealDelta := len(details.Meals) - len(existing.Meals)
			cocktailDelta := len(details.Cocktails) - len(existing.Cocktails)
			existing.Meals = details.Meals
			existing.Cocktails = details.Cocktails
			existing.Desserts = details.Desserts
			existing.Notes = details.Notes
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			details.ID = existing.ID
			if err := incrementStat(tx, models.StatTotalMealsShared, int64(mealDelta)); err != nil {
				return err
			}
			return incrementStat(tx, models.StatTotalCocktailsConsumed, int64(cocktailDelta))
		case notFound(err):
			if err := tx.Create(details).Error; err != nil {
				return err
			}
			if err := incrementStat(tx, models.StatTotalMealsShared, int64(len(details.Meals))); err != nil {
				return err
			}
			return incrementStat(tx, models.StatTotalCocktailsConsumed, int64(len(details.Cocktails)))
		default:
			return err
		}
	})
}
