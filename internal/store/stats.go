package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

func incrementStat(tx *gorm.DB, name string, delta int64) error {
	if delta == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("statistics.value + ?", delta)}),
	}).Create(&models.Statistic{Name: name, Value: delta}).Error
}

// IncrementStat adjusts a counter by delta, creating the row on first use.
func (s *Store) IncrementStat(ctx context.Context, name string, delta int64) error {
	return incrementStat(s.DB.WithContext(ctx), name, delta)
}

func (s *Store) GetStatistics(ctx context.Context) ([]models.Statistic, error) {
	var out []models.Statistic
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RecomputeStatistics rebuilds every counter from the source tables in a
// single transaction: an upsert per key, so a failure leaves the previous
// values intact rather than half an update. The StringList scanner already
// counts legacy scalar values as 1.
func (s *Store) RecomputeStatistics(ctx context.Context) (map[string]int64, error) {
	totals := map[string]int64{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mondays int64
		if err := tx.Model(&models.MovieMonday{}).Count(&mondays).Error; err != nil {
			return err
		}
		totals[models.StatTotalMovieMondays] = mondays

		var details []models.MovieMondayEventDetails
		if err := tx.Find(&details).Error; err != nil {
			return err
		}
		var meals, cocktails int64
		for _, d := range details {
			meals += int64(len(d.Meals))
			cocktails += int64(len(d.Cocktails))
		}
		totals[models.StatTotalMealsShared] = meals
		totals[models.StatTotalCocktailsConsumed] = cocktails

		for name, value := range totals {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.Assignments(map[string]any{"value": value}),
			}).Create(&models.Statistic{Name: name, Value: value}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}
