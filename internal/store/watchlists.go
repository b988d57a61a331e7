package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/slug"
)

func (s *Store) CreateCategory(ctx context.Context, c *models.WatchlistCategory) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.WatchlistCategory{}).
		Where("user_id = ? AND name = ?", c.UserID, c.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if c.IsPublic {
		unique, err := slug.Unique(c.Name, s.categorySlugTaken(ctx, c.UserID))
		if err != nil {
			return err
		}
		c.Slug = unique
	}
	return s.DB.WithContext(ctx).Create(c).Error
}

func (s *Store) categorySlugTaken(ctx context.Context, userID uint) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		var count int64
		err := s.DB.WithContext(ctx).Model(&models.WatchlistCategory{}).
			Where("user_id = ? AND slug = ?", userID, candidate).Count(&count).Error
		return count > 0, err
	}
}

func (s *Store) GetCategory(ctx context.Context, id uint) (*models.WatchlistCategory, error) {
	var c models.WatchlistCategory
	if err := s.DB.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCategoriesForUser(ctx context.Context, userID uint) ([]models.WatchlistCategory, error) {
	var out []models.WatchlistCategory
	if err := s.DB.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order ASC") }).
		Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DefaultCategory returns the user's "My Watchlist" category.
func (s *Store) DefaultCategory(ctx context.Context, userID uint) (*models.WatchlistCategory, error) {
	var c models.WatchlistCategory
	if err := s.DB.WithContext(ctx).
		First(&c, "user_id = ? AND name = ?", userID, models.DefaultCategoryName).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCategory applies the non-nil fields. Renaming regenerates the slug.
func (s *Store) UpdateCategory(ctx context.Context, id, ownerID uint, name, description *string, isPublic *bool) (*models.WatchlistCategory, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != ownerID {
		return nil, ErrForbidden
	}
	updates := map[string]any{}
	if name != nil && *name != c.Name {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.WatchlistCategory{}).
			Where("user_id = ? AND name = ? AND id <> ?", ownerID, *name, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicate
		}
		c.Name = *name
		updates["name"] = *name
		unique, err := slug.Unique(*name, s.categorySlugTaken(ctx, ownerID))
		if err != nil {
			return nil, err
		}
		c.Slug = unique
		updates["slug"] = unique
	}
	if description != nil {
		c.Description = *description
		updates["description"] = *description
	}
	if isPublic != nil {
		c.IsPublic = *isPublic
		updates["is_public"] = *isPublic
		if *isPublic && c.Slug == "" {
			unique, err := slug.Unique(c.Name, s.categorySlugTaken(ctx, ownerID))
			if err != nil {
				return nil, err
			}
			c.Slug = unique
			updates["slug"] = unique
		}
	}
	if len(updates) == 0 {
		return c, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.WatchlistCategory{}).
		Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory refuses to delete the user's last remaining category.
func (s *Store) DeleteCategory(ctx context.Context, id, ownerID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.WatchlistCategory
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		if c.UserID != ownerID {
			return ErrForbidden
		}
		if c.Name == models.DefaultCategoryName {
			return ErrDefaultCategory
		}
		var count int64
		if err := tx.Model(&models.WatchlistCategory{}).
			Where("user_id = ?", ownerID).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastCategory
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.WatchlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.WatchlistLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
}

func (s *Store) nextSortOrder(tx *gorm.DB, categoryID uint) (int, error) {
	var next int
	err := tx.Model(&models.WatchlistItem{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(sort_order), -1)+1").Scan(&next).Error
	return next, err
}

// AddItem appends a movie to a category; a duplicate tmdb id is rejected with
// ErrDuplicateItem. New items go to the end of the list.
func (s *Store) AddItem(ctx context.Context, it *models.WatchlistItem, ownerID uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.WatchlistCategory
		if err := tx.First(&c, it.CategoryID).Error; err != nil {
			return err
		}
		if c.UserID != ownerID {
			return ErrForbidden
		}
		var dup int64
		if err := tx.Model(&models.WatchlistItem{}).
			Where("category_id = ? AND tmdb_movie_id = ?", it.CategoryID, it.TmdbMovieID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return ErrDuplicateItem
		}
		next, err := s.nextSortOrder(tx, it.CategoryID)
		if err != nil {
			return err
		}
		it.SortOrder = next
		return tx.Create(it).Error
	})
}

// QuickAdd puts a movie on the user's default category. Repeats are absorbed:
// the existing item comes back with alreadyExists=true.
func (s *Store) QuickAdd(ctx context.Context, userID uint, it *models.WatchlistItem) (existing *models.WatchlistItem, alreadyExists bool, err error) {
	def, err := s.DefaultCategory(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	it.CategoryID = def.ID
	var found models.WatchlistItem
	err = s.DB.WithContext(ctx).
		First(&found, "category_id = ? AND tmdb_movie_id = ?", def.ID, it.TmdbMovieID).Error
	if err == nil {
		return &found, true, nil
	}
	if !notFound(err) {
		return nil, false, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := s.nextSortOrder(tx, def.ID)
		if err != nil {
			return err
		}
		it.SortOrder = next
		return tx.Create(it).Error
	})
	if err != nil {
		return nil, false, err
	}
	return it, false, nil
}

// AddToCategories inserts the movie into several categories at once. Every
// category must belong to the caller before any row is written; the whole
// batch is one transaction. Categories that already hold the movie are
// reported rather than inserted.
func (s *Store) AddToCategories(ctx context.Context, ownerID uint, categoryIDs []uint, template *models.WatchlistItem) (added, skipped []uint, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.WatchlistCategory{}).
			Where("id IN ? AND user_id = ?", categoryIDs, ownerID).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(categoryIDs)) {
			return ErrForbidden
		}
		for _, cid := range categoryIDs {
			var dup int64
			if err := tx.Model(&models.WatchlistItem{}).
				Where("category_id = ? AND tmdb_movie_id = ?", cid, template.TmdbMovieID).
				Count(&dup).Error; err != nil {
				return err
			}
			if dup > 0 {
				skipped = append(skipped, cid)
				continue
			}
			next, err := s.nextSortOrder(tx, cid)
			if err != nil {
				return err
			}
			it := *template
			it.ID = 0
			it.CategoryID = cid
			it.SortOrder = next
			if err := tx.Create(&it).Error; err != nil {
				return err
			}
			added = append(added, cid)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return added, skipped, nil
}

// ReorderItems rewrites sortOrder for the given items all-or-nothing.
func (s *Store) ReorderItems(ctx context.Context, categoryID, ownerID uint, order map[uint]int) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.WatchlistCategory
		if err := tx.First(&c, categoryID).Error; err != nil {
			return err
		}
		if c.UserID != ownerID {
			return ErrForbidden
		}
		for itemID, pos := range order {
			res := tx.Model(&models.WatchlistItem{}).
				Where("id = ? AND category_id = ?", itemID, categoryID).
				Update("sort_order", pos)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

func (s *Store) UpdateItem(ctx context.Context, itemID, ownerID uint, updates map[string]any) (*models.WatchlistItem, error) {
	var it models.WatchlistItem
	if err := s.DB.WithContext(ctx).
		Joins("JOIN watchlist_categories c ON c.id = watchlist_items.category_id").
		Where("watchlist_items.id = ? AND c.user_id = ?", itemID, ownerID).
		First(&it).Error; err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&it).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *Store) RemoveItem(ctx context.Context, categoryID, itemID, ownerID uint) error {
	var c models.WatchlistCategory
	if err := s.DB.WithContext(ctx).First(&c, categoryID).Error; err != nil {
		return err
	}
	if c.UserID != ownerID {
		return ErrForbidden
	}
	res := s.DB.WithContext(ctx).
		Where("id = ? AND category_id = ?", itemID, categoryID).
		Delete(&models.WatchlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ToggleLike flips the caller's like on a public category and keeps
// likesCount equal to the number of like rows. Both writes share one
// transaction.
func (s *Store) ToggleLike(ctx context.Context, categoryID, userID uint) (liked bool, likesCount int, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.WatchlistCategory
		if err := lockForUpdate(tx).First(&c, categoryID).Error; err != nil {
			return err
		}
		if !c.IsPublic && c.UserID != userID {
			return ErrForbidden
		}
		var like models.WatchlistLike
		err := tx.First(&like, "category_id = ? AND user_id = ?", categoryID, userID).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			liked = false
			likesCount = c.LikesCount - 1
		case notFound(err):
			if err := tx.Create(&models.WatchlistLike{CategoryID: categoryID, UserID: userID}).Error; err != nil {
				return err
			}
			liked = true
			likesCount = c.LikesCount + 1
		default:
			return err
		}
		return tx.Model(&models.WatchlistCategory{}).
			Where("id = ?", categoryID).Update("likes_count", likesCount).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likesCount, nil
}

func (s *Store) ListPublicCategories(ctx context.Context, limit int) ([]models.WatchlistCategory, error) {
	var out []models.WatchlistCategory
	q := s.DB.WithContext(ctx).Where("is_public = ?", true).Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FeaturedCategories ranks public categories by likes received in the last 30
// days, most-liked first.
func (s *Store) FeaturedCategories(ctx context.Context, limit int) ([]models.WatchlistCategory, error) {
	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	var out []models.WatchlistCategory
	if err := s.DB.WithContext(ctx).Table("watchlist_categories c").Select("c.*").
		Joins("LEFT JOIN watchlist_likes l ON l.category_id = c.id AND l.created_at >= ?", cutoff).
		Where("c.is_public = ?", true).
		Group("c.id").Order("COUNT(l.id) DESC, c.likes_count DESC").
		Limit(limit).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CountLikes is the repair-tool path; normal operation relies on the
// denormalized counter.
func (s *Store) CountLikes(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.WatchlistLike{}).
		Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
