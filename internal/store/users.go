package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

// CreateUser inserts the user and its default watchlist category in one
// transaction. A username or email collision returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", u.Username, u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&models.WatchlistCategory{
			UserID: u.ID,
			Name:   models.DefaultCategoryName,
		}).Error
	})
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserWithGroups loads the user row plus its group memberships. Implements
// auth.UserLoader.
func (s *Store) GetUserWithGroups(ctx context.Context, id uint) (*models.User, []models.Group, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, nil, err
	}
	var groups []models.Group
	if err := s.DB.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", id).Find(&groups).Error; err != nil {
		return nil, nil, err
	}
	return &u, groups, nil
}

func (s *Store) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "verification_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) MarkVerified(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"is_verified":         true,
		"verification_token":  "",
		"verification_expiry": nil,
	}).Error
}

func (s *Store) SetResetToken(ctx context.Context, id uint, token string, expiry time.Time) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"reset_token":  token,
		"reset_expiry": expiry,
	}).Error
}

func (s *Store) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "reset_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash": passwordHash,
		"reset_token":   "",
		"reset_expiry":  nil,
	}).Error
}
