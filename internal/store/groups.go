package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/slug"
)

// CreateGroup inserts the group and adds the creator as its first member in
// one transaction.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group, creator *models.User) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g.CreatedByID = creator.ID
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		return tx.Model(g).Association("Members").Append(creator)
	})
}

func (s *Store) GetGroup(ctx context.Context, id uint) (*models.Group, error) {
	var g models.Group
	if err := s.DB.WithContext(ctx).Preload("Members").First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) GetPublicGroupBySlug(ctx context.Context, slugStr string) (*models.Group, error) {
	var g models.Group
	if err := s.DB.WithContext(ctx).Preload("Members").
		First(&g, "slug = ? AND is_public = ?", slugStr, true).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListGroupsForUser(ctx context.Context, userID uint) ([]models.Group, error) {
	var out []models.Group
	if err := s.DB.WithContext(ctx).Preload("Members").
		Joins("JOIN group_members gm ON gm.group_id = groups.id").
		Where("gm.user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) IsGroupMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	return count > 0, err
}

// AddGroupMember is the invite redemption path; joining a group twice is
// rejected with ErrAlreadyMember.
func (s *Store) AddGroupMember(ctx context.Context, groupID, userID uint) error {
	member, err := s.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		return err
	}
	g := models.Group{ID: groupID}
	return s.DB.WithContext(ctx).Model(&g).Association("Members").Append(&u)
}

func (s *Store) LeaveGroup(ctx context.Context, groupID, userID uint) error {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.CreatedByID == userID {
		return ErrOwnerCannotLeave
	}
	member, err := s.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotGroupMember
	}
	return s.DB.WithContext(ctx).Model(g).Association("Members").Delete(&models.User{ID: userID})
}

// RemoveGroupMember enforces that only the owner may remove, and never
// themselves.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID, ownerID, memberID uint) error {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.CreatedByID != ownerID {
		return ErrNotGroupOwner
	}
	if memberID == ownerID {
		return ErrCannotRemoveSelf
	}
	member, err := s.IsGroupMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotGroupMember
	}
	return s.DB.WithContext(ctx).Model(g).Association("Members").Delete(&models.User{ID: memberID})
}

func (s *Store) groupSlugTaken(ctx context.Context) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		var count int64
		err := s.DB.WithContext(ctx).Model(&models.Group{}).
			Where("slug = ?", candidate).Count(&count).Error
		return count > 0, err
	}
}

// SetGroupVisibility toggles isPublic, lazily deriving a unique slug from the
// group name on first publish.
func (s *Store) SetGroupVisibility(ctx context.Context, groupID, ownerID uint, isPublic bool) (*models.Group, error) {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.CreatedByID != ownerID {
		return nil, ErrNotGroupOwner
	}
	updates := map[string]any{"is_public": isPublic}
	if isPublic && g.Slug == "" {
		unique, err := slug.Unique(g.Name, s.groupSlugTaken(ctx))
		if err != nil {
			return nil, err
		}
		g.Slug = unique
		updates["slug"] = unique
	}
	if err := s.DB.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	g.IsPublic = isPublic
	return g, nil
}

// Invites

func (s *Store) CreateGroupInvite(ctx context.Context, inv *models.GroupInvite) error {
	if inv.ExpiresAt.IsZero() {
		inv.ExpiresAt = time.Now().Add(7 * 24 * time.Hour)
	}
	member, err := s.IsGroupMember(ctx, inv.GroupID, inv.InvitedUserID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.GroupInvite{}).
		Where("group_id = ? AND invited_user_id = ? AND status = ?", inv.GroupID, inv.InvitedUserID, models.InvitePending).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	return s.DB.WithContext(ctx).Create(inv).Error
}

func (s *Store) ListInvitesForUser(ctx context.Context, userID uint) ([]models.GroupInvite, error) {
	var out []models.GroupInvite
	if err := s.DB.WithContext(ctx).Preload("Group").
		Where("invited_user_id = ? AND status = ?", userID, models.InvitePending).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RespondToInvite marks the invite accepted or rejected; acceptance also adds
// the membership inside the same transaction.
func (s *Store) RespondToInvite(ctx context.Context, inviteID, userID uint, accept bool) (*models.GroupInvite, error) {
	var inv models.GroupInvite
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&inv, "id = ? AND invited_user_id = ?", inviteID, userID).Error; err != nil {
			return err
		}
		if inv.Status != models.InvitePending {
			return ErrInviteResolved
		}
		if time.Now().After(inv.ExpiresAt) {
			return ErrInviteExpired
		}
		status := models.InviteRejected
		if accept {
			status = models.InviteAccepted
			var u models.User
			if err := tx.First(&u, userID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Group{ID: inv.GroupID}).Association("Members").Append(&u); err != nil {
				return err
			}
		}
		inv.Status = status
		return tx.Model(&inv).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
