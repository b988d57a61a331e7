package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Bram-G/SpecialCouscousBackEnd-sub000/internal/models"
)

// EnsureSection finds or creates the comment section anchoring a content
// target.
func (s *Store) EnsureSection(ctx context.Context, contentType models.ContentType, contentID int64) (*models.CommentSection, error) {
	var sec models.CommentSection
	err := s.DB.WithContext(ctx).
		Where(models.CommentSection{ContentType: contentType, ContentID: contentID}).
		Attrs(models.CommentSection{IsActive: true}).
		FirstOrCreate(&sec).Error
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

// CreateComment inserts a comment, bumping the section total and, for a
// reply, the parent's replyCount, in one transaction. Replies must target a
// comment in the same section.
func (s *Store) CreateComment(ctx context.Context, c *models.Comment) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sec models.CommentSection
		if err := tx.First(&sec, c.SectionID).Error; err != nil {
			return err
		}
		if !sec.IsActive {
			return ErrForbidden
		}
		if c.ParentCommentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, "id = ? AND section_id = ?", *c.ParentCommentID, c.SectionID).Error; err != nil {
				return err
			}
			if err := tx.Model(&parent).
				Update("reply_count", gorm.Expr("reply_count + 1")).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return tx.Model(&sec).
			Update("total_comments", gorm.Expr("total_comments + 1")).Error
	})
}

func (s *Store) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.DB.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns the section's top-level comments with their replies,
// newest threads first, replies oldest first.
func (s *Store) ListComments(ctx context.Context, sectionID uint) ([]models.Comment, error) {
	var out []models.Comment
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Replies", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC").Preload("User") }).
		Where("section_id = ? AND parent_comment_id IS NULL", sectionID).
		Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// VotesForUser maps comment id -> the caller's vote within a section.
func (s *Store) VotesForUser(ctx context.Context, sectionID, userID uint) (map[uint]models.VoteType, error) {
	var votes []models.CommentVote
	if err := s.DB.WithContext(ctx).
		Joins("JOIN comments c ON c.id = comment_votes.comment_id").
		Where("c.section_id = ? AND comment_votes.user_id = ?", sectionID, userID).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]models.VoteType, len(votes))
	for _, v := range votes {
		out[v.CommentID] = v.VoteType
	}
	return out, nil
}

// EditComment replaces the content and records the edit. Author only.
func (s *Store) EditComment(ctx context.Context, id, userID uint, content string) (*models.Comment, error) {
	var c models.Comment
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrForbidden
	}
	if c.IsDeleted {
		return nil, ErrForbidden
	}
	now := time.Now()
	if err := s.DB.WithContext(ctx).Model(&c).Updates(map[string]any{
		"content":   content,
		"is_edited": true,
		"edited_at": now,
	}).Error; err != nil {
		return nil, err
	}
	c.Content = content
	c.IsEdited = true
	c.EditedAt = &now
	return &c, nil
}

// SoftDeleteComment hides content but keeps the row so thread structure and
// reply counts stay valid.
func (s *Store) SoftDeleteComment(ctx context.Context, id, userID uint) error {
	var c models.Comment
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return err
	}
	if c.UserID != userID {
		return ErrForbidden
	}
	return s.DB.WithContext(ctx).Model(&c).Updates(map[string]any{
		"is_deleted": true,
		"content":    "",
	}).Error
}

// VoteComment applies one-vote-per-user semantics: a repeat of the same type
// removes the vote, the opposite type flips it. voteScore is recomputed as
// upvotes - downvotes inside the transaction.
func (s *Store) VoteComment(ctx context.Context, commentID, userID uint, voteType models.VoteType) (*models.Comment, error) {
	var c models.Comment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&c, commentID).Error; err != nil {
			return err
		}
		var existing models.CommentVote
		err := tx.First(&existing, "comment_id = ? AND user_id = ?", commentID, userID).Error
		switch {
		case err == nil && existing.VoteType == voteType:
			// toggle off
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if voteType == models.VoteUp {
				c.Upvotes--
			} else {
				c.Downvotes--
			}
		case err == nil:
			// flip
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return err
			}
			if voteType == models.VoteUp {
				c.Upvotes++
				c.Downvotes--
			} else {
				c.Upvotes--
				c.Downvotes++
			}
		case notFound(err):
			if err := tx.Create(&models.CommentVote{CommentID: commentID, UserID: userID, VoteType: voteType}).Error; err != nil {
				return err
			}
			if voteType == models.VoteUp {
				c.Upvotes++
			} else {
				c.Downvotes++
			}
		default:
			return err
		}
		c.VoteScore = c.Upvotes - c.Downvotes
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).Updates(map[string]any{
			"upvotes":    c.Upvotes,
			"downvotes":  c.Downvotes,
			"vote_score": c.VoteScore,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ReportComment(ctx context.Context, r *models.CommentReport) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", r.CommentID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return s.DB.WithContext(ctx).Create(r).Error
}
