package like

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/engine"
	"github.com/xieumar/HNG-Framez/internal/post"
	"github.com/xieumar/HNG-Framez/internal/user"
)

type Service struct {
	engine *engine.Engine
}

func NewService(e *engine.Engine) *Service {
	return &Service{engine: e}
}

// Toggle flips the caller's like on a post: delete + floored decrement when a
// like exists, insert + increment otherwise, row change and counter patch in
// one transaction. A concurrent toggle that loses the race on the unique
// index surfaces as Conflict; one retry lands on the opposite branch.
func (s *Service) Toggle(ctx context.Context, postID, userID string) (bool, error) {
	liked, err := s.toggleOnce(ctx, postID, userID)
	if apperr.CodeOf(err) == apperr.Conflict {
		liked, err = s.toggleOnce(ctx, postID, userID)
	}
	return liked, err
}

func (s *Service) toggleOnce(ctx context.Context, postID, userID string) (bool, error) {
	var liked bool
	err := s.engine.Mutate(ctx, []string{Table, post.Table}, func(tx *gorm.DB) error {
		var postCount int64
		if err := tx.Model(&post.Post{}).Where("id = ?", postID).Count(&postCount).Error; err != nil {
			return err
		}
		if postCount == 0 {
			return apperr.New(apperr.NotFound, "post not found")
		}

		var existing Like
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
			_, err := post.BumpCounter(tx, postID, "likes_count", -1)
			return err
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := Like{
				ID:        uuid.New().String(),
				PostID:    postID,
				UserID:    userID,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			liked = true
			_, err := post.BumpCounter(tx, postID, "likes_count", 1)
			return err
		default:
			return err
		}
	})
	return liked, err
}

// HasLiked reports whether the user currently likes the post.
func (s *Service) HasLiked(ctx context.Context, postID, userID string) (bool, error) {
	return HasLiked(s.engine.DB().WithContext(ctx), postID, userID)
}

// HasLiked is the raw existence check, split out so it can run on any handle.
func HasLiked(db *gorm.DB, postID, userID string) (bool, error) {
	var count int64
	err := db.Model(&Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, engine.Translate(err)
	}
	return count > 0, nil
}

// ForPost lists a post's likes with the likers' names attached. A liker whose
// user row is gone keeps the like but loses the name.
func (s *Service) ForPost(ctx context.Context, postID string) ([]WithUser, error) {
	var rows []Like
	err := s.engine.DB().WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, engine.Translate(err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		var users []user.User
		if err := s.engine.DB().WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, engine.Translate(err)
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	enriched := make([]WithUser, 0, len(rows))
	for _, row := range rows {
		enriched = append(enriched, WithUser{
			ID:        row.ID,
			PostID:    row.PostID,
			UserID:    row.UserID,
			UserName:  names[row.UserID],
			CreatedAt: row.CreatedAt,
		})
	}
	return enriched, nil
}
