package comment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/engine"
	"github.com/xieumar/HNG-Framez/internal/logs"
	"github.com/xieumar/HNG-Framez/internal/media"
	"github.com/xieumar/HNG-Framez/internal/post"
	"github.com/xieumar/HNG-Framez/internal/user"
)

type Service struct {
	engine *engine.Engine
	store  media.Resolver
}

func NewService(e *engine.Engine, store media.Resolver) *Service {
	return &Service{engine: e, store: store}
}

// Create inserts the comment and increments the parent's commentsCount in one
// transaction. It returns the post's new version so the client can clear its
// optimistic delta once a live result catches up to that version.
func (s *Service) Create(ctx context.Context, postID, userID, content string) (commentID string, postVersion int64, err error) {
	if content == "" {
		return "", 0, apperr.New(apperr.Validation, "comment text is required")
	}

	row := Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	err = s.engine.Mutate(ctx, []string{Table, post.Table}, func(tx *gorm.DB) error {
		found, err := post.BumpCounter(tx, postID, "comments_count", 1)
		if err != nil {
			return err
		}
		if !found {
			return apperr.New(apperr.NotFound, "post not found")
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		postVersion, err = post.CurrentVersion(tx, postID)
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return row.ID, postVersion, nil
}

// Delete removes the comment and decrements the parent's counter, floored at
// zero. Only the comment's author may delete it. A parent that was itself
// deleted in the meantime is fine: the bump just hits zero rows.
func (s *Service) Delete(ctx context.Context, commentID, callerID string) error {
	return s.engine.Mutate(ctx, []string{Table, post.Table}, func(tx *gorm.DB) error {
		var row Comment
		if err := tx.First(&row, "id = ?", commentID).Error; err != nil {
			return err
		}
		if row.UserID != callerID {
			return apperr.New(apperr.Forbidden, "not the comment author")
		}
		if err := tx.Delete(&Comment{}, "id = ?", commentID).Error; err != nil {
			return err
		}
		_, err := post.BumpCounter(tx, row.PostID, "comments_count", -1)
		return err
	})
}

// ForPost lists a post's comments newest first, authors resolved. Avatar
// resolution failures cost that avatar, never the list.
func (s *Service) ForPost(ctx context.Context, postID string) ([]WithAuthor, error) {
	var rows []Comment
	err := s.engine.DB().WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, engine.Translate(err)
	}

	authors, err := s.loadAuthors(ctx, rows)
	if err != nil {
		return nil, err
	}

	enriched := make([]WithAuthor, 0, len(rows))
	for _, row := range rows {
		item := WithAuthor{
			ID:        row.ID,
			PostID:    row.PostID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
		}
		if author := authors[row.UserID]; author != nil {
			avatarURL, err := author.Avatar.ResolveURL(ctx, s.store)
			if err != nil {
				logs.L().Warn("avatar resolution failed",
					zap.String("userID", author.ID), zap.Error(err))
				avatarURL = nil
			}
			item.Author = &Author{ID: author.ID, Name: author.Name, Avatar: avatarURL}
		}
		enriched = append(enriched, item)
	}
	return enriched, nil
}

func (s *Service) loadAuthors(ctx context.Context, rows []Comment) (map[string]*user.User, error) {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seen[row.UserID] {
			seen[row.UserID] = true
			ids = append(ids, row.UserID)
		}
	}
	if len(ids) == 0 {
		return map[string]*user.User{}, nil
	}

	var users []user.User
	if err := s.engine.DB().WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, engine.Translate(err)
	}

	byID := make(map[string]*user.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	return byID, nil
}
