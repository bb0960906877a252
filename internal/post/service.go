package post

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
	"github.com/xieumar/HNG-Framez/internal/storage"
	"github.com/xieumar/HNG-Framez/internal/user"
)

// MaxContentLen bounds post text; enforced at the HTTP boundary.
const MaxContentLen = 500

type Service struct {
	engine *engine.Engine
	store  storage.ObjectStore
}

func NewService(e *engine.Engine, store storage.ObjectStore) *Service {
	return &Service{engine: e, store: store}
}

// Create inserts a post with all counters at zero. The "content may be empty
// only when an image is attached" rule belongs to the caller; the store takes
// what it is given.
func (s *Service) Create(ctx context.Context, userID, content string, image media.Ref) (string, error) {
	row := Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   content,
		Image:     image,
		CreatedAt: time.Now(),
	}
	err := s.engine.Mutate(ctx, []string{Table}, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// Update rewrites the content. Only the owner may edit: ownership is checked
// here in the mutation, not left to whoever renders an edit button.
func (s *Service) Update(ctx context.Context, postID, callerID, content string) error {
	return s.engine.Mutate(ctx, []string{Table}, func(tx *gorm.DB) error {
		var row Post
		if err := tx.First(&row, "id = ?", postID).Error; err != nil {
			return err
		}
		if row.UserID != callerID {
			return apperr.New(apperr.Forbidden, "not the post owner")
		}
		return tx.Model(&Post{}).Where("id = ?", postID).UpdateColumns(map[string]any{
			"content":    content,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		}).Error
	})
}

// Delete removes the post and, in the same transaction, every like and
// comment row referencing it. The stored image blob is reclaimed best-effort
// after commit: a storage failure is logged and swallowed, never blocking the
// row cascade. If the blob delete is lost to a crash, the orphan is harmless
// garbage no surviving query reaches.
func (s *Service) Delete(ctx context.Context, postID, callerID string) error {
	var image media.Ref
	err := s.engine.Mutate(ctx, []string{Table, "likes", "comments"}, func(tx *gorm.DB) error {
		var row Post
		if err := tx.First(&row, "id = ?", postID).Error; err != nil {
			return err
		}
		if row.UserID != callerID {
			return apperr.New(apperr.Forbidden, "not the post owner")
		}
		image = row.Image

		if err := tx.Where("post_id = ?", postID).Delete(&likeRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&commentRow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Post{}, "id = ?", postID).Error
	})
	if err != nil {
		return err
	}

	if image.Kind == media.KindStored {
		if err := s.store.Delete(ctx, image.Value); err != nil {
			logs.L().Warn("image cleanup failed",
				zap.String("postID", postID), zap.String("objectID", image.Value), zap.Error(err))
		}
	}
	return nil
}

// Get is the point lookup used by the edit screen.
func (s *Service) Get(ctx context.Context, postID string) (*Post, error) {
	var row Post
	if err := s.engine.DB().WithContext(ctx).First(&row, "id = ?", postID).Error; err != nil {
		return nil, engine.Translate(err)
	}
	return &row, nil
}

// GetAll returns the feed: newest first, image URLs resolved, authors
// attached. Enrichment failures degrade per row — a corrupt reference costs
// that field, never the feed.
func (s *Service) GetAll(ctx context.Context) ([]View, error) {
	var rows []Post
	if err := s.engine.DB().WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, engine.Translate(err)
	}

	authors, err := s.loadAuthors(ctx, rows)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.buildView(ctx, row, authors[row.UserID]))
	}
	return views, nil
}

// GetForUser returns one user's posts, newest first, images resolved. No
// author enrichment: the caller already knows whose posts these are.
func (s *Service) GetForUser(ctx context.Context, userID string) ([]View, error) {
	var rows []Post
	err := s.engine.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, engine.Translate(err)
	}

	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, s.buildView(ctx, row, nil))
	}
	return views, nil
}

// IncrementShares is fire-and-forget: no share row exists, and bumping a
// post that has since been deleted is silently ignored.
func (s *Service) IncrementShares(ctx context.Context, postID string) error {
	return s.engine.Mutate(ctx, []string{Table}, func(tx *gorm.DB) error {
		_, err := BumpCounter(tx, postID, "shares_count", 1)
		return err
	})
}

func (s *Service) loadAuthors(ctx context.Context, rows []Post) (map[string]*user.User, error) {
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

func (s *Service) buildView(ctx context.Context, row Post, author *user.User) View {
	view := View{
		ID:            row.ID,
		UserID:        row.UserID,
		Content:       row.Content,
		CreatedAt:     row.CreatedAt,
		LikesCount:    row.LikesCount,
		CommentsCount: row.CommentsCount,
		SharesCount:   row.SharesCount,
		Version:       row.Version,
	}

	imageURL, err := row.Image.ResolveURL(ctx, s.store)
	if err != nil {
		logs.L().Warn("image resolution failed", zap.String("postID", row.ID), zap.Error(err))
	} else {
		view.ImageURL = imageURL
	}

	if author != nil {
		avatarURL, err := author.Avatar.ResolveURL(ctx, s.store)
		if err != nil {
			logs.L().Warn("avatar resolution failed", zap.String("userID", author.ID), zap.Error(err))
			avatarURL = nil
		}
		view.Author = &Author{ID: author.ID, Name: author.Name, Avatar: avatarURL}
	}
	return view
}

// likeRow / commentRow give the cascade its table targets without importing
// the engagement packages (they import this one for counter bumps).
type likeRow struct{}

func (likeRow) TableName() string { return "likes" }

type commentRow struct{}

func (commentRow) TableName() string { return "comments" }
