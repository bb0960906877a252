package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/engine"
	"github.com/xieumar/HNG-Framez/internal/logs"
	"github.com/xieumar/HNG-Framez/internal/media"
)

// Service links external identities to internal user rows.
type Service struct {
	engine *engine.Engine
	store  media.Resolver
}

func NewService(e *engine.Engine, store media.Resolver) *Service {
	return &Service{engine: e, store: store}
}

// Upsert creates or refreshes the row for an external identity. Name and
// email are resynced every call; the avatar is only written when a new value
// is supplied, never cleared. Safe to call on every sign-in: repeated calls
// with identical arguments converge to one row and one final state.
func (s *Service) Upsert(ctx context.Context, externalID, name, email string, avatar media.Ref) (string, error) {
	if externalID == "" {
		return "", apperr.New(apperr.Validation, "external id is required")
	}

	var userID string
	run := func() error {
		return s.engine.Mutate(ctx, []string{Table}, func(tx *gorm.DB) error {
			var existing User
			err := tx.Where("external_id = ?", externalID).First(&existing).Error
			switch {
			case err == nil:
				patch := map[string]any{"name": name, "email": email}
				if !avatar.IsZero() {
					patch["avatar_kind"] = avatar.Kind
					patch["avatar_value"] = avatar.Value
				}
				if err := tx.Model(&User{}).Where("id = ?", existing.ID).Updates(patch).Error; err != nil {
					return err
				}
				userID = existing.ID
				return nil
			case errors.Is(err, gorm.ErrRecordNotFound):
				row := User{
					ID:         uuid.New().String(),
					ExternalID: externalID,
					Name:       name,
					Email:      email,
					Avatar:     avatar,
					CreatedAt:  time.Now(),
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				userID = row.ID
				return nil
			default:
				return err
			}
		})
	}

	err := run()
	if apperr.CodeOf(err) == apperr.Conflict {
		// two first sign-ins raced on the unique index; the loser retries
		// and lands on the patch path
		err = run()
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// GetCurrent resolves the profile for an external identity, or nil when the
// user has not been provisioned yet. A broken avatar reference degrades to a
// null avatar instead of failing the lookup.
func (s *Service) GetCurrent(ctx context.Context, externalID string) (*Profile, error) {
	var row User
	err := s.engine.DB().WithContext(ctx).Where("external_id = ?", externalID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, engine.Translate(err)
	}

	avatarURL, err := row.Avatar.ResolveURL(ctx, s.store)
	if err != nil {
		logs.L().Warn("avatar resolution failed",
			zap.String("userID", row.ID), zap.Error(err))
		avatarURL = nil
	}

	return &Profile{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Avatar:    avatarURL,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Get returns the raw row by internal id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	var row User
	if err := s.engine.DB().WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, engine.Translate(err)
	}
	return &row, nil
}
