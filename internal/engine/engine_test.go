package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/database"
	"github.com/xieumar/HNG-Framez/internal/events"
)

type note struct {
	ID   string `gorm:"primaryKey"`
	Body string
}

type counter struct {
	ID    string `gorm:"primaryKey"`
	Total int64
}

func newTestEngine(t *testing.T) (*Engine, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	db := database.OpenTest(t, &note{}, &counter{})
	return New(db, bus), bus
}

func TestMutateCommitsAtomically(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	err := eng.Mutate(ctx, []string{"notes", "counters"}, func(tx *gorm.DB) error {
		if err := tx.Create(&note{ID: "n1", Body: "hello"}).Error; err != nil {
			return err
		}
		return tx.Create(&counter{ID: "c1", Total: 1}).Error
	})
	require.NoError(t, err)

	var notes, counters int64
	eng.DB().Model(&note{}).Count(&notes)
	eng.DB().Model(&counter{}).Count(&counters)
	assert.EqualValues(t, 1, notes)
	assert.EqualValues(t, 1, counters)
}

func TestMutateRollsBackBothEffects(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	err := eng.Mutate(ctx, []string{"notes"}, func(tx *gorm.DB) error {
		if err := tx.Create(&note{ID: "n1"}).Error; err != nil {
			return err
		}
		return errors.New("step two failed")
	})
	require.Error(t, err)

	// either both effects are visible or neither; here, neither
	var notes int64
	eng.DB().Model(&note{}).Count(&notes)
	assert.EqualValues(t, 0, notes)
}

func TestMutatePublishesOnCommitOnly(t *testing.T) {
	eng, bus := newTestEngine(t)
	ctx := context.Background()

	ch, cancel := bus.Subscribe("notes")
	defer cancel()

	err := eng.Mutate(ctx, []string{"notes"}, func(tx *gorm.DB) error {
		return errors.New("rollback")
	})
	require.Error(t, err)
	assert.Len(t, ch, 0, "rollback must not notify")

	err = eng.Mutate(ctx, []string{"notes"}, func(tx *gorm.DB) error {
		return tx.Create(&note{ID: "n1"}).Error
	})
	require.NoError(t, err)
	assert.Len(t, ch, 1, "commit must notify")
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, Translate(nil))

	assert.Equal(t, apperr.NotFound, apperr.CodeOf(Translate(gorm.ErrRecordNotFound)))
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(Translate(gorm.ErrDuplicatedKey)))
	assert.Equal(t, apperr.Internal, apperr.CodeOf(Translate(errors.New("boom"))))

	// already-typed errors pass through untouched
	typed := apperr.New(apperr.Forbidden, "nope")
	assert.Equal(t, apperr.Forbidden, apperr.CodeOf(Translate(typed)))
}

func TestMutateMapsNotFound(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	err := eng.Mutate(ctx, []string{"notes"}, func(tx *gorm.DB) error {
		var row note
		return tx.First(&row, "id = ?", "missing").Error
	})
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
}

func TestMutateMapsDuplicateKey(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Mutate(ctx, []string{"notes"}, func(tx *gorm.DB) error {
		return tx.Create(&note{ID: "n1"}).Error
	}))

	err := eng.Mutate(ctx, []string{"notes"}, func(tx *gorm.DB) error {
		return tx.Create(&note{ID: "n1"}).Error
	})
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
}
