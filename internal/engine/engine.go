// Package engine wraps the database with the two guarantees the stores rely
// on: every multi-step mutation runs as one atomic unit, and committed
// mutations announce the tables they touched so live queries can refresh.
package engine

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/events"
)

type Engine struct {
	db  *gorm.DB
	bus *events.Bus
}

func New(db *gorm.DB, bus *events.Bus) *Engine {
	return &Engine{db: db, bus: bus}
}

// DB exposes the underlying handle for reads. Writes go through Mutate.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

func (e *Engine) Bus() *events.Bus {
	return e.bus
}

// Mutate runs fn inside one transaction. If it commits, a change event is
// published for each listed table; if it rolls back, nothing is published.
// Declare every table fn writes — an undeclared table leaves its live
// queries stale.
func (e *Engine) Mutate(ctx context.Context, tables []string, fn func(tx *gorm.DB) error) error {
	err := e.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		return Translate(err)
	}
	for _, table := range tables {
		e.bus.Publish(ctx, events.Change{Table: table})
	}
	return nil
}

// Translate maps storage errors onto the shared taxonomy. Errors already
// carrying a code pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.NotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.Conflict, "duplicate record", err)
	default:
		return apperr.Wrap(apperr.Internal, "database error", err)
	}
}
