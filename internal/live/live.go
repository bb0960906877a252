// Package live turns plain queries into live ones: a subscription delivers
// the current result immediately, then re-delivers whenever a committed
// mutation touches one of the tables the query reads. Clients never poll.
package live

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xieumar/HNG-Framez/internal/apperr"
	"github.com/xieumar/HNG-Framez/internal/events"
	"github.com/xieumar/HNG-Framez/internal/logs"
)

// Subscription states as seen by a client. Pending is implicit: it is the
// window between Subscribe and the first delivered result, which is how the
// UI tells "still loading" from "loaded, empty".
const (
	StateLive    = "live"    // first result delivered
	StateUpdated = "updated" // re-delivered after a relevant commit
)

// Args are the flat argument record of a query invocation.
type Args map[string]string

// QueryFunc runs the query against current state.
type QueryFunc func(ctx context.Context, args Args) (any, error)

// Definition registers a named query with the tables it reads. A table
// missing from Tables means commits against it won't refresh this query.
type Definition struct {
	Name   string
	Tables []string
	Run    QueryFunc
}

// Result is one delivery to a subscriber. Version increases by one per
// delivery within a subscription, so consumers can order results and
// reconcile optimistic local state against a known-fresh snapshot.
type Result struct {
	Query   string `json:"query"`
	State   string `json:"state"`
	Version uint64 `json:"version"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Registry struct {
	bus  *events.Bus
	defs map[string]Definition
}

func NewRegistry(bus *events.Bus) *Registry {
	return &Registry{bus: bus, defs: make(map[string]Definition)}
}

func (r *Registry) Register(def Definition) {
	r.defs[def.Name] = def
}

// Subscription is one client's attachment to one live query. Results closes
// on Unsubscribe or context cancellation; that closure is terminal.
type Subscription struct {
	Results <-chan Result
	cancel  context.CancelFunc
	done    atomic.Bool
}

func (s *Subscription) Unsubscribe() {
	if s.done.CompareAndSwap(false, true) {
		s.cancel()
	}
}

// Subscribe starts a live query. The first result arrives as soon as the
// initial run completes; afterwards every commit touching the query's tables
// triggers a re-run. Bursts of commits coalesce into a single re-run that
// reads the state all of them produced.
func (r *Registry) Subscribe(ctx context.Context, name string, args Args) (*Subscription, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, apperr.New(apperr.Validation, "unknown query: "+name)
	}

	ctx, cancel := context.WithCancel(ctx)
	changes, unsubscribe := r.bus.Subscribe(def.Tables...)
	results := make(chan Result, 1)

	sub := &Subscription{Results: results, cancel: cancel}

	go func() {
		defer close(results)
		defer unsubscribe()

		var version uint64
		state := StateLive

		run := func() bool {
			data, err := def.Run(ctx, args)
			if ctx.Err() != nil {
				return false
			}
			version++
			res := Result{Query: name, State: state, Version: version}
			if err != nil {
				logs.L().Warn("live query failed", zap.String("query", name), zap.Error(err))
				res.Error = apperr.Message(err)
			} else {
				res.Data = data
			}
			deliver(ctx, results, res)
			state = StateUpdated
			return true
		}

		if !run() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				if !run() {
					return
				}
			}
		}
	}()

	return sub, nil
}

// deliver pushes a result without ever blocking on a slow consumer: if the
// previous result is still queued it is stale, so the fresh one replaces it.
func deliver(ctx context.Context, results chan Result, res Result) {
	for {
		select {
		case <-ctx.Done():
			return
		case results <- res:
			return
		default:
		}
		select {
		case <-results: // drop the stale queued result
		default:
		}
	}
}
