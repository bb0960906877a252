// Package events is the table-change bus behind the live query layer. Every
// committed mutation publishes the set of tables it touched; live queries
// subscribe to the tables they read and re-run on delivery.
package events

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xieumar/HNG-Framez/internal/logs"
)

// Change identifies a committed write against one table.
type Change struct {
	Table string `json:"table"`
}

type subscriber struct {
	tables map[string]bool
	ch     chan Change
}

// Bus fans table changes out to interested subscribers. Delivery channels have
// capacity one: while a notification is pending, further changes coalesce into
// it. The consumer re-reads current state on wake-up, so a coalesced wake-up
// still observes every commit.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int

	rdb     *redis.Client
	channel string
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// NewBusWithRedis mirrors every publish onto a redis channel and re-injects
// messages published by other instances, so a fleet of servers invalidates
// each other's live queries.
func NewBusWithRedis(ctx context.Context, rdb *redis.Client, channel string) *Bus {
	b := NewBus()
	b.rdb = rdb
	b.channel = channel

	sub := rdb.Subscribe(ctx, channel)
	go func() {
		for msg := range sub.Channel() {
			b.deliver(Change{Table: msg.Payload})
		}
	}()
	return b
}

// Subscribe registers interest in a set of tables. The returned cancel func is
// idempotent; after cancellation the channel receives nothing further.
func (b *Bus) Subscribe(tables ...string) (<-chan Change, func()) {
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[t] = true
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{tables: set, ch: make(chan Change, 1)}
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Publish delivers a change to local subscribers and, when configured, to the
// redis channel for other instances.
func (b *Bus) Publish(ctx context.Context, change Change) {
	b.deliver(change)

	if b.rdb != nil {
		if err := b.rdb.Publish(ctx, b.channel, change.Table).Err(); err != nil {
			logs.L().Warn("redis publish failed", zap.String("table", change.Table), zap.Error(err))
		}
	}
}

func (b *Bus) deliver(change Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.tables[change.Table] {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			// a wake-up is already pending; this commit coalesces into it
		}
	}
}
