package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToInterestedSubscribers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	posts, cancelPosts := bus.Subscribe("posts")
	defer cancelPosts()
	users, cancelUsers := bus.Subscribe("users")
	defer cancelUsers()

	bus.Publish(ctx, Change{Table: "posts"})

	select {
	case change := <-posts:
		assert.Equal(t, "posts", change.Table)
	case <-time.After(time.Second):
		t.Fatal("posts subscriber got nothing")
	}

	select {
	case <-users:
		t.Fatal("users subscriber should not hear about posts")
	default:
	}
}

func TestBusMultiTableSubscription(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	ch, cancel := bus.Subscribe("posts", "comments")
	defer cancel()

	bus.Publish(ctx, Change{Table: "comments"})

	select {
	case change := <-ch:
		assert.Equal(t, "comments", change.Table)
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
}

func TestBusCoalescesWhilePending(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	ch, cancel := bus.Subscribe("posts")
	defer cancel()

	// nobody is draining: the burst must collapse into one pending wake-up,
	// not block the publisher
	for i := 0; i < 10; i++ {
		bus.Publish(ctx, Change{Table: "posts"})
	}

	assert.Len(t, ch, 1)

	<-ch
	// once drained, the next commit is heard again
	bus.Publish(ctx, Change{Table: "posts"})
	assert.Len(t, ch, 1)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	ch, cancel := bus.Subscribe("posts")
	cancel()
	cancel() // idempotent

	bus.Publish(ctx, Change{Table: "posts"})

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("delivery after unsubscribe")
		}
	default:
	}
}
