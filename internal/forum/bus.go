package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// EventType distinguishes the two live feed events.
type EventType string

const (
	EventInsert EventType = "insert"
	EventDelete EventType = "delete"
)

// Event is one change notification on a lesson's thread. Delivery is
// at-least-once with no ordering guarantee; subscribers dedupe inserts by
// comment id, which also absorbs events for changes they applied
// optimistically themselves.
type Event struct {
	Type    EventType `json:"type"`
	NodeID  string    `json:"nodeId"`
	ID      string    `json:"id"`
	Comment *Comment  `json:"comment,omitempty"`
}

// Bus carries comment events between the mutation path and live
// subscribers.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events for one lesson and a cancel
	// function. The channel closes after cancel.
	Subscribe(ctx context.Context, nodeID string) (<-chan Event, func())
}

// MemoryBus is an in-process Bus for tests and single-instance development.
type MemoryBus struct {
	subs map[string]map[chan Event]struct{}
	mu   sync.Mutex
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[chan Event]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.NodeID] {
		select {
		case ch <- ev:
		default: // slow subscriber, drop rather than block the writer
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, nodeID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	if b.subs[nodeID] == nil {
		b.subs[nodeID] = make(map[chan Event]struct{})
	}
	b.subs[nodeID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[nodeID][ch]; ok {
			delete(b.subs[nodeID], ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// RedisBus fans comment events out through Redis pub/sub so every server
// instance sees every mutation.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus creates a Redis-backed bus.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func channelFor(nodeID string) string {
	return "lophoc:forum:" + nodeID
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channelFor(ev.NodeID), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, nodeID string) (<-chan Event, func()) {
	sub := b.client.Subscribe(ctx, channelFor(nodeID))
	out := make(chan Event, 16)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("dropping malformed forum event", "error", err)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = sub.Close()
	}
	return out, cancel
}
