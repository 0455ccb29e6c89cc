package forum_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lop-hoc/lophoc-server/internal/forum"
)

func TestService_AddAndList(t *testing.T) {
	svc := forum.NewService(forum.NewMemoryStore(), forum.NewMemoryBus())
	ctx := context.Background()

	first, err := svc.Add(ctx, forum.Comment{NodeID: "bai-1", Author: "Lan", Content: "Em chưa hiểu ví dụ 2"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Errorf("Add() should assign id and timestamp, got %+v", first)
	}

	_, err = svc.Add(ctx, forum.Comment{NodeID: "bai-1", Author: "Thầy Minh", Content: "Xem lại phút 3:20 nhé", IsAdmin: true})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := svc.Add(ctx, forum.Comment{NodeID: "bai-2", Author: "Lan", Content: "khác bài"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := svc.List(ctx, "bai-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List() count = %d, want 2", len(got))
	}
	if got[0].ID != first.ID {
		t.Errorf("List() should be oldest first, got %+v", got)
	}
	if !got[1].IsAdmin {
		t.Error("admin flag lost on round trip")
	}
}

func TestService_AddValidation(t *testing.T) {
	svc := forum.NewService(forum.NewMemoryStore(), forum.NewMemoryBus())
	ctx := context.Background()

	tests := []struct {
		name string
		c    forum.Comment
	}{
		{"missing node", forum.Comment{Author: "a", Content: "x"}},
		{"missing author", forum.Comment{NodeID: "bai-1", Content: "x"}},
		{"empty body", forum.Comment{NodeID: "bai-1", Author: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Add(ctx, tt.c); err == nil {
				t.Error("Add() should reject the comment")
			}
		})
	}

	// Image-only comments are allowed.
	if _, err := svc.Add(ctx, forum.Comment{NodeID: "bai-1", Author: "a", ImageURL: "/uploads/x.png"}); err != nil {
		t.Errorf("Add(image only) error = %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc := forum.NewService(forum.NewMemoryStore(), forum.NewMemoryBus())
	ctx := context.Background()

	c, err := svc.Add(ctx, forum.Comment{NodeID: "bai-1", Author: "Lan", Content: "x"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, c.ID); !errors.Is(err, forum.ErrCommentNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrCommentNotFound", err)
	}

	got, err := svc.List(ctx, "bai-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List() after delete = %+v, want empty", got)
	}
}

func TestService_SubscribeReceivesInsertAndDelete(t *testing.T) {
	svc := forum.NewService(forum.NewMemoryStore(), forum.NewMemoryBus())
	ctx := context.Background()

	events, cancel := svc.Subscribe(ctx, "bai-1")
	defer cancel()

	c, err := svc.Add(ctx, forum.Comment{NodeID: "bai-1", Author: "Lan", Content: "x"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != forum.EventInsert || ev.ID != c.ID || ev.Comment == nil {
			t.Errorf("event = %+v, want insert of %s", ev, c.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no insert event delivered")
	}

	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != forum.EventDelete || ev.ID != c.ID {
			t.Errorf("event = %+v, want delete of %s", ev, c.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no delete event delivered")
	}
}

func TestMemoryBus_SubscriptionScopedToNode(t *testing.T) {
	bus := forum.NewMemoryBus()
	ctx := context.Background()

	events, cancel := bus.Subscribe(ctx, "bai-1")
	defer cancel()

	if err := bus.Publish(ctx, forum.Event{Type: forum.EventInsert, NodeID: "bai-2", ID: "c1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case ev := <-events:
		t.Fatalf("received event %+v for another lesson", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBus_CancelClosesChannel(t *testing.T) {
	bus := forum.NewMemoryBus()
	events, cancel := bus.Subscribe(context.Background(), "bai-1")

	cancel()
	cancel() // double cancel is safe

	if _, open := <-events; open {
		t.Error("channel should be closed after cancel")
	}
}
