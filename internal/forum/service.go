package forum

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service is the mutation path for comments: persist first, then notify the
// live feed. A failed publish is logged, not returned — readers catch up on
// the next full list.
type Service struct {
	store Store
	bus   Bus
}

// NewService creates the forum service.
func NewService(store Store, bus Bus) *Service {
	return &Service{store: store, bus: bus}
}

// List returns a lesson's comments oldest first.
func (s *Service) List(ctx context.Context, nodeID string) ([]Comment, error) {
	return s.store.List(ctx, nodeID)
}

// Add validates and persists a comment, then broadcasts the insert.
func (s *Service) Add(ctx context.Context, c Comment) (Comment, error) {
	if c.NodeID == "" {
		return Comment{}, fmt.Errorf("nodeId is required")
	}
	if c.Author == "" {
		return Comment{}, fmt.Errorf("author is required")
	}
	if c.Content == "" && c.ImageURL == "" {
		return Comment{}, fmt.Errorf("comment needs text or an image")
	}

	if c.ID == "" {
		c.ID = NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	if err := s.store.Insert(ctx, c); err != nil {
		return Comment{}, err
	}

	if err := s.bus.Publish(ctx, Event{Type: EventInsert, NodeID: c.NodeID, ID: c.ID, Comment: &c}); err != nil {
		slog.Warn("publishing comment insert failed", "comment_id", c.ID, "error", err)
	}
	return c, nil
}

// Delete removes a comment by id (admin action) and broadcasts the delete to
// the thread it belonged to.
func (s *Service) Delete(ctx context.Context, id string) error {
	nodeID, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.bus.Publish(ctx, Event{Type: EventDelete, NodeID: nodeID, ID: id}); err != nil {
		slog.Warn("publishing comment delete failed", "comment_id", id, "error", err)
	}
	return nil
}

// Subscribe opens a live event feed for one lesson's thread.
func (s *Service) Subscribe(ctx context.Context, nodeID string) (<-chan Event, func()) {
	return s.bus.Subscribe(ctx, nodeID)
}
