// Package forum provides the per-lesson discussion threads: an append-only
// comment log with admin delete, plus a live event feed per lesson.
package forum

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Comment is one forum message. Append-only from the client's perspective
// except admin delete-by-id.
type Comment struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"nodeId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrCommentNotFound reports a delete of an unknown comment id.
var ErrCommentNotFound = errors.New("comment not found")

// Store persists comments.
type Store interface {
	List(ctx context.Context, nodeID string) ([]Comment, error)
	Insert(ctx context.Context, c Comment) error
	// Delete removes a comment and returns the node it belonged to.
	Delete(ctx context.Context, id string) (nodeID string, err error)
}

// MemoryStore is an in-memory Store for tests and development.
type MemoryStore struct {
	comments map[string]Comment
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory comment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]Comment)}
}

func (s *MemoryStore) List(_ context.Context, nodeID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Comment
	for _, c := range s.comments {
		if c.NodeID == nodeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, c Comment) error {
	s.mu.Lock()
	s.comments[c.ID] = c
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return "", ErrCommentNotFound
	}
	delete(s.comments, id)
	return c.NodeID, nil
}

// NewID returns a fresh comment id.
func NewID() string {
	b := make([]byte, 12)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
