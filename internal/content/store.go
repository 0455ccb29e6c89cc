package content

import (
	"context"
	"errors"
	"sync"

	"github.com/lop-hoc/lophoc-server/internal/quiz"
)

// ErrNotFound reports an absent document row. For a question bank this is
// the "no quiz authored" state, distinct from a fetch error.
var ErrNotFound = errors.New("document not found")

// Store persists the course aggregate and the per-lesson question banks.
type Store interface {
	LoadAppData(ctx context.Context) (AppData, error)
	SaveAppData(ctx context.Context, data AppData) error
	LoadBank(ctx context.Context, lessonID string) ([]quiz.Question, error)
	SaveBank(ctx context.Context, lessonID string, bank []quiz.Question) error
	DeleteBank(ctx context.Context, lessonID string) error
}

// MemoryStore is an in-memory Store for tests and development.
type MemoryStore struct {
	appData *AppData
	banks   map[int64][]quiz.Question
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{banks: make(map[int64][]quiz.Question)}
}

func (s *MemoryStore) LoadAppData(_ context.Context) (AppData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.appData == nil {
		return AppData{}, ErrNotFound
	}
	return s.appData.clone(), nil
}

func (s *MemoryStore) SaveAppData(_ context.Context, data AppData) error {
	snapshot := data.clone()
	s.mu.Lock()
	s.appData = &snapshot
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadBank(_ context.Context, lessonID string) ([]quiz.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bank, ok := s.banks[BankKey(lessonID)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]quiz.Question, len(bank))
	copy(out, bank)
	return out, nil
}

func (s *MemoryStore) SaveBank(_ context.Context, lessonID string, bank []quiz.Question) error {
	snapshot := make([]quiz.Question, len(bank))
	copy(snapshot, bank)
	s.mu.Lock()
	s.banks[BankKey(lessonID)] = snapshot
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteBank(_ context.Context, lessonID string) error {
	s.mu.Lock()
	delete(s.banks, BankKey(lessonID))
	s.mu.Unlock()
	return nil
}
