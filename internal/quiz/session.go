package quiz

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// SessionState tracks where a quiz attempt is in its lifecycle.
type SessionState string

const (
	// StateAnswering means the answer vector is still being filled in.
	StateAnswering SessionState = "answering"
	// StateSubmitted is terminal: the attempt is locked and scored.
	StateSubmitted SessionState = "submitted"
)

// Session is one student's attempt at a drawn question subset.
type Session struct {
	ID        string       `json:"id"`
	LessonID  string       `json:"lessonId"`
	State     SessionState `json:"state"`
	Questions []Question   `json:"questions"`
	Answers   []int        `json:"answers"`
	Score     int          `json:"score"`
	Passed    bool         `json:"passed"`
	StartedAt time.Time    `json:"startedAt"`
}

// ErrUnansweredQuestions blocks submission while any answer is unset.
var ErrUnansweredQuestions = fmt.Errorf("all questions must be answered before submitting")

// ErrSessionNotFound is returned for unknown or evicted session ids.
var ErrSessionNotFound = fmt.Errorf("session not found")

// ErrOutOfRange rejects an answer index or choice outside the session.
var ErrOutOfRange = fmt.Errorf("out of range")

// ErrAlreadySubmitted rejects mutations of a terminal session.
var ErrAlreadySubmitted = fmt.Errorf("session already submitted")

// SessionStore keeps in-progress quiz attempts in memory. A new attempt
// (shuffle or reopen) is a new session; submitted sessions stay readable
// until evicted with Delete.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create starts a session over the given question subset with every answer
// unset.
func (s *SessionStore) Create(lessonID string, questions []Question) *Session {
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = Unanswered
	}

	sess := &Session{
		ID:        generateID(),
		LessonID:  lessonID,
		State:     StateAnswering,
		Questions: questions,
		Answers:   answers,
		StartedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a session by id.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Answer records a selection for one question of an in-progress session.
func (s *SessionStore) Answer(id string, questionIndex, choice int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.State == StateSubmitted {
		return nil, ErrAlreadySubmitted
	}
	if questionIndex < 0 || questionIndex >= len(sess.Questions) {
		return nil, fmt.Errorf("%w: question index %d of %d", ErrOutOfRange, questionIndex, len(sess.Questions))
	}
	if choice < 0 || choice >= len(sess.Questions[questionIndex].Options) {
		return nil, fmt.Errorf("%w: choice %d", ErrOutOfRange, choice)
	}
	sess.Answers[questionIndex] = choice
	return sess, nil
}

// Submit locks and scores the session. Submission is blocked while any
// answer is unset; Submitted is terminal.
func (s *SessionStore) Submit(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.State == StateSubmitted {
		return nil, ErrAlreadySubmitted
	}
	for _, a := range sess.Answers {
		if a == Unanswered {
			return nil, ErrUnansweredQuestions
		}
	}

	sess.Score = Score(sess.Questions, sess.Answers)
	sess.Passed = Passed(sess.Score, len(sess.Questions))
	sess.State = StateSubmitted
	return sess, nil
}

// Delete evicts a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
