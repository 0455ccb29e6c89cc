package quiz_test

import (
	"errors"
	"testing"

	"github.com/lop-hoc/lophoc-server/internal/quiz"
)

func newSession(t *testing.T) (*quiz.SessionStore, *quiz.Session) {
	t.Helper()
	store := quiz.NewSessionStore()
	sess := store.Create("b1", []quiz.Question{q("q1", 1), q("q2", 0)})
	return store, sess
}

func TestSession_StartsAnsweringWithUnsetAnswers(t *testing.T) {
	_, sess := newSession(t)

	if sess.State != quiz.StateAnswering {
		t.Errorf("state = %s, want %s", sess.State, quiz.StateAnswering)
	}
	if len(sess.Answers) != 2 {
		t.Fatalf("answer vector length = %d, want 2", len(sess.Answers))
	}
	for i, a := range sess.Answers {
		if a != quiz.Unanswered {
			t.Errorf("answers[%d] = %d, want unset", i, a)
		}
	}
}

func TestSession_SubmitBlockedWhileUnanswered(t *testing.T) {
	store, sess := newSession(t)

	if _, err := store.Submit(sess.ID); !errors.Is(err, quiz.ErrUnansweredQuestions) {
		t.Fatalf("Submit() error = %v, want ErrUnansweredQuestions", err)
	}

	if _, err := store.Answer(sess.ID, 0, 1); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if _, err := store.Submit(sess.ID); !errors.Is(err, quiz.ErrUnansweredQuestions) {
		t.Fatalf("Submit() with one question left error = %v, want ErrUnansweredQuestions", err)
	}
}

func TestSession_SubmitScoresAndLocks(t *testing.T) {
	store, sess := newSession(t)

	store.Answer(sess.ID, 0, 1) // right
	store.Answer(sess.ID, 1, 2) // wrong

	got, err := store.Submit(sess.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if got.State != quiz.StateSubmitted {
		t.Errorf("state = %s, want %s", got.State, quiz.StateSubmitted)
	}
	if got.Score != 1 {
		t.Errorf("score = %d, want 1", got.Score)
	}
	if got.Passed {
		t.Error("1/2 should not pass the 80%% bar")
	}

	// Submitted is terminal.
	if _, err := store.Answer(sess.ID, 1, 0); !errors.Is(err, quiz.ErrAlreadySubmitted) {
		t.Errorf("Answer() after submit error = %v, want ErrAlreadySubmitted", err)
	}
	if _, err := store.Submit(sess.ID); !errors.Is(err, quiz.ErrAlreadySubmitted) {
		t.Errorf("Submit() twice error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSession_AnswerValidation(t *testing.T) {
	store, sess := newSession(t)

	if _, err := store.Answer(sess.ID, 5, 0); err == nil {
		t.Error("Answer() should reject an out-of-range question index")
	}
	if _, err := store.Answer(sess.ID, 0, 9); err == nil {
		t.Error("Answer() should reject an out-of-range choice")
	}
	if _, err := store.Answer("nope", 0, 0); err == nil {
		t.Error("Answer() should reject an unknown session")
	}
}

func TestSession_NewSessionResetsAnswers(t *testing.T) {
	store, sess := newSession(t)
	store.Answer(sess.ID, 0, 1)
	store.Answer(sess.ID, 1, 0)
	store.Submit(sess.ID)

	fresh := store.Create("b1", []quiz.Question{q("q1", 1), q("q2", 0), q("q3", 3)})
	if fresh.ID == sess.ID {
		t.Error("new session reused the old id")
	}
	if fresh.State != quiz.StateAnswering {
		t.Errorf("state = %s, want %s", fresh.State, quiz.StateAnswering)
	}
	if len(fresh.Answers) != 3 {
		t.Fatalf("answer vector length = %d, want 3 (sized to the new subset)", len(fresh.Answers))
	}
	for i, a := range fresh.Answers {
		if a != quiz.Unanswered {
			t.Errorf("answers[%d] = %d, want unset", i, a)
		}
	}
}

func TestSession_Delete(t *testing.T) {
	store, sess := newSession(t)
	store.Delete(sess.ID)
	if _, err := store.Get(sess.ID); err == nil {
		t.Error("Get() should fail after Delete()")
	}
}
