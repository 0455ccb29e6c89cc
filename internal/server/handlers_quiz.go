package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lop-hoc/lophoc-server/internal/content"
	"github.com/lop-hoc/lophoc-server/internal/quiz"
	"github.com/lop-hoc/lophoc-server/internal/tree"
)

// loadBank treats an absent row as an empty bank; only real fetch
// failures propagate.
func (s *Server) loadBank(r *http.Request, lessonID string) ([]quiz.Question, error) {
	bank, err := s.deps.Banks.LoadBank(r.Context(), lessonID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return bank, nil
}

// handleGetQuiz draws a random subset for students; an admin token gets
// the full bank in stored order instead.
func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	bank, err := s.loadBank(r, lessonID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.isAdmin(r) {
		respondJSON(w, http.StatusOK, map[string]any{"questions": bank, "total": len(bank)})
		return
	}

	k := s.cfg.Quiz.SampleSize
	if v := r.URL.Query().Get("sample"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			k = n
		}
	}

	drawn := quiz.Sample(bank, k)
	views := make([]questionView, len(drawn))
	for i, q := range drawn {
		views[i] = questionView{Question: q.Question, Options: q.Options}
	}
	respondJSON(w, http.StatusOK, map[string]any{"questions": views, "total": len(bank)})
}

// handlePutQuiz replaces the whole bank for a lesson.
func (s *Server) handlePutQuiz(w http.ResponseWriter, r *http.Request) {
	var bank []quiz.Question
	if err := decodeJSON(r, &bank); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for i, q := range bank {
		if err := q.Validate(); err != nil {
			respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("question %d: %v", i, err))
			return
		}
	}

	if err := s.deps.Banks.SaveBank(r.Context(), r.PathValue("id"), bank); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"total": len(bank)})
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Banks.DeleteBank(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerateQuiz returns an AI draft for review. Nothing is persisted;
// the admin merges explicitly via handleMergeQuiz.
func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		respondError(w, http.StatusServiceUnavailable, "no AI provider configured")
		return
	}

	lessonID := r.PathValue("id")
	node := s.findNode(r, lessonID)
	if node == nil {
		respondError(w, http.StatusNotFound, "lesson not found: "+lessonID)
		return
	}

	draft, err := s.deps.Generator.Generate(r.Context(), node.Title)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

// handleMergeQuiz folds a reviewed draft into the stored bank, skipping
// questions whose text already exists.
func (s *Server) handleMergeQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Draft []quiz.Question `json:"draft"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for i, q := range req.Draft {
		if err := q.Validate(); err != nil {
			respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("question %d: %v", i, err))
			return
		}
	}

	lessonID := r.PathValue("id")
	bank, err := s.loadBank(r, lessonID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	merged := quiz.MergeDraft(bank, req.Draft)
	if err := s.deps.Banks.SaveBank(r.Context(), lessonID, merged); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{
		"total": len(merged),
		"added": len(merged) - len(bank),
	})
}

func (s *Server) handleExportQuiz(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	bank, err := s.loadBank(r, lessonID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	buf, err := quiz.WriteXLSX(bank)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "quiz-"+lessonID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// questionView is a question as shown to a student mid-attempt: no
// correct index, no explanation.
type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type sessionView struct {
	ID        string            `json:"id"`
	LessonID  string            `json:"lessonId"`
	State     quiz.SessionState `json:"state"`
	Questions []questionView    `json:"questions"`
	Answers   []int             `json:"answers"`
	StartedAt time.Time         `json:"startedAt"`
}

func viewOf(sess *quiz.Session) sessionView {
	views := make([]questionView, len(sess.Questions))
	for i, q := range sess.Questions {
		views[i] = questionView{Question: q.Question, Options: q.Options}
	}
	return sessionView{
		ID:        sess.ID,
		LessonID:  sess.LessonID,
		State:     sess.State,
		Questions: views,
		Answers:   sess.Answers,
		StartedAt: sess.StartedAt,
	}
}

// handleCreateSession starts an attempt over a fresh draw from the
// lesson's bank.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LessonID string `json:"lessonId"`
		Sample   int    `json:"sample"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.LessonID == "" {
		respondError(w, http.StatusUnprocessableEntity, "lessonId is required")
		return
	}

	bank, err := s.loadBank(r, req.LessonID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(bank) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "lesson has no quiz")
		return
	}

	k := s.cfg.Quiz.SampleSize
	if req.Sample > 0 {
		k = req.Sample
	}

	sess := s.deps.Sessions.Create(req.LessonID, quiz.Sample(bank, k))
	respondJSON(w, http.StatusCreated, viewOf(sess))
}

// handleAnswerSession records one selection on an open attempt.
func (s *Server) handleAnswerSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionIndex int `json:"questionIndex"`
		Choice        int `json:"choice"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.deps.Sessions.Answer(r.PathValue("id"), req.QuestionIndex, req.Choice)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess))
}

// handleSubmitSession locks and scores the attempt. The full questions,
// correct answers included, only come back here.
func (s *Server) handleSubmitSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Sessions.Submit(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// findNode looks an id up in the current aggregate.
func (s *Server) findNode(r *http.Request, id string) *tree.Node {
	data := s.deps.Content.Load(r.Context())
	for i := range data.Nodes {
		if data.Nodes[i].ID == id {
			return &data.Nodes[i]
		}
	}
	return nil
}
