// Package server exposes the HTTP API: the course tree, quiz banks and
// sessions, the per-lesson forum, uploads, and the visitor counter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lop-hoc/lophoc-server/internal/blob"
	"github.com/lop-hoc/lophoc-server/internal/content"
	"github.com/lop-hoc/lophoc-server/internal/forum"
	"github.com/lop-hoc/lophoc-server/internal/platform/config"
	"github.com/lop-hoc/lophoc-server/internal/quiz"
	"github.com/lop-hoc/lophoc-server/internal/quizgen"
)

// VisitorCounter is the subset of the cache the visit endpoints need.
type VisitorCounter interface {
	IncrementVisitors(ctx context.Context) (int64, error)
	Visitors(ctx context.Context) (int64, error)
}

// ReadyCheck is a named dependency probe for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the HTTP layer delegates to. Generator and
// Visits may be nil; the matching endpoints then report unavailability.
type Deps struct {
	Content   *content.Service
	Banks     content.Store
	Sessions  *quiz.SessionStore
	Forum     *forum.Service
	Generator *quizgen.Generator
	Uploads   blob.Store
	UploadDir string
	Visits    VisitorCounter
	Ready     []ReadyCheck
}

// Server handles HTTP requests.
type Server struct {
	cfg  *config.Config
	deps Deps
}

// New creates a Server around its dependencies.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{cfg: cfg, deps: deps}
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/appdata", s.handleGetAppData)
	mux.HandleFunc("PUT /api/appdata", s.requireAdmin(s.handlePutAppData))
	mux.HandleFunc("GET /api/tree", s.handleGetTree)
	mux.HandleFunc("GET /api/tree/search", s.handleSearchTree)

	mux.HandleFunc("POST /api/nodes", s.requireAdmin(s.handleAddNode))
	mux.HandleFunc("PUT /api/nodes/{id}", s.requireAdmin(s.handleUpdateNode))
	mux.HandleFunc("DELETE /api/nodes/{id}", s.requireAdmin(s.handleDeleteNode))
	mux.HandleFunc("POST /api/nodes/{id}/reorder", s.requireAdmin(s.handleReorderNode))

	mux.HandleFunc("GET /api/lessons/{id}/quiz", s.handleGetQuiz)
	mux.HandleFunc("PUT /api/lessons/{id}/quiz", s.requireAdmin(s.handlePutQuiz))
	mux.HandleFunc("DELETE /api/lessons/{id}/quiz", s.requireAdmin(s.handleDeleteQuiz))
	mux.HandleFunc("POST /api/lessons/{id}/quiz/generate", s.requireAdmin(s.handleGenerateQuiz))
	mux.HandleFunc("POST /api/lessons/{id}/quiz/merge", s.requireAdmin(s.handleMergeQuiz))
	mux.HandleFunc("GET /api/lessons/{id}/quiz/export", s.requireAdmin(s.handleExportQuiz))

	mux.HandleFunc("POST /api/quiz/sessions", s.handleCreateSession)
	mux.HandleFunc("PUT /api/quiz/sessions/{id}/answers", s.handleAnswerSession)
	mux.HandleFunc("POST /api/quiz/sessions/{id}/submit", s.handleSubmitSession)

	mux.HandleFunc("GET /api/nodes/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /api/nodes/{id}/comments", s.handleAddComment)
	mux.HandleFunc("DELETE /api/comments/{id}", s.requireAdmin(s.handleDeleteComment))
	mux.HandleFunc("GET /ws/nodes/{id}/comments", s.handleCommentsFeed)

	mux.HandleFunc("POST /api/uploads", s.handleUpload)
	if s.deps.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.deps.UploadDir))))
	}

	mux.HandleFunc("POST /api/visits", s.handleRecordVisit)
	mux.HandleFunc("GET /api/visits", s.handleGetVisits)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, rc := range s.deps.Ready {
		if err := rc.Check(r.Context()); err != nil {
			slog.Warn("readiness check failed", "dependency", rc.Name, "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"failed": rc.Name,
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}

// respondServiceError maps domain errors to the API's status codes:
// validation 422, missing things 404, a failed AI draft 502 retryable,
// anything else (store writes included) 502.
func respondServiceError(w http.ResponseWriter, err error) {
	var genErr *quizgen.GenerationError
	switch {
	case errors.Is(err, content.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, content.ErrNodeNotFound),
		errors.Is(err, quiz.ErrSessionNotFound),
		errors.Is(err, forum.ErrCommentNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, quiz.ErrUnansweredQuestions),
		errors.Is(err, quiz.ErrAlreadySubmitted):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, quiz.ErrOutOfRange):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &genErr):
		respondJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), Retryable: true})
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusBadGateway, "saving failed, please retry")
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
