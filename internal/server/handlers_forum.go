package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/lop-hoc/lophoc-server/internal/forum"
)

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.deps.Forum.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if comments == nil {
		comments = []forum.Comment{}
	}
	respondJSON(w, http.StatusOK, comments)
}

// handleAddComment posts to a lesson's thread. Multipart bodies may carry
// an image; if storing the image fails the comment still goes through
// without it.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	comment := forum.Comment{
		NodeID:  r.PathValue("id"),
		IsAdmin: s.isAdmin(r),
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(s.cfg.Blob.MaxSize + 1<<20); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		comment.Author = r.FormValue("author")
		comment.Content = r.FormValue("content")

		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			url, err := s.deps.Uploads.Put(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
			if err != nil {
				slog.Warn("storing comment image failed, posting without it",
					"node_id", comment.NodeID,
					"error", err,
				)
			} else {
				comment.ImageURL = url
			}
		}
	} else {
		var req struct {
			Author   string `json:"author"`
			Content  string `json:"content"`
			ImageURL string `json:"imageUrl"`
		}
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		comment.Author = req.Author
		comment.Content = req.Content
		comment.ImageURL = req.ImageURL
	}

	created, err := s.deps.Forum.Add(r.Context(), comment)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Forum.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCommentsFeed streams a thread's insert/delete events over a
// websocket. The connection is write-only; client frames are drained and
// dropped.
func (s *Server) handleCommentsFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	events, cancel := s.deps.Forum.Subscribe(ctx, r.PathValue("id"))
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}

// handleUpload stores a standalone image and returns its URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Blob.MaxSize + 1<<20); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	url, err := s.deps.Uploads.Put(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}

// handleRecordVisit bumps the visit counter and returns the new total.
func (s *Server) handleRecordVisit(w http.ResponseWriter, r *http.Request) {
	if s.deps.Visits == nil {
		respondError(w, http.StatusServiceUnavailable, "visit counter unavailable")
		return
	}
	count, err := s.deps.Visits.IncrementVisitors(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"visits": count})
}

func (s *Server) handleGetVisits(w http.ResponseWriter, r *http.Request) {
	if s.deps.Visits == nil {
		respondError(w, http.StatusServiceUnavailable, "visit counter unavailable")
		return
	}
	count, err := s.deps.Visits.Visitors(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"visits": count})
}
