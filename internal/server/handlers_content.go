package server

import (
	"log/slog"
	"net/http"

	"github.com/lop-hoc/lophoc-server/internal/content"
	"github.com/lop-hoc/lophoc-server/internal/tree"
)

// handleGetAppData serves the whole course aggregate. A missing or
// unreadable row degrades to the built-in seed inside the service.
func (s *Server) handleGetAppData(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.deps.Content.Load(r.Context()))
}

// handlePutAppData replaces the whole aggregate, last write wins.
func (s *Server) handlePutAppData(w http.ResponseWriter, r *http.Request) {
	var data content.AppData
	if err := decodeJSON(r, &data); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.deps.Content.Save(r.Context(), data); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	data := s.deps.Content.Load(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"tree":            tree.Build(data.Nodes),
		"globalResources": data.GlobalResources,
		"homeUrl":         data.HomeURL,
	})
}

func (s *Server) handleSearchTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	data := s.deps.Content.Load(r.Context())
	respondJSON(w, http.StatusOK, tree.Search(data.Nodes, q))
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var draft content.NodeDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	node, err := s.deps.Content.AddNode(r.Context(), draft)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var draft content.NodeDraft
	if err := decodeJSON(r, &draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	node, err := s.deps.Content.UpdateNode(r.Context(), r.PathValue("id"), draft)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, node)
}

// handleDeleteNode removes the subtree and evicts the question banks of
// every removed lesson so orphaned rows don't linger.
func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	removed, err := s.deps.Content.DeleteNode(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ids := make([]string, 0, len(removed))
	for id := range removed {
		ids = append(ids, id)
		if err := s.deps.Banks.DeleteBank(r.Context(), id); err != nil {
			slog.Warn("evicting bank of deleted node failed", "node_id", id, "error", err)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"removed": ids})
}

func (s *Server) handleReorderNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var dir tree.Direction
	switch req.Direction {
	case "up":
		dir = tree.Up
	case "down":
		dir = tree.Down
	default:
		respondError(w, http.StatusUnprocessableEntity, "direction must be up or down")
		return
	}

	if err := s.deps.Content.ReorderNode(r.Context(), r.PathValue("id"), dir); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.deps.Content.Load(r.Context()))
}
