package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateIndex handles PUT /api/v1/indices/{index}.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	var req CreateIndexRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.indices.Create(r.Context(), name, definitionFromRequest(req)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"index": name, "acknowledged": true})
}

// IndexExists handles HEAD and GET /api/v1/indices/{index}.
func (s *Server) IndexExists(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	ok, err := s.indices.Exists(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, CodeIndexNotFound, "index not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"index": name, "exists": true})
}

// DeleteIndex handles DELETE /api/v1/indices/{index}.
func (s *Server) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.indices.Delete(r.Context(), chi.URLParam(r, "index"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, CodeIndexNotFound, "index not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshIndex handles POST /api/v1/indices/{index}/_refresh.
func (s *Server) RefreshIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.indices.Refresh(r.Context(), chi.URLParam(r, "index")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}
