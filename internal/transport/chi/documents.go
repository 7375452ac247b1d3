package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/domain"
	"github.com/kailas-cloud/esodm/internal/domain/update"
	documentuc "github.com/kailas-cloud/esodm/internal/usecase/document"
)

// PutDocument handles PUT .../documents/{id}. The body is the document source.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request) {
	s.saveDocument(w, r, chi.URLParam(r, "id"))
}

// CreateDocument handles POST .../documents; the engine assigns the id.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	s.saveDocument(w, r, "")
}

func (s *Server) saveDocument(w http.ResponseWriter, r *http.Request, id string) {
	source, ok := s.readBody(w, r)
	if !ok {
		return
	}

	info, err := s.documents.Save(r.Context(), chi.URLParam(r, "index"), id, source)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if info.Result == "created" {
		status = http.StatusCreated
	}
	writeJSON(w, status, info)
}

// GetDocument handles GET .../documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	index, id := chi.URLParam(r, "index"), chi.URLParam(r, "id")

	source, err := s.documents.Get(r.Context(), index, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{ID: id, Index: index, Source: source})
}

// PatchDocument handles PATCH .../documents/{id} with a partial doc or a script.
func (s *Server) PatchDocument(w http.ResponseWriter, r *http.Request) {
	var req PatchDocumentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.documents.Update(r.Context(), chi.URLParam(r, "index"), updateFromPatch(chi.URLParam(r, "id"), req))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteDocument handles DELETE .../documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if _, err := s.documents.Delete(r.Context(), chi.URLParam(r, "index"), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkIndex handles POST .../documents/_bulk. Item failures are reported in
// the body; only request-level failures change the status.
func (s *Server) BulkIndex(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidation, "documents must not be empty")
		return
	}

	infos, err := s.bulk.Index(r.Context(), chi.URLParam(r, "index"), bulkItemsFromDTO(req.Documents))
	var bulkErr *domain.BulkError
	switch {
	case errors.As(err, &bulkErr):
		s.requestLogger(r).Warn("bulk items failed", zap.Int("failed", len(bulkErr.Failures)))
		writeJSON(w, http.StatusOK, BulkResponse{Errors: true, Items: infos, Failures: bulkErr.Failures})
	case err != nil:
		s.handleDomainError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, BulkResponse{Items: infos})
	}
}

// Count handles POST .../_count.
func (s *Server) Count(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	q, err := queryFromRaw(req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	n, err := s.documents.Count(r.Context(), chi.URLParam(r, "index"), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// UpdateByQuery handles POST .../_update_by_query.
func (s *Server) UpdateByQuery(w http.ResponseWriter, r *http.Request) {
	var req UpdateByQueryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	q, err := queryFromRaw(req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.documents.UpdateByQuery(r.Context(), chi.URLParam(r, "index"), update.ByQuery{
		Query:     q,
		Script:    scriptFromDTO(req.Script),
		Conflicts: req.Conflicts,
		MaxDocs:   req.MaxDocs,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// DeleteByQuery handles POST .../_delete_by_query. A missing query is rejected
// so an empty body cannot wipe the index.
func (s *Server) DeleteByQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	q, err := queryFromRaw(req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp, err := s.documents.DeleteByQuery(r.Context(), chi.URLParam(r, "index"), q, documentuc.DeleteByQueryOptions{
		Conflicts: req.Conflicts,
		MaxDocs:   req.MaxDocs,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
