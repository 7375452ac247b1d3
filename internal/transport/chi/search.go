package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Search handles POST /api/v1/indices/{index}/_search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var dto SearchRequest
	if !s.decodeBody(w, r, &dto) {
		return
	}

	req, err := searchRequestFromDTO(dto)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	hits, err := s.search.Search(r.Context(), chi.URLParam(r, "index"), req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromHits(hits))
}
