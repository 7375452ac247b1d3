package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/domain"
	logpkg "github.com/kailas-cloud/esodm/internal/logger"
	healthuc "github.com/kailas-cloud/esodm/internal/usecase/health"
	"github.com/kailas-cloud/esodm/internal/version"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeUnauthorized     = "unauthorized"
	CodeValidation       = "validation_failed"
	CodeInvalidQuery     = "invalid_query"
	CodeIndexNotFound    = "index_not_found"
	CodeIndexExists      = "index_already_exists"
	CodeDocumentNotFound = "document_not_found"
	CodeVersionConflict  = "version_conflict"
	CodeInternal         = "internal_error"
)

const defaultMaxBodyBytes = 10 << 20

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes esodm operations over HTTP.
type Server struct {
	indices       IndexService
	documents     DocumentService
	bulk          BulkService
	search        SearchService
	health        HealthService
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	indices IndexService,
	documents DocumentService,
	bulk BulkService,
	search SearchService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		indices:      indices,
		documents:    documents,
		bulk:         bulk,
		search:       search,
		health:       health,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, CodeIndexNotFound, false),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound, false),
		sentinelHandler(domain.ErrIndexExists, http.StatusConflict, CodeIndexExists, false),
		sentinelHandler(domain.ErrVersionConflict, http.StatusConflict, CodeVersionConflict, false),
		sentinelHandler(domain.ErrInvalidIndexName, http.StatusBadRequest, CodeValidation, true),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidation, true),
		sentinelHandler(domain.ErrMissingID, http.StatusBadRequest, CodeValidation, true),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery, true),
	}
	return s
}

// WithMaxBodyBytes limits request bodies; non-positive values keep the default.
func (s *Server) WithMaxBodyBytes(n int) *Server {
	if n > 0 {
		s.maxBodyBytes = int64(n)
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1/indices/{index}", func(r chi.Router) {
		r.Put("/", s.CreateIndex)
		r.Head("/", s.IndexExists)
		r.Get("/", s.IndexExists)
		r.Delete("/", s.DeleteIndex)
		r.Post("/_refresh", s.RefreshIndex)

		r.Post("/documents", s.CreateDocument)
		r.Post("/documents/_bulk", s.BulkIndex)
		r.Put("/documents/{id}", s.PutDocument)
		r.Get("/documents/{id}", s.GetDocument)
		r.Patch("/documents/{id}", s.PatchDocument)
		r.Delete("/documents/{id}", s.DeleteDocument)

		r.Post("/_search", s.Search)
		r.Post("/_count", s.Count)
		r.Post("/_update_by_query", s.UpdateByQuery)
		r.Post("/_delete_by_query", s.DeleteByQuery)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// degraded (кэш недоступен) всё ещё обслуживает запросы
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":  string(report.Status),
		"checks":  checks,
		"version": version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody reads a JSON body into v. Empty bodies leave v untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// readBody returns the raw request body.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "Request body too large")
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Validation errors carry caller-supplied detail and are returned verbatim;
// the rest expose only the sentinel text.
func sentinelHandler(sentinel error, status int, code string, detailed bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if detailed {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}
