package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const docPattern = "/api/v1/indices/{index}/documents/{id}"

func newDocumentRouter(status int) chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Route("/api/v1/indices/{index}", func(r chi.Router) {
		r.Get("/documents/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})
		r.Put("/documents/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newDocumentRouter(http.StatusOK)
	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, docPattern, "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{
		"/api/v1/indices/es-test/documents/1",
		"/api/v1/indices/es-test/documents/2",
		"/api/v1/indices/products/documents/sku1",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rr.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("expected 3 requests under %s, got %f", docPattern, got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
		want   string
	}{
		{"created", http.MethodPut, http.StatusCreated, "201"},
		{"document not found", http.MethodGet, http.StatusNotFound, "404"},
		{"version conflict", http.MethodGet, http.StatusConflict, "409"},
		{"engine down", http.MethodGet, http.StatusServiceUnavailable, "503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newDocumentRouter(tt.status)
			counter := httpRequestsTotal.WithLabelValues(tt.method, docPattern, tt.want)
			before := testutil.ToFloat64(counter)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, "/api/v1/indices/es-test/documents/7", http.NoBody))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("expected one %s request labeled %s, got %f", tt.method, tt.want, got)
			}
		})
	}
}

func TestMiddleware_InFlight(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	var during float64
	r.Post("/api/v1/indices/{index}/documents/_bulk", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/indices/es-test/documents/_bulk", http.NoBody))

	if during < 1 {
		t.Errorf("expected at least one request in flight while serving, got %f", during)
	}
	if after := testutil.ToFloat64(httpRequestsInFlight); after != 0 {
		t.Errorf("expected no requests in flight afterwards, got %f", after)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/", "/"},
		{"/health", "/health"},
		{"/api/v1/indices/{index}/", "/api/v1/indices/{index}"},
		{"/api/v1/indices/{index}/_search", "/api/v1/indices/{index}/_search"},
	}

	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestMetricsEndpoint_ExposesHTTPMetrics(t *testing.T) {
	r := newDocumentRouter(http.StatusOK)
	r.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/v1/indices/es-test/documents/1", http.NoBody))

	rr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"esodm_http_requests_total", "esodm_http_request_duration_seconds", "esodm_http_requests_in_flight"} {
		if !strings.Contains(body, name) {
			t.Errorf("expected %s in /metrics output", name)
		}
	}
}
