package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	defaultMaxRetries = 3
	backoffBase       = 100 * time.Millisecond
	backoffMax        = 5 * time.Second
)

// DefaultRetryOnStatus are the statuses retried when Config.RetryOnStatus is empty.
var DefaultRetryOnStatus = []int{http.StatusTooManyRequests, http.StatusBadGateway,
	http.StatusServiceUnavailable, http.StatusGatewayTimeout}

// ObserveFunc receives the outcome of every engine call (status 0 on transport error).
type ObserveFunc func(op string, status int, d time.Duration)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addrs               []string
	Username            string
	Password            string
	APIKey              string
	MaxRetries          int
	RetryOnStatus       []int
	CompressRequestBody bool
	Transport           http.RoundTripper
	Logger              *zap.Logger
	Observe             ObserveFunc
}

// Store implements db.Store over the Elasticsearch REST API.
type Store struct {
	client  *elasticsearch.Client
	logger  *zap.Logger
	observe ObserveFunc
}

// NewStore creates an Elasticsearch store.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryOn := cfg.RetryOnStatus
	if len(retryOn) == 0 {
		retryOn = DefaultRetryOnStatus
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:           cfg.Addrs,
		Username:            cfg.Username,
		Password:            cfg.Password,
		APIKey:              cfg.APIKey,
		MaxRetries:          maxRetries,
		RetryOnStatus:       retryOn,
		RetryBackoff:        Backoff,
		CompressRequestBody: cfg.CompressRequestBody,
		Transport:           cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return newStore(client, cfg.Logger, cfg.Observe), nil
}

// NewStoreForTest builds a store over a fake transport with retries disabled.
func NewStoreForTest(rt http.RoundTripper) (*Store, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{"http://es.test:9200"},
		Transport:    rt,
		DisableRetry: true,
	})
	if err != nil {
		return nil, err
	}
	return newStore(client, nil, nil), nil
}

func newStore(client *elasticsearch.Client, logger *zap.Logger, observe ObserveFunc) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, logger: logger, observe: observe}
}

// Backoff is an exponential retry delay: 100ms, 200ms, 400ms ... capped at 5s.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt-1)))
	if d > backoffMax || d <= 0 {
		return backoffMax
	}
	return d
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.perform(db.OpPing, func() (*esapi.Response, error) {
		return s.client.Ping(s.client.Ping.WithContext(ctx))
	})
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping: status %d", res.StatusCode)
	}
	return nil
}

// Close is a no-op: the HTTP transport has no persistent session to release.
func (s *Store) Close() {}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// perform runs one API call, records its latency and status.
func (s *Store) perform(op string, call func() (*esapi.Response, error)) (*esapi.Response, error) {
	start := time.Now()
	res, err := call()
	d := time.Since(start)

	status := 0
	if res != nil {
		status = res.StatusCode
	}
	if s.observe != nil {
		s.observe(op, status, d)
	}
	if err != nil {
		s.logger.Debug("elasticsearch call failed", zap.String("op", op), zap.Duration("duration", d), zap.Error(err))
		return nil, &db.Error{Op: op, Err: err}
	}
	s.logger.Debug("elasticsearch call", zap.String("op", op), zap.Int("status", status), zap.Duration("duration", d))
	return res, nil
}

type errorBody struct {
	Error json.RawMessage `json:"error"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// decodeError turns a non-2xx response into a *db.Error wrapping the matching sentinel.
func decodeError(op string, res *esapi.Response) error {
	data, _ := io.ReadAll(res.Body)

	e := &db.Error{Op: op, Status: res.StatusCode}
	var body errorBody
	if json.Unmarshal(data, &body) == nil && len(body.Error) > 0 {
		var cause errorCause
		if json.Unmarshal(body.Error, &cause) == nil {
			e.Type, e.Reason = cause.Type, cause.Reason
		} else {
			var msg string
			_ = json.Unmarshal(body.Error, &msg)
			e.Reason = msg
		}
	}

	switch e.Type {
	case "index_not_found_exception":
		e.Err = db.ErrIndexNotFound
	case "resource_already_exists_exception":
		e.Err = db.ErrIndexExists
	case "document_missing_exception":
		e.Err = db.ErrDocumentNotFound
	case "version_conflict_engine_exception":
		e.Err = db.ErrVersionConflict
	}
	if e.Err != nil {
		return e
	}

	switch {
	case res.StatusCode == http.StatusNotFound:
		// GET/DELETE of a missing document: no error object, found=false or result=not_found.
		e.Err = db.ErrDocumentNotFound
	case res.StatusCode == http.StatusConflict:
		e.Err = db.ErrVersionConflict
	case res.StatusCode == http.StatusBadRequest:
		e.Err = db.ErrBadRequest
	default:
		e.Err = errors.New(http.StatusText(res.StatusCode))
	}
	return e
}

// decodeJSON reads a successful response into v.
func decodeJSON(op string, res *esapi.Response, v any) error {
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &db.Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func readBody(op string, res *esapi.Response) ([]byte, error) {
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	return data, nil
}
