package esodm

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/db"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs         []string
	username      string
	password      string
	apiKey        string
	maxRetries    int
	retryOnStatus []int
	compress      bool
	transport     http.RoundTripper

	refresh db.Refresh

	bulkSize    int
	bulkBytes   int
	bulkWorkers int

	defaultPageSize int
	maxPageSize     int

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	readinessTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithAddresses sets the Elasticsearch node URLs.
func WithAddresses(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
	})
}

// WithBasicAuth authenticates with a username and password.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithAPIKey authenticates with a base64-encoded API key.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = key
	})
}

// WithRetry sets the retry budget and the HTTP statuses that trigger a retry.
// Without statuses 429, 502, 503 and 504 are retried.
func WithRetry(maxRetries int, statuses ...int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = maxRetries
		c.retryOnStatus = statuses
	})
}

// WithCompression gzips request bodies.
func WithCompression() Option {
	return optionFunc(func(c *clientConfig) {
		c.compress = true
	})
}

// WithTransport replaces the HTTP transport used to reach the cluster.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithRefresh sets the refresh policy applied to every write.
func WithRefresh(r Refresh) Option {
	return optionFunc(func(c *clientConfig) {
		c.refresh = r
	})
}

// WithBulk sets bulk batching limits: items and bytes per request and the
// number of requests in flight. Zero keeps a default.
func WithBulk(size, bytes, workers int) Option {
	return optionFunc(func(c *clientConfig) {
		c.bulkSize = size
		c.bulkBytes = bytes
		c.bulkWorkers = workers
	})
}

// WithPageSize sets the default and maximum search page size.
func WithPageSize(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithCache caches search responses in Redis for ttl. Writes through the
// client invalidate the affected index.
func WithCache(addrs []string, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithReadinessTimeout bounds the initial cluster readiness wait.
// Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
