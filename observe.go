package esodm

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/domain"
)

// Operation outcomes used as the status label.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusConflict = "conflict"
	statusInvalid  = "invalid"
	statusPartial  = "partial"
	statusError    = "error"
)

type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bulkFailed *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esodm",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Client operations by index, operation and outcome.",
		}, []string{"index", "operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "esodm",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		bulkFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "esodm",
			Subsystem: "client",
			Name:      "bulk_failed_items_total",
			Help:      "Items rejected inside otherwise successful bulk writes.",
		}, []string{"index"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.bulkFailed); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c or swaps in the collector already registered
// under the same name, so several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("esodm: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("esodm: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// statusOf maps an operation error onto the status label.
func statusOf(err error) string {
	var bulkErr *domain.BulkError
	switch {
	case err == nil:
		return statusOK
	case errors.As(err, &bulkErr):
		return statusPartial
	case errors.Is(err, domain.ErrIndexNotFound), errors.Is(err, domain.ErrDocumentNotFound):
		return statusNotFound
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, domain.ErrIndexExists):
		return statusConflict
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidSchema),
		errors.Is(err, domain.ErrInvalidIndexName), errors.Is(err, domain.ErrMissingID):
		return statusInvalid
	default:
		return statusError
	}
}

// observer logs and counts client operations. A nil observer is a no-op.
type observer struct {
	logger  *zap.Logger
	metrics *clientMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one operation on index ("" for cluster-level calls).
func (o *observer) observe(index, op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(index, op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		var bulkErr *domain.BulkError
		if errors.As(err, &bulkErr) {
			o.metrics.bulkFailed.WithLabelValues(index).Add(float64(len(bulkErr.Failures)))
		}
	}

	if o.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("index", index),
		zap.String("op", op),
		zap.String("status", status),
		zap.Duration("duration", dur),
	}
	switch status {
	case statusOK:
		o.logger.Debug("esodm operation", fields...)
	case statusNotFound:
		// промах по id или индексу: штатная ситуация для вызывающего
		o.logger.Debug("esodm operation", append(fields, zap.Error(err))...)
	default:
		o.logger.Warn("esodm operation failed", append(fields, zap.Error(err))...)
	}
}
