package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Store, bulk and cache Prometheus metrics.
var (
	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esodm",
			Name:      "store_operation_duration_seconds",
			Help:      "Elasticsearch call duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op", "status"},
	)

	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esodm",
			Name:      "bulk_items_total",
			Help:      "Bulk items written, by outcome",
		},
		[]string{"result"}, // "ok" / "error"
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esodm",
			Name:      "search_cache_total",
			Help:      "Search response cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers store, bulk and cache metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreOperationDuration)
	prometheus.MustRegister(BulkItemsTotal)
	prometheus.MustRegister(SearchCacheTotal)
	storeMetricsRegistered = true
}

// ObserveStore records one engine call. Status 0 (transport failure) is labeled "error".
func ObserveStore(op string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	StoreOperationDuration.WithLabelValues(op, label).Observe(d.Seconds())
}
