package bulk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/esodm/internal/domain"
	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/logger"
)

// Batching defaults.
const (
	DefaultMaxBatchSize  = 500
	DefaultMaxBatchBytes = 5 << 20
	DefaultWorkers       = 4
)

// actionOverhead approximates the NDJSON action line around each item.
const actionOverhead = 48

// Service splits bulk writes into bounded batches and flushes them through a
// bounded worker pool. At most workers batches are in flight at once.
// A failed batch never cancels the others.
type Service struct {
	writer        Writer
	cache         Invalidator
	maxBatchSize  int
	maxBatchBytes int
	workers       int
	items         *prometheus.CounterVec
}

// New creates a bulk service with default limits. cache can be nil.
func New(w Writer, cache Invalidator) *Service {
	return &Service{
		writer:        w,
		cache:         cache,
		maxBatchSize:  DefaultMaxBatchSize,
		maxBatchBytes: DefaultMaxBatchBytes,
		workers:       DefaultWorkers,
	}
}

// WithLimits overrides batching limits; non-positive values keep the current ones.
func (s *Service) WithLimits(maxItems, maxBytes, workers int) *Service {
	if maxItems > 0 {
		s.maxBatchSize = maxItems
	}
	if maxBytes > 0 {
		s.maxBatchBytes = maxBytes
	}
	if workers > 0 {
		s.workers = workers
	}
	return s
}

// WithItemCounter counts written items by outcome ("ok" / "error").
func (s *Service) WithItemCounter(c *prometheus.CounterVec) *Service {
	s.items = c
	return s
}

// span is a half-open range of input positions flushed as one request.
type span struct{ start, end int }

// Index writes items and returns one Info per item, in input order.
// Item-level failures come back as *domain.BulkError next to the infos.
func (s *Service) Index(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Info, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	for i, it := range items {
		if err := validateSource(it.Source); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	batches := s.split(len(items), func(i int) int {
		return len(items[i].Source) + len(items[i].ID) + len(index) + actionOverhead
	})
	idOf := func(pos int) string { return items[pos].ID }
	return s.run(ctx, index, batches, idOf, func(ctx context.Context, b span) ([]domdoc.Outcome, error) {
		return s.writer.BulkIndex(ctx, index, items[b.start:b.end])
	})
}

// Delete removes documents by id with the same batching as Index.
func (s *Service) Delete(ctx context.Context, index string, ids []string) ([]domdoc.Info, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == "" {
			return nil, domain.ErrMissingID
		}
	}

	batches := s.split(len(ids), func(i int) int {
		return len(ids[i]) + len(index) + actionOverhead
	})
	idOf := func(pos int) string { return ids[pos] }
	return s.run(ctx, index, batches, idOf, func(ctx context.Context, b span) ([]domdoc.Outcome, error) {
		return s.writer.BulkDelete(ctx, index, ids[b.start:b.end])
	})
}

// run flushes every batch. A batch whose request fails marks all of its items
// as failed; the other batches still complete. Only when no batch reached the
// engine is the request error returned on its own.
func (s *Service) run(
	ctx context.Context, index string, batches []span, idOf func(pos int) string,
	flush func(context.Context, span) ([]domdoc.Outcome, error),
) ([]domdoc.Info, error) {
	if len(batches) == 0 {
		return []domdoc.Info{}, nil
	}
	total := batches[len(batches)-1].end
	infos := make([]domdoc.Info, total)

	var (
		mu       sync.Mutex
		failures = map[string]string{}
		firstErr error
		flushed  int
	)
	fail := func(pos int, reason string) {
		key := infos[pos].ID
		if key == "" {
			key = "#" + strconv.Itoa(pos)
		}
		failures[key] = reason
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, b := range batches {
		g.Go(func() error {
			out, err := flush(ctx, b)
			if err == nil && len(out) != b.end-b.start {
				err = fmt.Errorf("got %d results", len(out))
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				err = fmt.Errorf("flush items %d..%d: %w", b.start, b.end-1, err)
				if firstErr == nil {
					firstErr = err
				}
				for pos := b.start; pos < b.end; pos++ {
					infos[pos] = domdoc.Info{ID: idOf(pos), Index: index}
					fail(pos, err.Error())
				}
				return nil
			}
			flushed++
			for i, o := range out {
				pos := b.start + i
				infos[pos] = o.Info
				if !o.OK() {
					fail(pos, o.Err.Error())
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	// оборванный запрос мог успеть записать часть документов
	s.invalidate(ctx, index)

	if flushed == 0 {
		return nil, firstErr
	}

	s.count(total, len(failures))
	if len(failures) > 0 {
		return infos, &domain.BulkError{Failures: failures}
	}
	return infos, nil
}

// split cuts n items into batches bounded by item count and estimated bytes.
// An item larger than maxBatchBytes goes out alone.
func (s *Service) split(n int, size func(i int) int) []span {
	var (
		out   []span
		start int
		used  int
	)
	for i := range n {
		sz := size(i)
		if i > start && (i-start >= s.maxBatchSize || used+sz > s.maxBatchBytes) {
			out = append(out, span{start, i})
			start, used = i, 0
		}
		used += sz
	}
	if n > start {
		out = append(out, span{start, n})
	}
	return out
}

func (s *Service) count(total, failed int) {
	if s.items == nil {
		return
	}
	s.items.WithLabelValues("ok").Add(float64(total - failed))
	if failed > 0 {
		s.items.WithLabelValues("error").Add(float64(failed))
	}
}

func (s *Service) invalidate(ctx context.Context, index string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, index); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate search cache", zap.String("index", index), zap.Error(err))
	}
}

func validateIndex(index string) error {
	if err := mapping.ValidateIndexName(index); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidIndexName, err)
	}
	return nil
}

func validateSource(source []byte) error {
	trimmed := bytes.TrimSpace(source)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("document source must be a JSON object: %w", domain.ErrInvalidSchema)
	}
	return nil
}
