package esodm

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/esodm/internal/domain/search/result"
)

// SearchHit is one typed search hit.
type SearchHit[T any] struct {
	Index           string
	ID              string
	Score           *float64 // nil when sorting by a field
	Content         T
	HighlightFields map[string][]string
	SortValues      []any
}

// SearchHits is a typed search response.
type SearchHits[T any] struct {
	Took         int64
	Total        int64
	Relation     string // "eq" or "gte"
	MaxScore     *float64
	Hits         []SearchHit[T]
	Aggregations Aggregations
}

// Contents returns the decoded documents in hit order.
func (h *SearchHits[T]) Contents() []T {
	if h == nil {
		return nil
	}
	out := make([]T, len(h.Hits))
	for i := range h.Hits {
		out[i] = h.Hits[i].Content
	}
	return out
}

// HasSearchHits reports whether any hit was returned.
func (h *SearchHits[T]) HasSearchHits() bool { return h != nil && len(h.Hits) > 0 }

// HasAggregations reports whether aggregation results were returned.
func (h *SearchHits[T]) HasAggregations() bool { return h != nil && len(h.Aggregations) > 0 }

// Metric returns a metric aggregation result by name.
func (h *SearchHits[T]) Metric(name string) (Metric, bool) {
	if h == nil {
		return Metric{}, false
	}
	return h.Aggregations.Metric(name)
}

// Execute runs req against the index and decodes hits into T.
func (idx *Index[T]) Execute(ctx context.Context, req *SearchRequest) (_ *SearchHits[T], err error) {
	defer idx.observe("search", time.Now(), &err)

	raw, err := idx.client.searchSvc.Search(ctx, idx.name, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	hits, err := idx.toHits(raw)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

func (idx *Index[T]) toHits(raw *result.Hits) (*SearchHits[T], error) {
	out := &SearchHits[T]{
		Took:         raw.Took,
		Total:        raw.Total,
		Relation:     raw.Relation,
		MaxScore:     raw.MaxScore,
		Hits:         make([]SearchHit[T], len(raw.Items)),
		Aggregations: raw.Aggregations,
	}
	for i, h := range raw.Items {
		hit := SearchHit[T]{
			Index:           h.Index,
			ID:              h.ID,
			Score:           h.Score,
			HighlightFields: h.Highlight,
			SortValues:      h.Sort,
		}
		if len(h.Source) > 0 {
			if err := idx.decode(h.Source, h.ID, &hit.Content); err != nil {
				return nil, err
			}
		}
		out.Hits[i] = hit
	}
	return out, nil
}
