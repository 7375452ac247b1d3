package esodm

import (
	"context"

	"github.com/kailas-cloud/esodm/internal/domain/search/request"
)

// SearchBuilder is a fluent builder for typed searches.
type SearchBuilder[T any] struct {
	idx *Index[T]
	req request.Request
}

// Search returns a fluent search builder for this index.
func (idx *Index[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

// Query sets the query (match_all when never called).
func (b *SearchBuilder[T]) Query(q Query) *SearchBuilder[T] {
	b.req.Query = q
	return b
}

// Sort appends a sort on field.
func (b *SearchBuilder[T]) Sort(field string, order Order) *SearchBuilder[T] {
	b.req.OrderBy(field, order)
	return b
}

// Page selects a zero-based page: from = page*size. A zero size uses the
// client's default page size.
func (b *SearchBuilder[T]) Page(page, size int) *SearchBuilder[T] {
	b.req.Page(page, size)
	return b
}

// From sets the hit offset, dropping any page set before.
func (b *SearchBuilder[T]) From(n int) *SearchBuilder[T] {
	b.req.PageNo = nil
	b.req.From = n
	return b
}

// Size sets the number of hits.
func (b *SearchBuilder[T]) Size(n int) *SearchBuilder[T] {
	b.req.Size = n
	return b
}

// Highlight sets the highlight block.
func (b *SearchBuilder[T]) Highlight(h *Highlight) *SearchBuilder[T] {
	b.req.Highlight = h
	return b
}

// Aggregate adds aggregations.
func (b *SearchBuilder[T]) Aggregate(aggs ...Aggregation) *SearchBuilder[T] {
	b.req.Aggregations = append(b.req.Aggregations, aggs...)
	return b
}

// Source limits returned source fields.
func (b *SearchBuilder[T]) Source(fields ...string) *SearchBuilder[T] {
	b.req.SourceIncludes = fields
	return b
}

// TrackTotalHits requests an exact total beyond 10000 hits.
func (b *SearchBuilder[T]) TrackTotalHits() *SearchBuilder[T] {
	b.req.TrackTotalHits = true
	return b
}

// Request returns a copy of the request built so far.
func (b *SearchBuilder[T]) Request() *SearchRequest {
	r := b.req
	return &r
}

// Do executes the search.
func (b *SearchBuilder[T]) Do(ctx context.Context) (*SearchHits[T], error) {
	return b.idx.Execute(ctx, b.Request())
}
