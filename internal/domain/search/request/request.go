// Package request describes a search request and renders its body.
package request

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/aggregation"
	"github.com/kailas-cloud/esodm/internal/domain/search/highlight"
)

// Order is a sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort orders hits by one field.
type Sort struct {
	Field string
	Order Order
}

// Request is a search over one index.
type Request struct {
	Query          query.Query
	Sort           []Sort
	From           int
	Size           int
	Highlight      *highlight.Highlight
	Aggregations   []aggregation.Aggregation
	SourceIncludes []string
	TrackTotalHits bool
	// PageNo, when set, is a zero-based page that overrides From once the
	// page size is known.
	PageNo *int
}

// New creates a request for q (match_all when nil).
func New(q query.Query) *Request {
	return &Request{Query: q}
}

// Page selects a zero-based page of size hits, replacing sorts when given.
// A zero size is resolved later by WithDefaultSize.
func (r *Request) Page(page, size int, sorts ...Sort) *Request {
	r.PageNo = &page
	r.Size = size
	r.From = page * size
	if len(sorts) > 0 {
		r.Sort = sorts
	}
	return r
}

// WithDefaultSize fills an unset size and recomputes From for a paged request.
func (r *Request) WithDefaultSize(size int) *Request {
	if r.Size == 0 {
		r.Size = size
	}
	if r.PageNo != nil {
		r.From = *r.PageNo * r.Size
	}
	return r
}

// OrderBy appends a sort.
func (r *Request) OrderBy(field string, order Order) *Request {
	r.Sort = append(r.Sort, Sort{Field: field, Order: order})
	return r
}

// Validate checks the request; maxSize <= 0 disables the page size limit.
func (r *Request) Validate(maxSize int) error {
	if r.From < 0 {
		return errors.New("from must not be negative")
	}
	if r.PageNo != nil && *r.PageNo < 0 {
		return errors.New("page must not be negative")
	}
	if r.Size < 0 {
		return errors.New("size must not be negative")
	}
	if maxSize > 0 && r.Size > maxSize {
		return fmt.Errorf("size %d exceeds maximum %d", r.Size, maxSize)
	}
	if r.Query != nil {
		if err := query.Validate(r.Query); err != nil {
			return err
		}
	}
	for i, s := range r.Sort {
		if s.Field == "" {
			return fmt.Errorf("sort[%d]: field is required", i)
		}
		switch s.Order {
		case "", Asc, Desc:
		default:
			return fmt.Errorf("sort[%d]: invalid order %q", i, s.Order)
		}
	}
	if r.Highlight != nil {
		if err := r.Highlight.Validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(r.Aggregations))
	for _, a := range r.Aggregations {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := seen[a.Name()]; dup {
			return fmt.Errorf("duplicate aggregation name %q", a.Name())
		}
		seen[a.Name()] = struct{}{}
	}
	return nil
}

// Source renders the request body as a map.
func (r *Request) Source() map[string]any {
	q := r.Query
	if q == nil {
		q = query.MatchAll()
	}
	body := map[string]any{"query": q.Source()}

	if len(r.Sort) > 0 {
		sorts := make([]any, len(r.Sort))
		for i, s := range r.Sort {
			order := s.Order
			if order == "" {
				order = Asc
			}
			sorts[i] = map[string]any{s.Field: map[string]any{"order": string(order)}}
		}
		body["sort"] = sorts
	}
	if r.From > 0 {
		body["from"] = r.From
	}
	if r.Size > 0 {
		body["size"] = r.Size
	}
	if r.Highlight != nil {
		body["highlight"] = r.Highlight.Source()
	}
	if len(r.Aggregations) > 0 {
		aggs := make(map[string]any, len(r.Aggregations))
		for _, a := range r.Aggregations {
			aggs[a.Name()] = a.Source()
		}
		body["aggs"] = aggs
	}
	if len(r.SourceIncludes) > 0 {
		body["_source"] = map[string]any{"includes": r.SourceIncludes}
	}
	if r.TrackTotalHits {
		body["track_total_hits"] = true
	}
	return body
}

// Body renders the request body as JSON.
func (r *Request) Body() ([]byte, error) {
	data, err := json.Marshal(r.Source())
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}
	return data, nil
}
