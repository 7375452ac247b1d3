package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/domain"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
)

// Pagination defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 1000
	// MaxResultWindow is the engine's default index.max_result_window.
	MaxResultWindow = 10000
)

// Service validates search requests and runs them.
type Service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a search service with default pagination limits.
func New(repo Repository) *Service {
	return &Service{repo: repo, defaultPageSize: DefaultPageSize, maxPageSize: MaxPageSize}
}

// WithPagination overrides the page size limits; non-positive values keep the current ones.
func (s *Service) WithPagination(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		s.maxPageSize = maxSize
	}
	if s.defaultPageSize > s.maxPageSize {
		s.defaultPageSize = s.maxPageSize
	}
	return s
}

// Search runs req against index. A zero size gets the default page size.
// The caller's request is not modified.
func (s *Service) Search(ctx context.Context, index string, req *request.Request) (*result.Hits, error) {
	if err := mapping.ValidateIndexName(index); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidIndexName, err)
	}
	if req == nil {
		req = request.New(nil)
	}

	r := *req
	r.WithDefaultSize(s.defaultPageSize)
	if err := r.Validate(s.maxPageSize); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	if r.From+r.Size > MaxResultWindow {
		return nil, fmt.Errorf("%w: from + size must not exceed %d", domain.ErrInvalidQuery, MaxResultWindow)
	}

	hits, err := s.repo.Search(ctx, index, &r)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	return hits, nil
}
