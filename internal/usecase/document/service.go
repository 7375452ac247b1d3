package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/domain"
	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/update"
	"github.com/kailas-cloud/esodm/internal/logger"
)

// DeleteByQueryOptions tunes delete-by-query.
type DeleteByQueryOptions struct {
	Conflicts string
	MaxDocs   int
}

// Service handles single-document CRUD and by-query operations.
// Every write invalidates the index's cached search responses.
type Service struct {
	repo  Repository
	cache Invalidator
}

// New creates a document service. cache can be nil.
func New(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// Save indexes a document. With an empty id the engine assigns one and
// Info.ID carries it.
func (s *Service) Save(ctx context.Context, index, id string, source []byte) (domdoc.Info, error) {
	if err := validateIndex(index); err != nil {
		return domdoc.Info{}, err
	}
	if err := validateSource(source); err != nil {
		return domdoc.Info{}, err
	}

	info, err := s.repo.Save(ctx, index, id, source)
	if err != nil {
		return domdoc.Info{}, fmt.Errorf("save document: %w", err)
	}
	s.invalidate(ctx, index)
	return info, nil
}

// Get returns a document source by id.
func (s *Service) Get(ctx context.Context, index, id string) (json.RawMessage, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.ErrMissingID
	}
	src, err := s.repo.Get(ctx, index, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return src, nil
}

// Update applies a partial document or a script to one document.
func (s *Service) Update(ctx context.Context, index string, u update.ByID) (*update.Response, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, domain.ErrMissingID
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	res, err := s.repo.Update(ctx, index, u)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	s.invalidate(ctx, index)
	return res, nil
}

// Delete removes a document and returns its id.
func (s *Service) Delete(ctx context.Context, index, id string) (string, error) {
	if err := validateIndex(index); err != nil {
		return "", err
	}
	if id == "" {
		return "", domain.ErrMissingID
	}

	deleted, err := s.repo.Delete(ctx, index, id)
	if err != nil {
		return "", fmt.Errorf("delete document: %w", err)
	}
	s.invalidate(ctx, index)
	return deleted, nil
}

// Count returns the number of documents matching q; nil counts everything.
func (s *Service) Count(ctx context.Context, index string, q query.Query) (int64, error) {
	if err := validateIndex(index); err != nil {
		return 0, err
	}
	if q != nil {
		if err := query.Validate(q); err != nil {
			return 0, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
	}
	n, err := s.repo.Count(ctx, index, q)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// UpdateByQuery runs a script over every document matching the query.
func (s *Service) UpdateByQuery(ctx context.Context, index string, u update.ByQuery) (*update.ByQueryResponse, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	res, err := s.repo.UpdateByQuery(ctx, index, u)
	if err != nil {
		return nil, fmt.Errorf("update by query: %w", err)
	}
	s.invalidate(ctx, index)
	return res, nil
}

// DeleteByQuery removes every document matching q. A nil query is rejected so
// an index is never emptied by accident; pass query.MatchAll() explicitly.
func (s *Service) DeleteByQuery(
	ctx context.Context, index string, q query.Query, opts DeleteByQueryOptions,
) (*update.ByQueryResponse, error) {
	if err := validateIndex(index); err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("delete by query requires a query: %w", domain.ErrInvalidQuery)
	}
	if err := query.Validate(q); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	if err := update.ValidateConflicts(opts.Conflicts, opts.MaxDocs); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	res, err := s.repo.DeleteByQuery(ctx, index, q, opts.Conflicts, opts.MaxDocs)
	if err != nil {
		return nil, fmt.Errorf("delete by query: %w", err)
	}
	s.invalidate(ctx, index)
	return res, nil
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

// validateSource requires a JSON object.
func validateSource(source []byte) error {
	trimmed := bytes.TrimSpace(source)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("document source must be a JSON object: %w", domain.ErrInvalidSchema)
	}
	return nil
}
