package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esodm/internal/domain"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/logger"
)

// Service handles index lifecycle.
type Service struct {
	repo  Repository
	cache Invalidator
}

// New creates an index service. cache can be nil.
func New(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache}
}

// Create creates an index. The mapping, when present, is validated first.
func (s *Service) Create(ctx context.Context, name string, def mapping.Definition) error {
	if err := validateName(name); err != nil {
		return err
	}
	if def.Mapping != nil {
		if err := def.Mapping.Validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidSchema, err)
		}
	}
	if def.Settings.Shards < 0 || (def.Settings.Replicas != nil && *def.Settings.Replicas < 0) {
		return fmt.Errorf("shards and replicas must not be negative: %w", domain.ErrInvalidSchema)
	}
	if err := s.repo.Create(ctx, name, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Ensure creates the index unless it already exists. Returns true if created.
func (s *Service) Ensure(ctx context.Context, name string, def mapping.Definition) (bool, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.Create(ctx, name, def); err != nil {
		// Lost a race with another creator.
		if errors.Is(err, domain.ErrIndexExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Exists reports whether the index exists.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	return ok, nil
}

// Delete drops the index. Deleting a missing index returns false without error.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	if err := validateName(name); err != nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete index: %w", err)
	}
	if deleted {
		s.invalidate(ctx, name)
	}
	return deleted, nil
}

// Refresh makes recent writes searchable.
func (s *Service) Refresh(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := s.repo.Refresh(ctx, name); err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, name); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate search cache", zap.String("index", name), zap.Error(err))
	}
}

func validateName(name string) error {
	if err := mapping.ValidateIndexName(name); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidIndexName, err)
	}
	return nil
}
