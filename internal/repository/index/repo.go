package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/db"
	"github.com/kailas-cloud/esodm/internal/domain"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
)

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, name string, body []byte) error
	DeleteIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, name string) error
}

// Repo implements usecase/index.Repository.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create creates the index with settings and mappings.
func (r *Repo) Create(ctx context.Context, name string, def mapping.Definition) error {
	body, err := def.Body()
	if err != nil {
		return fmt.Errorf("build index body: %w", err)
	}
	if err := r.store.CreateIndex(ctx, name, body); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return domain.ErrIndexExists
		}
		if errors.Is(err, db.ErrBadRequest) {
			return fmt.Errorf("create index %s: %w: %w", name, domain.ErrInvalidSchema, err)
		}
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// Delete removes the index, reporting false when it did not exist.
func (r *Repo) Delete(ctx context.Context, name string) (bool, error) {
	if err := r.store.DeleteIndex(ctx, name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("delete index %s: %w", name, err)
	}
	return true, nil
}

// Exists reports whether the index exists.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", name, err)
	}
	return ok, nil
}

// Refresh makes pending writes searchable.
func (r *Repo) Refresh(ctx context.Context, name string) error {
	if err := r.store.Refresh(ctx, name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return domain.ErrIndexNotFound
		}
		return fmt.Errorf("refresh index %s: %w", name, err)
	}
	return nil
}
