package index

import (
	"context"

	"github.com/kailas-cloud/esodm/internal/domain/mapping"
)

// Repository defines the storage contract for indices.
type Repository interface {
	Create(ctx context.Context, name string, def mapping.Definition) error
	Delete(ctx context.Context, name string) (bool, error)
	Exists(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, name string) error
}

// Invalidator drops cached search responses for an index.
type Invalidator interface {
	Invalidate(ctx context.Context, index string) error
}
