package bulk

import (
	"context"

	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
)

// Writer flushes one batch with a single bulk request.
type Writer interface {
	BulkIndex(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Outcome, error)
	BulkDelete(ctx context.Context, index string, ids []string) ([]domdoc.Outcome, error)
}

// Invalidator drops cached search responses for an index.
type Invalidator interface {
	Invalidate(ctx context.Context, index string) error
}
