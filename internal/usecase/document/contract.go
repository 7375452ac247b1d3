package document

import (
	"context"
	"encoding/json"

	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/update"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Save(ctx context.Context, index, id string, source []byte) (domdoc.Info, error)
	Get(ctx context.Context, index, id string) (json.RawMessage, error)
	Update(ctx context.Context, index string, u update.ByID) (*update.Response, error)
	Delete(ctx context.Context, index, id string) (string, error)
	Count(ctx context.Context, index string, q query.Query) (int64, error)
	UpdateByQuery(ctx context.Context, index string, u update.ByQuery) (*update.ByQueryResponse, error)
	DeleteByQuery(ctx context.Context, index string, q query.Query, conflicts string, maxDocs int) (
		*update.ByQueryResponse, error,
	)
}

// Invalidator drops cached search responses for an index.
type Invalidator interface {
	Invalidate(ctx context.Context, index string) error
}
