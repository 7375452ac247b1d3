package chi

import (
	"context"
	"encoding/json"

	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
	"github.com/kailas-cloud/esodm/internal/domain/update"
	documentuc "github.com/kailas-cloud/esodm/internal/usecase/document"
	healthuc "github.com/kailas-cloud/esodm/internal/usecase/health"
)

// IndexService manages index lifecycle.
type IndexService interface {
	Create(ctx context.Context, name string, def mapping.Definition) error
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, name string) error
}

// DocumentService handles single-document and by-query writes.
type DocumentService interface {
	Save(ctx context.Context, index, id string, source []byte) (domdoc.Info, error)
	Get(ctx context.Context, index, id string) (json.RawMessage, error)
	Update(ctx context.Context, index string, u update.ByID) (*update.Response, error)
	Delete(ctx context.Context, index, id string) (string, error)
	Count(ctx context.Context, index string, q query.Query) (int64, error)
	UpdateByQuery(ctx context.Context, index string, u update.ByQuery) (*update.ByQueryResponse, error)
	DeleteByQuery(
		ctx context.Context, index string, q query.Query, opts documentuc.DeleteByQueryOptions,
	) (*update.ByQueryResponse, error)
}

// BulkService indexes documents in batches.
type BulkService interface {
	Index(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Info, error)
}

// SearchService runs search requests.
type SearchService interface {
	Search(ctx context.Context, index string, req *request.Request) (*result.Hits, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
