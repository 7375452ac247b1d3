package search

import (
	"context"

	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
)

// Repository executes searches against the engine (or its response cache).
type Repository interface {
	Search(ctx context.Context, index string, req *request.Request) (*result.Hits, error)
}
