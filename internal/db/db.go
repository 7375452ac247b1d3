package db

import (
	"context"
	"time"
)

// Store is the main search-engine facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	IndexManager
	DocumentStore
	BulkStore
	Searcher
	ByQueryExecutor
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, name string, body []byte) error
	DeleteIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Refresh(ctx context.Context, name string) error
}

// DocumentStore provides single-document operations.
type DocumentStore interface {
	IndexDocument(ctx context.Context, req *IndexRequest) (*WriteResult, error)
	GetDocument(ctx context.Context, index, id string) (*GetResult, error)
	UpdateDocument(ctx context.Context, req *UpdateRequest) (*WriteResult, error)
	DeleteDocument(ctx context.Context, index, id string, refresh Refresh) (*WriteResult, error)
}

// BulkStore executes one _bulk request.
type BulkStore interface {
	Bulk(ctx context.Context, req *BulkRequest) (*BulkResult, error)
}

// Searcher runs search and count requests and returns raw engine responses.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
	Count(ctx context.Context, index string, body []byte) (int64, error)
}

// ByQueryExecutor runs update- and delete-by-query and returns raw responses.
type ByQueryExecutor interface {
	UpdateByQuery(ctx context.Context, index string, body []byte, opts ByQueryOptions) ([]byte, error)
	DeleteByQuery(ctx context.Context, index string, body []byte, opts ByQueryOptions) ([]byte, error)
}

// KVStore provides simple key-value operations (cache backend).
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Close()
}
