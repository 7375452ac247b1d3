package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/esodm/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	indexFn         func(ctx context.Context, req *db.IndexRequest) (*db.WriteResult, error)
	getFn           func(ctx context.Context, index, id string) (*db.GetResult, error)
	updateFn        func(ctx context.Context, req *db.UpdateRequest) (*db.WriteResult, error)
	deleteFn        func(ctx context.Context, index, id string, refresh db.Refresh) (*db.WriteResult, error)
	bulkFn          func(ctx context.Context, req *db.BulkRequest) (*db.BulkResult, error)
	countFn         func(ctx context.Context, index string, body []byte) (int64, error)
	updateByQueryFn func(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error)
	deleteByQueryFn func(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error)
}

func (m *mockStore) IndexDocument(ctx context.Context, req *db.IndexRequest) (*db.WriteResult, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, req)
	}
	return &db.WriteResult{Index: req.Index, ID: req.ID, Version: 1, Result: "created"}, nil
}

func (m *mockStore) GetDocument(ctx context.Context, index, id string) (*db.GetResult, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return nil, db.ErrDocumentNotFound
}

func (m *mockStore) UpdateDocument(ctx context.Context, req *db.UpdateRequest) (*db.WriteResult, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, req)
	}
	return &db.WriteResult{Index: req.Index, ID: req.ID, Version: 2, Result: "updated"}, nil
}

func (m *mockStore) DeleteDocument(ctx context.Context, index, id string, refresh db.Refresh) (*db.WriteResult, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id, refresh)
	}
	return &db.WriteResult{Index: index, ID: id, Result: "deleted"}, nil
}

func (m *mockStore) Bulk(ctx context.Context, req *db.BulkRequest) (*db.BulkResult, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, req)
	}
	return &db.BulkResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, index string, body []byte) (int64, error) {
	if m.countFn != nil {
		return m.countFn(ctx, index, body)
	}
	return 0, nil
}

func (m *mockStore) UpdateByQuery(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error) {
	if m.updateByQueryFn != nil {
		return m.updateByQueryFn(ctx, index, body, opts)
	}
	return []byte(`{}`), nil
}

func (m *mockStore) DeleteByQuery(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error) {
	if m.deleteByQueryFn != nil {
		return m.deleteByQueryFn(ctx, index, body, opts)
	}
	return []byte(`{}`), nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, db.RefreshWaitFor), ms
}
