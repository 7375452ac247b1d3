package index

import (
	"context"
	"testing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, name string, body []byte) error
	deleteIndexFn func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	refreshFn     func(ctx context.Context, name string) error
}

func (m *mockStore) CreateIndex(ctx context.Context, name string, body []byte) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, name, body)
	}
	return nil
}

func (m *mockStore) DeleteIndex(ctx context.Context, name string) error {
	if m.deleteIndexFn != nil {
		return m.deleteIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Refresh(ctx context.Context, name string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, name)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
