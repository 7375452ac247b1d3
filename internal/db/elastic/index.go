package elastic

import (
	"bytes"
	"context"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/esodm/internal/db"
)

// CreateIndex creates an index with the given settings/mappings body.
func (s *Store) CreateIndex(ctx context.Context, name string, body []byte) error {
	create := s.client.Indices.Create
	opts := []func(*esapi.IndicesCreateRequest){create.WithContext(ctx)}
	if len(body) > 0 {
		opts = append(opts, create.WithBody(bytes.NewReader(body)))
	}

	res, err := s.perform(db.OpCreateIndex, func() (*esapi.Response, error) {
		return create(name, opts...)
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return decodeError(db.OpCreateIndex, res)
	}
	return nil
}

// DeleteIndex deletes an index. A missing index yields db.ErrIndexNotFound.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	del := s.client.Indices.Delete
	res, err := s.perform(db.OpDeleteIndex, func() (*esapi.Response, error) {
		return del([]string{name}, del.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return decodeError(db.OpDeleteIndex, res)
	}
	return nil
}

// IndexExists reports whether the index exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	exists := s.client.Indices.Exists
	res, err := s.perform(db.OpIndexExists, func() (*esapi.Response, error) {
		return exists([]string{name}, exists.WithContext(ctx))
	})
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, decodeError(db.OpIndexExists, res)
	}
}

// Refresh makes recent writes to the index visible to search.
func (s *Store) Refresh(ctx context.Context, name string) error {
	refresh := s.client.Indices.Refresh
	res, err := s.perform(db.OpRefresh, func() (*esapi.Response, error) {
		return refresh(refresh.WithIndex(name), refresh.WithContext(ctx))
	})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return decodeError(db.OpRefresh, res)
	}
	return nil
}
