package elastic

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/esodm/internal/db"
)

// IndexDocument writes a document; the engine assigns an id when req.ID is empty.
func (s *Store) IndexDocument(ctx context.Context, req *db.IndexRequest) (*db.WriteResult, error) {
	index := s.client.Index
	opts := []func(*esapi.IndexRequest){index.WithContext(ctx)}
	if req.ID != "" {
		opts = append(opts, index.WithDocumentID(req.ID))
	}
	if req.Refresh != "" {
		opts = append(opts, index.WithRefresh(string(req.Refresh)))
	}

	res, err := s.perform(db.OpIndex, func() (*esapi.Response, error) {
		return index(req.Index, bytes.NewReader(req.Body), opts...)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpIndex, res)
	}

	var out db.WriteResult
	if err := decodeJSON(db.OpIndex, res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches a document by id.
func (s *Store) GetDocument(ctx context.Context, index, id string) (*db.GetResult, error) {
	get := s.client.Get
	res, err := s.perform(db.OpGet, func() (*esapi.Response, error) {
		return get(index, id, get.WithContext(ctx))
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpGet, res)
	}

	var out db.GetResult
	if err := decodeJSON(db.OpGet, res, &out); err != nil {
		return nil, err
	}
	if !out.Found {
		return nil, &db.Error{Op: db.OpGet, Err: db.ErrDocumentNotFound}
	}
	return &out, nil
}

// UpdateDocument applies a partial doc or script to one document.
func (s *Store) UpdateDocument(ctx context.Context, req *db.UpdateRequest) (*db.WriteResult, error) {
	update := s.client.Update
	opts := []func(*esapi.UpdateRequest){update.WithContext(ctx)}
	if req.Refresh != "" {
		opts = append(opts, update.WithRefresh(string(req.Refresh)))
	}
	if req.RetryOnConflict > 0 {
		opts = append(opts, update.WithRetryOnConflict(req.RetryOnConflict))
	}

	res, err := s.perform(db.OpUpdate, func() (*esapi.Response, error) {
		return update(req.Index, req.ID, bytes.NewReader(req.Body), opts...)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpUpdate, res)
	}

	var out db.WriteResult
	if err := decodeJSON(db.OpUpdate, res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document by id.
func (s *Store) DeleteDocument(ctx context.Context, index, id string, refresh db.Refresh) (*db.WriteResult, error) {
	del := s.client.Delete
	opts := []func(*esapi.DeleteRequest){del.WithContext(ctx)}
	if refresh != "" {
		opts = append(opts, del.WithRefresh(string(refresh)))
	}

	res, err := s.perform(db.OpDelete, func() (*esapi.Response, error) {
		return del(index, id, opts...)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpDelete, res)
	}

	var out db.WriteResult
	if err := decodeJSON(db.OpDelete, res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
