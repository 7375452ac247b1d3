package elastic

import (
	"bytes"
	"context"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/esodm/internal/db"
)

// Search runs a search request and returns the raw response body.
func (s *Store) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	search := s.client.Search
	res, err := s.perform(db.OpSearch, func() (*esapi.Response, error) {
		return search(
			search.WithContext(ctx),
			search.WithIndex(index),
			search.WithBody(bytes.NewReader(body)),
		)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpSearch, res)
	}
	return readBody(db.OpSearch, res)
}

// Count returns the number of documents matching the query body.
func (s *Store) Count(ctx context.Context, index string, body []byte) (int64, error) {
	count := s.client.Count
	opts := []func(*esapi.CountRequest){count.WithContext(ctx), count.WithIndex(index)}
	if len(body) > 0 {
		opts = append(opts, count.WithBody(bytes.NewReader(body)))
	}

	res, err := s.perform(db.OpCount, func() (*esapi.Response, error) {
		return count(opts...)
	})
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, decodeError(db.OpCount, res)
	}

	var out struct {
		Count int64 `json:"count"`
	}
	if err := decodeJSON(db.OpCount, res, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// UpdateByQuery runs _update_by_query and returns the raw response body.
func (s *Store) UpdateByQuery(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error) {
	ubq := s.client.UpdateByQuery
	o := []func(*esapi.UpdateByQueryRequest){
		ubq.WithContext(ctx),
		ubq.WithBody(bytes.NewReader(body)),
		ubq.WithRefresh(opts.Refresh),
	}
	if opts.Conflicts != "" {
		o = append(o, ubq.WithConflicts(opts.Conflicts))
	}

	res, err := s.perform(db.OpUpdateByQuery, func() (*esapi.Response, error) {
		return ubq([]string{index}, o...)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpUpdateByQuery, res)
	}
	return readBody(db.OpUpdateByQuery, res)
}

// DeleteByQuery runs _delete_by_query and returns the raw response body.
func (s *Store) DeleteByQuery(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error) {
	dbq := s.client.DeleteByQuery
	o := []func(*esapi.DeleteByQueryRequest){
		dbq.WithContext(ctx),
		dbq.WithRefresh(opts.Refresh),
	}
	if opts.Conflicts != "" {
		o = append(o, dbq.WithConflicts(opts.Conflicts))
	}

	res, err := s.perform(db.OpDeleteByQuery, func() (*esapi.Response, error) {
		return dbq([]string{index}, bytes.NewReader(body), o...)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpDeleteByQuery, res)
	}
	return readBody(db.OpDeleteByQuery, res)
}
