package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/esodm/internal/db"
)

// Bulk sends one NDJSON _bulk request and returns per-item results in request order.
func (s *Store) Bulk(ctx context.Context, req *db.BulkRequest) (*db.BulkResult, error) {
	if len(req.Items) == 0 {
		return &db.BulkResult{}, nil
	}
	body, err := EncodeBulk(req.Items)
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: err}
	}

	bulk := s.client.Bulk
	opts := []func(*esapi.BulkRequest){bulk.WithContext(ctx), bulk.WithIndex(req.Index)}
	if req.Refresh != "" {
		opts = append(opts, bulk.WithRefresh(string(req.Refresh)))
	}

	res, err := s.perform(db.OpBulk, func() (*esapi.Response, error) {
		return bulk(bytes.NewReader(body), opts...)
	})
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, decodeError(db.OpBulk, res)
	}

	var wire struct {
		Took   int64                        `json:"took"`
		Errors bool                         `json:"errors"`
		Items  []map[string]json.RawMessage `json:"items"`
	}
	if err := decodeJSON(db.OpBulk, res, &wire); err != nil {
		return nil, err
	}
	if len(wire.Items) != len(req.Items) {
		return nil, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("expected %d items, got %d", len(req.Items), len(wire.Items))}
	}

	out := &db.BulkResult{Took: wire.Took, HasErrors: wire.Errors, Items: make([]db.BulkItemResult, len(wire.Items))}
	for i, item := range wire.Items {
		r, err := decodeBulkItem(item)
		if err != nil {
			return nil, &db.Error{Op: db.OpBulk, Err: err}
		}
		out.Items[i] = r
	}
	return out, nil
}

type bulkItemWire struct {
	db.WriteResult
	Status int         `json:"status"`
	Error  *errorCause `json:"error"`
}

func decodeBulkItem(item map[string]json.RawMessage) (db.BulkItemResult, error) {
	// Each item is {"<action>": {...}} with exactly one key.
	for action, raw := range item {
		var w bulkItemWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return db.BulkItemResult{}, fmt.Errorf("decode %s item: %w", action, err)
		}
		r := db.BulkItemResult{WriteResult: w.WriteResult, Status: w.Status}
		if w.Error != nil {
			r.Error = w.Error.Type + ": " + w.Error.Reason
		}
		return r, nil
	}
	return db.BulkItemResult{}, fmt.Errorf("empty bulk item")
}

// EncodeBulk renders items as an NDJSON _bulk body.
func EncodeBulk(items []db.BulkItem) ([]byte, error) {
	var buf bytes.Buffer
	for i, it := range items {
		meta := map[string]any{}
		if it.ID != "" {
			meta["_id"] = it.ID
		}
		header, err := json.Marshal(map[string]any{string(it.Action): meta})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		buf.Write(header)
		buf.WriteByte('\n')

		if it.Action == db.BulkDelete {
			continue
		}
		if len(it.Body) == 0 {
			return nil, fmt.Errorf("item %d: %s requires a body", i, it.Action)
		}
		if bytes.ContainsRune(it.Body, '\n') {
			var compact bytes.Buffer
			if err := json.Compact(&compact, it.Body); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			buf.Write(compact.Bytes())
		} else {
			buf.Write(it.Body)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
