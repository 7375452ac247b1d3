package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/db"
	"github.com/kailas-cloud/esodm/internal/domain"
	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/update"
)

// store is the consumer interface for document operations (ISP).
//
//nolint:interfacebloat // document repo covers CRUD, bulk and by-query endpoints
type store interface {
	IndexDocument(ctx context.Context, req *db.IndexRequest) (*db.WriteResult, error)
	GetDocument(ctx context.Context, index, id string) (*db.GetResult, error)
	UpdateDocument(ctx context.Context, req *db.UpdateRequest) (*db.WriteResult, error)
	DeleteDocument(ctx context.Context, index, id string, refresh db.Refresh) (*db.WriteResult, error)
	Bulk(ctx context.Context, req *db.BulkRequest) (*db.BulkResult, error)
	Count(ctx context.Context, index string, body []byte) (int64, error)
	UpdateByQuery(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error)
	DeleteByQuery(ctx context.Context, index string, body []byte, opts db.ByQueryOptions) ([]byte, error)
}

// Repo implements usecase/document.Repository and usecase/bulk.Writer.
type Repo struct {
	store   store
	refresh db.Refresh
}

// New creates a document repository. refresh applies to every write.
func New(s store, refresh db.Refresh) *Repo {
	return &Repo{store: s, refresh: refresh}
}

// Save indexes a document. An empty id lets the engine assign one.
func (r *Repo) Save(ctx context.Context, index, id string, source []byte) (domdoc.Info, error) {
	res, err := r.store.IndexDocument(ctx, &db.IndexRequest{Index: index, ID: id, Body: source, Refresh: r.refresh})
	if err != nil {
		return domdoc.Info{}, translate(fmt.Sprintf("index %s/%s", index, id), err)
	}
	return toInfo(res), nil
}

// Get returns the document source.
func (r *Repo) Get(ctx context.Context, index, id string) (json.RawMessage, error) {
	res, err := r.store.GetDocument(ctx, index, id)
	if err != nil {
		return nil, translate(fmt.Sprintf("get %s/%s", index, id), err)
	}
	return res.Source, nil
}

// Update applies a partial document or script to one document.
func (r *Repo) Update(ctx context.Context, index string, u update.ByID) (*update.Response, error) {
	body, err := u.Body()
	if err != nil {
		return nil, err
	}
	res, err := r.store.UpdateDocument(ctx, &db.UpdateRequest{
		Index:           index,
		ID:              u.ID,
		Body:            body,
		Refresh:         r.refresh,
		RetryOnConflict: u.RetryOnConflict,
	})
	if err != nil {
		return nil, translate(fmt.Sprintf("update %s/%s", index, u.ID), err)
	}
	return &update.Response{
		Index:       res.Index,
		ID:          res.ID,
		Version:     res.Version,
		Result:      res.Result,
		SeqNo:       res.SeqNo,
		PrimaryTerm: res.PrimaryTerm,
	}, nil
}

// Delete removes a document and returns its id.
func (r *Repo) Delete(ctx context.Context, index, id string) (string, error) {
	res, err := r.store.DeleteDocument(ctx, index, id, r.refresh)
	if err != nil {
		return "", translate(fmt.Sprintf("delete %s/%s", index, id), err)
	}
	return res.ID, nil
}

// Count returns the number of documents matching q (all documents when q is nil).
func (r *Repo) Count(ctx context.Context, index string, q query.Query) (int64, error) {
	var body []byte
	if q != nil {
		var err error
		body, err = json.Marshal(map[string]any{"query": q.Source()})
		if err != nil {
			return 0, fmt.Errorf("marshal count body: %w", err)
		}
	}
	n, err := r.store.Count(ctx, index, body)
	if err != nil {
		return 0, translate("count "+index, err)
	}
	return n, nil
}

// UpdateByQuery runs a scripted update over every matching document.
func (r *Repo) UpdateByQuery(ctx context.Context, index string, u update.ByQuery) (*update.ByQueryResponse, error) {
	body, err := u.Body()
	if err != nil {
		return nil, err
	}
	raw, err := r.store.UpdateByQuery(ctx, index, body, r.byQueryOptions(u.Conflicts))
	if err != nil {
		return nil, translate("update by query "+index, err)
	}
	return update.DecodeByQuery(raw)
}

// DeleteByQuery removes every document matching q.
func (r *Repo) DeleteByQuery(
	ctx context.Context, index string, q query.Query, conflicts string, maxDocs int,
) (*update.ByQueryResponse, error) {
	if q == nil {
		q = query.MatchAll()
	}
	payload := map[string]any{"query": q.Source()}
	if maxDocs > 0 {
		payload["max_docs"] = maxDocs
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal delete by query body: %w", err)
	}
	raw, err := r.store.DeleteByQuery(ctx, index, body, r.byQueryOptions(conflicts))
	if err != nil {
		return nil, translate("delete by query "+index, err)
	}
	return update.DecodeByQuery(raw)
}

func (r *Repo) byQueryOptions(conflicts string) db.ByQueryOptions {
	// By-query endpoints accept only a boolean refresh.
	return db.ByQueryOptions{
		Refresh:   r.refresh == db.RefreshTrue || r.refresh == db.RefreshWaitFor,
		Conflicts: conflicts,
	}
}

// BulkIndex writes one batch of documents with a single _bulk call.
// Per-item failures are reported in the outcomes; the error is for the request itself.
func (r *Repo) BulkIndex(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Outcome, error) {
	req := &db.BulkRequest{Index: index, Refresh: r.refresh, Items: make([]db.BulkItem, len(items))}
	for i, it := range items {
		req.Items[i] = db.BulkItem{Action: db.BulkIndex, ID: it.ID, Body: it.Source}
	}
	return r.bulk(ctx, req)
}

// BulkDelete removes one batch of documents with a single _bulk call.
func (r *Repo) BulkDelete(ctx context.Context, index string, ids []string) ([]domdoc.Outcome, error) {
	req := &db.BulkRequest{Index: index, Refresh: r.refresh, Items: make([]db.BulkItem, len(ids))}
	for i, id := range ids {
		req.Items[i] = db.BulkItem{Action: db.BulkDelete, ID: id}
	}
	return r.bulk(ctx, req)
}

func (r *Repo) bulk(ctx context.Context, req *db.BulkRequest) ([]domdoc.Outcome, error) {
	res, err := r.store.Bulk(ctx, req)
	if err != nil {
		return nil, translate("bulk "+req.Index, err)
	}

	out := make([]domdoc.Outcome, len(res.Items))
	for i, item := range res.Items {
		if item.Failed() {
			id := item.ID
			if id == "" {
				id = req.Items[i].ID
			}
			out[i] = domdoc.NewError(req.Index, id, errors.New(item.Error))
			continue
		}
		out[i] = domdoc.NewOK(toInfo(&item.WriteResult))
	}
	return out, nil
}

func toInfo(res *db.WriteResult) domdoc.Info {
	return domdoc.Info{
		ID:          res.ID,
		Index:       res.Index,
		Version:     res.Version,
		SeqNo:       res.SeqNo,
		PrimaryTerm: res.PrimaryTerm,
		Result:      res.Result,
	}
}

// translate maps store errors to domain sentinels, keeping the cause.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrIndexNotFound)
	case errors.Is(err, db.ErrDocumentNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrDocumentNotFound)
	case errors.Is(err, db.ErrVersionConflict):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrVersionConflict, err)
	case errors.Is(err, db.ErrBadRequest):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrInvalidQuery, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
