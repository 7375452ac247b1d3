package esodm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	documentuc "github.com/kailas-cloud/esodm/internal/usecase/document"
)

// Index is a typed handle over one index. The mapping is inferred from T's
// struct tags at construction time.
type Index[T any] struct {
	name   string
	client *Client
	meta   *schemaMeta
}

// NewIndex creates a handle for the index T declares through IndexName().
func NewIndex[T any](client *Client) (*Index[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index: %w", err)
	}
	if meta.index == "" {
		return nil, fmt.Errorf("new index: %s has no IndexName(); use NewIndexNamed", meta.typ)
	}
	return &Index[T]{name: meta.index, client: client, meta: meta}, nil
}

// NewIndexNamed creates a handle for an explicit index name, overriding IndexName().
func NewIndexNamed[T any](client *Client, name string) (*Index[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %q: %w", name, err)
	}
	return &Index[T]{name: name, client: client, meta: meta}, nil
}

// Name returns the index name.
func (idx *Index[T]) Name() string { return idx.name }

// Mapping returns the mapping inferred from T's tags (nil when untyped).
func (idx *Index[T]) Mapping() *Mapping { return idx.meta.mapping() }

// --- Index management ---

// Create creates the index with the tag-inferred mapping.
func (idx *Index[T]) Create(ctx context.Context, settings Settings) error {
	return idx.CreateWith(ctx, settings, idx.meta.mapping())
}

// CreateWith creates the index with an explicit mapping (nil for dynamic mapping).
func (idx *Index[T]) CreateWith(ctx context.Context, settings Settings, m *Mapping) (err error) {
	defer idx.observe("index.create", time.Now(), &err)

	def := mapping.Definition{Settings: settings, Mapping: m}
	if err = idx.client.indexSvc.Create(ctx, idx.name, def); err != nil {
		return fmt.Errorf("create %q: %w", idx.name, err)
	}
	return nil
}

// Ensure creates the index if it does not exist (idempotent). Returns true if created.
func (idx *Index[T]) Ensure(ctx context.Context, settings Settings) (created bool, err error) {
	defer idx.observe("index.ensure", time.Now(), &err)

	def := mapping.Definition{Settings: settings, Mapping: idx.meta.mapping()}
	created, err = idx.client.indexSvc.Ensure(ctx, idx.name, def)
	if err != nil {
		return false, fmt.Errorf("ensure %q: %w", idx.name, err)
	}
	return created, nil
}

// Exists reports whether the index exists.
func (idx *Index[T]) Exists(ctx context.Context) (bool, error) {
	ok, err := idx.client.indexSvc.Exists(ctx, idx.name)
	if err != nil {
		return false, fmt.Errorf("exists %q: %w", idx.name, err)
	}
	return ok, nil
}

// Delete drops the index. Deleting a missing index returns false without error.
func (idx *Index[T]) Delete(ctx context.Context) (deleted bool, err error) {
	defer idx.observe("index.delete", time.Now(), &err)

	deleted, err = idx.client.indexSvc.Delete(ctx, idx.name)
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", idx.name, err)
	}
	return deleted, nil
}

// Refresh makes recent writes visible to search.
func (idx *Index[T]) Refresh(ctx context.Context) error {
	if err := idx.client.indexSvc.Refresh(ctx, idx.name); err != nil {
		return fmt.Errorf("refresh %q: %w", idx.name, err)
	}
	return nil
}

// --- Documents ---

// Save indexes item. When T has an id field left empty the engine assigns an
// id and the returned copy carries it.
func (idx *Index[T]) Save(ctx context.Context, item T) (_ T, err error) {
	defer idx.observe("document.save", time.Now(), &err)

	info, err := idx.SaveInfo(ctx, item)
	if err != nil {
		return item, err
	}
	if idx.meta.idOf(item) == "" {
		idx.meta.setID(&item, info.ID)
	}
	return item, nil
}

// SaveInfo indexes item and returns the stored version.
func (idx *Index[T]) SaveInfo(ctx context.Context, item T) (IndexedObjectInfo, error) {
	source, err := json.Marshal(item)
	if err != nil {
		return IndexedObjectInfo{}, fmt.Errorf("save: marshal: %w", err)
	}
	info, err := idx.client.docSvc.Save(ctx, idx.name, idx.meta.idOf(item), source)
	if err != nil {
		return IndexedObjectInfo{}, fmt.Errorf("save: %w", err)
	}
	return info, nil
}

// SaveAll bulk-indexes items and returns one IndexedObjectInfo per item, in
// order. Item failures are reported as *BulkError next to the infos.
func (idx *Index[T]) SaveAll(ctx context.Context, items []T) (_ []IndexedObjectInfo, err error) {
	defer idx.observe("document.save_all", time.Now(), &err)

	docs := make([]domdoc.Item, len(items))
	for i, item := range items {
		source, merr := json.Marshal(item)
		if merr != nil {
			return nil, fmt.Errorf("item %d: marshal: %w", i, merr)
		}
		docs[i] = domdoc.Item{ID: idx.meta.idOf(item), Source: source}
	}

	infos, err := idx.client.bulkSvc.Index(ctx, idx.name, docs)
	if err != nil {
		return infos, fmt.Errorf("save all: %w", err)
	}
	return infos, nil
}

// Get loads a document by id.
func (idx *Index[T]) Get(ctx context.Context, id string) (_ T, err error) {
	defer idx.observe("document.get", time.Now(), &err)

	var item T
	source, err := idx.client.docSvc.Get(ctx, idx.name, id)
	if err != nil {
		return item, fmt.Errorf("get: %w", err)
	}
	if err = idx.decode(source, id, &item); err != nil {
		return item, fmt.Errorf("get: %w", err)
	}
	return item, nil
}

// Update applies a partial document or a script to one document.
func (idx *Index[T]) Update(ctx context.Context, u UpdateByID) (_ *UpdateResponse, err error) {
	defer idx.observe("document.update", time.Now(), &err)

	res, err := idx.client.docSvc.Update(ctx, idx.name, u)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	return res, nil
}

// UpdateByQuery runs a script over every document matching the query.
func (idx *Index[T]) UpdateByQuery(ctx context.Context, u UpdateByQuery) (_ *ByQueryResponse, err error) {
	defer idx.observe("document.update_by_query", time.Now(), &err)

	res, err := idx.client.docSvc.UpdateByQuery(ctx, idx.name, u)
	if err != nil {
		return nil, fmt.Errorf("update by query: %w", err)
	}
	return res, nil
}

// DeleteByID removes a document and returns its id.
func (idx *Index[T]) DeleteByID(ctx context.Context, id string) (_ string, err error) {
	defer idx.observe("document.delete", time.Now(), &err)

	deleted, err := idx.client.docSvc.Delete(ctx, idx.name, id)
	if err != nil {
		return "", fmt.Errorf("delete: %w", err)
	}
	return deleted, nil
}

// DeleteItem removes the document behind item, identified by its id field.
func (idx *Index[T]) DeleteItem(ctx context.Context, item T) (string, error) {
	id := idx.meta.idOf(item)
	if id == "" {
		return "", fmt.Errorf("delete: %w", ErrMissingID)
	}
	return idx.DeleteByID(ctx, id)
}

// DeleteAll bulk-deletes documents by id.
func (idx *Index[T]) DeleteAll(ctx context.Context, ids []string) (_ []IndexedObjectInfo, err error) {
	defer idx.observe("document.delete_all", time.Now(), &err)

	infos, err := idx.client.bulkSvc.Delete(ctx, idx.name, ids)
	if err != nil {
		return infos, fmt.Errorf("delete all: %w", err)
	}
	return infos, nil
}

// DeleteByQuery removes every document matching q. A nil query is rejected;
// pass MatchAll() to empty the index.
func (idx *Index[T]) DeleteByQuery(ctx context.Context, q Query) (_ *ByQueryResponse, err error) {
	defer idx.observe("document.delete_by_query", time.Now(), &err)

	res, err := idx.client.docSvc.DeleteByQuery(ctx, idx.name, q, documentuc.DeleteByQueryOptions{})
	if err != nil {
		return nil, fmt.Errorf("delete by query: %w", err)
	}
	return res, nil
}

// Count returns the number of documents matching q; nil counts everything.
func (idx *Index[T]) Count(ctx context.Context, q Query) (int64, error) {
	n, err := idx.client.docSvc.Count(ctx, idx.name, q)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// decode unmarshals a source into item and fills an empty id field from id.
func (idx *Index[T]) decode(source []byte, id string, item *T) error {
	if err := json.Unmarshal(source, item); err != nil {
		return fmt.Errorf("decode %s: %w", id, err)
	}
	if idx.meta.idOf(*item) == "" {
		idx.meta.setID(item, id)
	}
	return nil
}

func (idx *Index[T]) observe(op string, start time.Time, err *error) {
	idx.client.obs.observe(idx.name, op, start, *err)
}
