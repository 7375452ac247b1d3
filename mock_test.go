package esodm

import (
	"context"
	"encoding/json"

	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
	"github.com/kailas-cloud/esodm/internal/domain/update"
	documentuc "github.com/kailas-cloud/esodm/internal/usecase/document"
)

// --- test entities ---

type testUser struct {
	ID      string `json:"id"      es:"keyword,id"`
	Name    string `json:"name"    es:"text"`
	Age     int64  `json:"age"     es:"long"`
	Sex     string `json:"sex"     es:"keyword"`
	Address string `json:"address" es:"text,analyzer=standard"`
}

func (testUser) IndexName() string { return "es-test" }

type testProduct struct {
	SKU      string   `json:"sku"      es:"keyword"`
	Price    float64  `json:"price"    es:"double"`
	Stock    int64    `json:"stock"    es:"long"`
	PlatTags []string `json:"platTags" es:"keyword"`
}

func (*testProduct) IndexName() string { return "products" }

type untypedDoc struct {
	Title string `json:"title"`
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	createFn  func(ctx context.Context, name string, def mapping.Definition) error
	ensureFn  func(ctx context.Context, name string, def mapping.Definition) (bool, error)
	existsFn  func(ctx context.Context, name string) (bool, error)
	deleteFn  func(ctx context.Context, name string) (bool, error)
	refreshFn func(ctx context.Context, name string) error
}

func (m *mockIndexUC) Create(ctx context.Context, name string, def mapping.Definition) error {
	return m.createFn(ctx, name, def)
}

func (m *mockIndexUC) Ensure(ctx context.Context, name string, def mapping.Definition) (bool, error) {
	return m.ensureFn(ctx, name, def)
}

func (m *mockIndexUC) Exists(ctx context.Context, name string) (bool, error) {
	return m.existsFn(ctx, name)
}

func (m *mockIndexUC) Delete(ctx context.Context, name string) (bool, error) {
	return m.deleteFn(ctx, name)
}

func (m *mockIndexUC) Refresh(ctx context.Context, name string) error {
	return m.refreshFn(ctx, name)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	saveFn          func(ctx context.Context, index, id string, source []byte) (domdoc.Info, error)
	getFn           func(ctx context.Context, index, id string) (json.RawMessage, error)
	updateFn        func(ctx context.Context, index string, u update.ByID) (*update.Response, error)
	deleteFn        func(ctx context.Context, index, id string) (string, error)
	countFn         func(ctx context.Context, index string, q query.Query) (int64, error)
	updateByQueryFn func(ctx context.Context, index string, u update.ByQuery) (*update.ByQueryResponse, error)
	deleteByQueryFn func(ctx context.Context, index string, q query.Query) (*update.ByQueryResponse, error)
}

func (m *mockDocumentUC) Save(ctx context.Context, index, id string, source []byte) (domdoc.Info, error) {
	return m.saveFn(ctx, index, id, source)
}

func (m *mockDocumentUC) Get(ctx context.Context, index, id string) (json.RawMessage, error) {
	return m.getFn(ctx, index, id)
}

func (m *mockDocumentUC) Update(ctx context.Context, index string, u update.ByID) (*update.Response, error) {
	return m.updateFn(ctx, index, u)
}

func (m *mockDocumentUC) Delete(ctx context.Context, index, id string) (string, error) {
	return m.deleteFn(ctx, index, id)
}

func (m *mockDocumentUC) Count(ctx context.Context, index string, q query.Query) (int64, error) {
	return m.countFn(ctx, index, q)
}

func (m *mockDocumentUC) UpdateByQuery(
	ctx context.Context, index string, u update.ByQuery,
) (*update.ByQueryResponse, error) {
	return m.updateByQueryFn(ctx, index, u)
}

func (m *mockDocumentUC) DeleteByQuery(
	ctx context.Context, index string, q query.Query, _ documentuc.DeleteByQueryOptions,
) (*update.ByQueryResponse, error) {
	return m.deleteByQueryFn(ctx, index, q)
}

// --- bulkUseCase mock ---

type mockBulkUC struct {
	indexFn  func(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Info, error)
	deleteFn func(ctx context.Context, index string, ids []string) ([]domdoc.Info, error)
}

func (m *mockBulkUC) Index(ctx context.Context, index string, items []domdoc.Item) ([]domdoc.Info, error) {
	return m.indexFn(ctx, index, items)
}

func (m *mockBulkUC) Delete(ctx context.Context, index string, ids []string) ([]domdoc.Info, error) {
	return m.deleteFn(ctx, index, ids)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, index string, req *request.Request) (*result.Hits, error)
}

func (m *mockSearchUC) Search(ctx context.Context, index string, req *request.Request) (*result.Hits, error) {
	return m.searchFn(ctx, index, req)
}
