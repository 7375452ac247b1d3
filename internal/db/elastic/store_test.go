package elastic

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/esodm/internal/db"
)

// fakeTransport answers every request with handler and remembers what it saw.
type fakeTransport struct {
	mu       sync.Mutex
	requests []recorded
	handler  func(r *http.Request, body string) (int, string)
}

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

func (f *fakeTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	var body string
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, body})
	f.mu.Unlock()

	status, resp := f.handler(r, body)
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(resp)),
		Request:    r,
	}, nil
}

func (f *fakeTransport) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T, handler func(r *http.Request, body string) (int, string)) (*Store, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{handler: handler}
	s, err := NewStoreForTest(ft)
	if err != nil {
		t.Fatalf("NewStoreForTest: %v", err)
	}
	return s, ft
}

func reply(status int, body string) func(*http.Request, string) (int, string) {
	return func(*http.Request, string) (int, string) { return status, body }
}

// --- client.go ---

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{10, 5 * time.Second},
		{100, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestPing(t *testing.T) {
	s, _ := newTestStore(t, reply(200, `{}`))
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, _ = newTestStore(t, reply(503, `{}`))
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error for 503")
	}
}

func TestObserve(t *testing.T) {
	s, _ := newTestStore(t, reply(200, `{"acknowledged":true}`))
	var gotOp string
	var gotStatus int
	s.observe = func(op string, status int, _ time.Duration) {
		gotOp, gotStatus = op, status
	}
	if err := s.Refresh(context.Background(), "es-test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotOp != db.OpRefresh || gotStatus != 200 {
		t.Errorf("observed op=%q status=%d", gotOp, gotStatus)
	}
}

// --- index.go ---

func TestCreateIndex_Success(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"acknowledged":true,"index":"es-test"}`))
	body := []byte(`{"settings":{"number_of_shards":1}}`)
	if err := s.CreateIndex(context.Background(), "es-test", body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := ft.last()
	if req.Method != http.MethodPut || req.Path != "/es-test" {
		t.Errorf("unexpected request: %s %s", req.Method, req.Path)
	}
	if req.Body != string(body) {
		t.Errorf("unexpected body: %s", req.Body)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	s, _ := newTestStore(t, reply(400, `{"error":{"root_cause":[],"type":"resource_already_exists_exception",`+
		`"reason":"index [es-test/abc] already exists"},"status":400}`))

	err := s.CreateIndex(context.Background(), "es-test", nil)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Status != 400 || dbErr.Op != db.OpCreateIndex {
		t.Errorf("unexpected db.Error: %+v", dbErr)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("message should carry the engine reason: %q", err)
	}
}

func TestDeleteIndex_NotFound(t *testing.T) {
	s, ft := newTestStore(t, reply(404, `{"error":{"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`))
	err := s.DeleteIndex(context.Background(), "x")
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	if ft.last().Method != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", ft.last().Method)
	}
}

func TestIndexExists(t *testing.T) {
	s, _ := newTestStore(t, reply(200, ``))
	ok, err := s.IndexExists(context.Background(), "es-test")
	if err != nil || !ok {
		t.Fatalf("expected exists, got %v, %v", ok, err)
	}

	s, _ = newTestStore(t, reply(404, ``))
	ok, err = s.IndexExists(context.Background(), "es-test")
	if err != nil || ok {
		t.Fatalf("expected missing, got %v, %v", ok, err)
	}

	s, _ = newTestStore(t, reply(500, `{"error":"boom"}`))
	if _, err = s.IndexExists(context.Background(), "es-test"); err == nil {
		t.Fatal("expected error for 500")
	}
}

// --- document.go ---

func TestIndexDocument_WithID(t *testing.T) {
	s, ft := newTestStore(t, reply(201, `{"_index":"es-test","_id":"1","_version":1,"result":"created",`+
		`"_seq_no":0,"_primary_term":1}`))

	res, err := s.IndexDocument(context.Background(), &db.IndexRequest{
		Index: "es-test", ID: "1", Body: []byte(`{"name":"Allen"}`), Refresh: db.RefreshWaitFor,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "1" || res.Result != "created" || res.Version != 1 || res.PrimaryTerm != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	req := ft.last()
	if req.Path != "/es-test/_doc/1" || !strings.Contains(req.Query, "refresh=wait_for") {
		t.Errorf("unexpected request: %s?%s", req.Path, req.Query)
	}
}

func TestIndexDocument_AutoID(t *testing.T) {
	s, ft := newTestStore(t, reply(201, `{"_index":"products","_id":"Xy12","_version":1,"result":"created"}`))

	res, err := s.IndexDocument(context.Background(), &db.IndexRequest{Index: "products", Body: []byte(`{"sku":"sku1"}`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "Xy12" {
		t.Errorf("expected engine id, got %q", res.ID)
	}
	req := ft.last()
	if req.Method != http.MethodPost || req.Path != "/products/_doc" {
		t.Errorf("unexpected request: %s %s", req.Method, req.Path)
	}
}

func TestGetDocument(t *testing.T) {
	s, _ := newTestStore(t, reply(200, `{"_index":"es-test","_id":"1","_version":2,"found":true,"_source":{"name":"Allen"}}`))
	res, err := s.GetDocument(context.Background(), "es-test", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Source) != `{"name":"Allen"}` {
		t.Errorf("unexpected source: %s", res.Source)
	}

	s, _ = newTestStore(t, reply(404, `{"_index":"es-test","_id":"9","found":false}`))
	if _, err := s.GetDocument(context.Background(), "es-test", "9"); !errors.Is(err, db.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	s, _ = newTestStore(t, reply(404, `{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`))
	if _, err := s.GetDocument(context.Background(), "nope", "1"); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestUpdateDocument(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"_index":"es-test","_id":"1","_version":3,"result":"updated"}`))
	res, err := s.UpdateDocument(context.Background(), &db.UpdateRequest{
		Index: "es-test", ID: "1", Body: []byte(`{"doc":{"age":39}}`), RetryOnConflict: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result != "updated" || res.Version != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
	req := ft.last()
	if req.Path != "/es-test/_update/1" || !strings.Contains(req.Query, "retry_on_conflict=3") {
		t.Errorf("unexpected request: %s?%s", req.Path, req.Query)
	}

	s, _ = newTestStore(t, reply(404, `{"error":{"type":"document_missing_exception","reason":"[1]: document missing"},"status":404}`))
	_, err = s.UpdateDocument(context.Background(), &db.UpdateRequest{Index: "es-test", ID: "1", Body: []byte(`{}`)})
	if !errors.Is(err, db.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"_index":"es-test","_id":"3","result":"deleted"}`))
	res, err := s.DeleteDocument(context.Background(), "es-test", "3", db.RefreshTrue)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result != "deleted" || res.ID != "3" {
		t.Errorf("unexpected result: %+v", res)
	}
	if ft.last().Method != http.MethodDelete || ft.last().Path != "/es-test/_doc/3" {
		t.Errorf("unexpected request: %+v", ft.last())
	}

	s, _ = newTestStore(t, reply(404, `{"_index":"es-test","_id":"3","result":"not_found"}`))
	if _, err := s.DeleteDocument(context.Background(), "es-test", "3", ""); !errors.Is(err, db.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestVersionConflict(t *testing.T) {
	s, _ := newTestStore(t, reply(409, `{"error":{"type":"version_conflict_engine_exception","reason":"conflict"},"status":409}`))
	_, err := s.IndexDocument(context.Background(), &db.IndexRequest{Index: "es-test", ID: "1", Body: []byte(`{}`)})
	if !errors.Is(err, db.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

// --- bulk.go ---

func TestEncodeBulk(t *testing.T) {
	body, err := EncodeBulk([]db.BulkItem{
		{Action: db.BulkIndex, ID: "21", Body: []byte(`{"name":"张三"}`)},
		{Action: db.BulkIndex, Body: []byte("{\n  \"sku\": \"sku1\"\n}")},
		{Action: db.BulkDelete, ID: "3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"index":{"_id":"21"}}` + "\n" + `{"name":"张三"}` + "\n" +
		`{"index":{}}` + "\n" + `{"sku":"sku1"}` + "\n" +
		`{"delete":{"_id":"3"}}` + "\n"
	if string(body) != want {
		t.Errorf("got  %q\nwant %q", body, want)
	}

	if _, err := EncodeBulk([]db.BulkItem{{Action: db.BulkIndex, ID: "1"}}); err == nil {
		t.Error("expected error for index item without body")
	}
}

func TestBulk_PartialFailure(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"took":5,"errors":true,"items":[`+
		`{"index":{"_index":"es-test","_id":"21","_version":1,"result":"created","status":201}},`+
		`{"index":{"_index":"es-test","_id":"22","status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse field [age]"}}}`+
		`]}`))

	res, err := s.Bulk(context.Background(), &db.BulkRequest{
		Index: "es-test",
		Items: []db.BulkItem{
			{Action: db.BulkIndex, ID: "21", Body: []byte(`{"age":21}`)},
			{Action: db.BulkIndex, ID: "22", Body: []byte(`{"age":"x"}`)},
		},
		Refresh: db.RefreshTrue,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.HasErrors || len(res.Items) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Items[0].Failed() || res.Items[0].Result != "created" {
		t.Errorf("item 0: %+v", res.Items[0])
	}
	if !res.Items[1].Failed() || !strings.Contains(res.Items[1].Error, "mapper_parsing_exception") {
		t.Errorf("item 1: %+v", res.Items[1])
	}
	req := ft.last()
	if req.Path != "/es-test/_bulk" || !strings.Contains(req.Query, "refresh=true") {
		t.Errorf("unexpected request: %s?%s", req.Path, req.Query)
	}
}

func TestBulk_ItemCountMismatch(t *testing.T) {
	s, _ := newTestStore(t, reply(200, `{"took":1,"errors":false,"items":[]}`))
	_, err := s.Bulk(context.Background(), &db.BulkRequest{
		Index: "es-test",
		Items: []db.BulkItem{{Action: db.BulkDelete, ID: "1"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestBulk_Empty(t *testing.T) {
	s, ft := newTestStore(t, reply(500, ``))
	res, err := s.Bulk(context.Background(), &db.BulkRequest{Index: "es-test"})
	if err != nil || len(res.Items) != 0 {
		t.Fatalf("expected empty result, got %+v, %v", res, err)
	}
	if len(ft.requests) != 0 {
		t.Error("empty bulk must not hit the engine")
	}
}

// --- search.go ---

func TestSearch(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"took":1,"hits":{"total":{"value":0,"relation":"eq"},"hits":[]}}`))
	body := []byte(`{"query":{"match_all":{}}}`)
	raw, err := s.Search(context.Background(), "es-test", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), `"took":1`) {
		t.Errorf("unexpected raw: %s", raw)
	}
	req := ft.last()
	if req.Path != "/es-test/_search" || req.Body != string(body) {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestSearch_BadQuery(t *testing.T) {
	s, _ := newTestStore(t, reply(400, `{"error":{"type":"parsing_exception","reason":"unknown query [mtch]"},"status":400}`))
	_, err := s.Search(context.Background(), "es-test", []byte(`{}`))
	if !errors.Is(err, db.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestCount(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"count":6,"_shards":{"total":1}}`))
	n, err := s.Count(context.Background(), "es-test", []byte(`{"query":{"match_all":{}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6, got %d", n)
	}
	if ft.last().Path != "/es-test/_count" {
		t.Errorf("unexpected path: %s", ft.last().Path)
	}
}

func TestUpdateByQuery(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"took":3,"total":1,"updated":1}`))
	raw, err := s.UpdateByQuery(context.Background(), "es-test", []byte(`{"script":{}}`),
		db.ByQueryOptions{Refresh: true, Conflicts: "proceed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), `"updated":1`) {
		t.Errorf("unexpected raw: %s", raw)
	}
	req := ft.last()
	if req.Path != "/es-test/_update_by_query" {
		t.Errorf("unexpected path: %s", req.Path)
	}
	if !strings.Contains(req.Query, "refresh=true") || !strings.Contains(req.Query, "conflicts=proceed") {
		t.Errorf("unexpected query: %s", req.Query)
	}
}

func TestDeleteByQuery(t *testing.T) {
	s, ft := newTestStore(t, reply(200, `{"took":3,"total":2,"deleted":2}`))
	body := []byte(`{"query":{"term":{"sex":{"value":"male"}}}}`)
	if _, err := s.DeleteByQuery(context.Background(), "es-test", body, db.ByQueryOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := ft.last()
	if req.Path != "/es-test/_delete_by_query" || req.Body != string(body) {
		t.Errorf("unexpected request: %+v", req)
	}
}
