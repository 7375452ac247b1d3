package request

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/aggregation"
	"github.com/kailas-cloud/esodm/internal/domain/search/highlight"
)

func TestPage_FromIsPageTimesSize(t *testing.T) {
	r := New(query.MatchAll()).Page(2, 2, Sort{Field: "age", Order: Desc})
	if r.From != 4 || r.Size != 2 {
		t.Fatalf("expected from=4 size=2, got from=%d size=%d", r.From, r.Size)
	}

	body, err := r.Body()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"from":4,"query":{"match_all":{}},"size":2,"sort":[{"age":{"order":"desc"}}]}`
	if string(body) != want {
		t.Errorf("got  %s\nwant %s", body, want)
	}
}

func TestWithDefaultSize_ResolvesPage(t *testing.T) {
	r := New(nil).Page(2, 0)
	r.WithDefaultSize(10)
	if r.From != 20 || r.Size != 10 {
		t.Fatalf("expected from=20 size=10, got from=%d size=%d", r.From, r.Size)
	}

	explicit := New(nil).Page(1, 5).WithDefaultSize(10)
	if explicit.From != 5 || explicit.Size != 5 {
		t.Errorf("explicit size must win, got from=%d size=%d", explicit.From, explicit.Size)
	}

	unpaged := &Request{From: 7}
	unpaged.WithDefaultSize(10)
	if unpaged.From != 7 {
		t.Errorf("from must be kept without a page, got %d", unpaged.From)
	}
}

func TestBody_DefaultsToMatchAll(t *testing.T) {
	body, err := New(nil).Body()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"query":{"match_all":{}}}` {
		t.Errorf("got %s", body)
	}
}

func TestBody_Full(t *testing.T) {
	r := New(query.Match("address", "青海"))
	r.Aggregations = []aggregation.Aggregation{aggregation.Max("maxAge", "age")}
	r.Highlight = highlight.New("address")
	r.SourceIncludes = []string{"name"}
	r.TrackTotalHits = true
	r.OrderBy("age", "")

	body, err := r.Body()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"_source":{"includes":["name"]},"aggs":{"maxAge":{"max":{"field":"age"}}},` +
		`"highlight":{"fields":{"address":{}}},"query":{"match":{"address":{"query":"青海"}}},` +
		`"sort":[{"age":{"order":"asc"}}],"track_total_hits":true}`
	if string(body) != want {
		t.Errorf("got  %s\nwant %s", body, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		max     int
		wantErr string
	}{
		{"negative from", &Request{From: -1}, 0, "from"},
		{"negative size", &Request{Size: -1}, 0, "size"},
		{"size over max", &Request{Size: 101}, 100, "exceeds maximum"},
		{"bad query", &Request{Query: query.Range("age")}, 0, "at least one bound"},
		{"sort no field", &Request{Sort: []Sort{{Order: Asc}}}, 0, "field is required"},
		{"sort bad order", &Request{Sort: []Sort{{Field: "age", Order: "up"}}}, 0, "invalid order"},
		{"bad highlight", &Request{Highlight: highlight.New()}, 0, "highlight"},
		{
			"duplicate aggregation",
			&Request{Aggregations: []aggregation.Aggregation{
				aggregation.Max("a", "age"), aggregation.Avg("a", "age"),
			}},
			0, "duplicate aggregation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate(tt.max)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}

	ok := New(query.Range("age").Gte(13).Lte(16)).Page(0, 10)
	if err := ok.Validate(100); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
