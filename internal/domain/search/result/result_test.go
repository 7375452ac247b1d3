package result

import (
	"testing"

	"github.com/kailas-cloud/esodm/internal/domain/search/aggregation"
)

const highlightResponse = `{
  "took": 3,
  "timed_out": false,
  "hits": {
    "total": {"value": 2, "relation": "eq"},
    "max_score": 1.2,
    "hits": [
      {
        "_index": "es-test", "_id": "1", "_score": 1.2,
        "_source": {"id":"1","name":"Allen","age":20,"sex":"male","address":"Qingdao"},
        "highlight": {"address": ["<p style='color:red'>Qingdao</p>"]}
      },
      {
        "_index": "es-test", "_id": "7", "_score": null,
        "_source": {"id":"7","name":"x","age":30,"sex":"male","address":"Qingdao"},
        "sort": [30]
      }
    ]
  }
}`

func TestDecode_HitsAndHighlight(t *testing.T) {
	h, err := Decode([]byte(highlightResponse), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Total != 2 || h.Relation != "eq" || h.Took != 3 {
		t.Errorf("unexpected totals: %+v", h)
	}
	if !h.HasHits() || len(h.Items) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(h.Items))
	}
	first := h.Items[0]
	if first.ID != "1" || first.Index != "es-test" || first.Score == nil || *first.Score != 1.2 {
		t.Errorf("unexpected first hit: %+v", first)
	}
	if got := first.Highlight["address"]; len(got) != 1 || got[0] != "<p style='color:red'>Qingdao</p>" {
		t.Errorf("unexpected highlight: %v", got)
	}
	if h.Items[1].Score != nil {
		t.Error("expected nil score for sorted hit")
	}
	if len(h.Items[1].Sort) != 1 {
		t.Errorf("expected sort values, got %v", h.Items[1].Sort)
	}
	if h.HasAggregations() {
		t.Error("expected no aggregations")
	}
}

func TestDecode_Aggregations(t *testing.T) {
	body := `{"took":1,"hits":{"total":{"value":0,"relation":"eq"},"max_score":null,"hits":[]},
		"aggregations":{"maxAge":{"value":24.0},"avgAge":{"value":22.5}}}`

	h, err := Decode([]byte(body), []aggregation.Aggregation{
		aggregation.Max("maxAge", "age"),
		aggregation.Avg("avgAge", "age"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.HasHits() {
		t.Error("expected no hits")
	}
	if !h.HasAggregations() {
		t.Fatal("expected aggregations")
	}
	avg, ok := h.Aggregations.Metric("avgAge")
	if !ok || avg.Value == nil || *avg.Value != 22.5 {
		t.Errorf("unexpected avgAge: %+v", avg)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte(`not json`), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNilHits(t *testing.T) {
	var h *Hits
	if h.HasHits() || h.HasAggregations() {
		t.Error("nil hits must report empty")
	}
}
