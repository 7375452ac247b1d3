// Package result holds decoded search responses.
package result

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/domain/search/aggregation"
)

// Hit is a single matched document.
type Hit struct {
	Index     string
	ID        string
	Score     *float64
	Source    json.RawMessage
	Highlight map[string][]string
	Sort      []any
}

// Hits is a decoded search response.
type Hits struct {
	Took         int64
	Total        int64
	Relation     string
	MaxScore     *float64
	Items        []Hit
	Aggregations aggregation.Results
}

// HasHits reports whether the response contains documents.
func (h *Hits) HasHits() bool { return h != nil && len(h.Items) > 0 }

// HasAggregations reports whether the response contains aggregation results.
func (h *Hits) HasAggregations() bool { return h != nil && len(h.Aggregations) > 0 }

type wireResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total *struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Index     string              `json:"_index"`
			ID        string              `json:"_id"`
			Score     *float64            `json:"_score"`
			Source    json.RawMessage     `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
			Sort      []any               `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// Decode parses a raw search response. aggs are the aggregations that were
// requested; they tell the parser how to read each named result.
func Decode(data []byte, aggs []aggregation.Aggregation) (*Hits, error) {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &Hits{
		Took:     w.Took,
		MaxScore: w.Hits.MaxScore,
		Items:    make([]Hit, len(w.Hits.Hits)),
	}
	if w.Hits.Total != nil {
		out.Total = w.Hits.Total.Value
		out.Relation = w.Hits.Total.Relation
	}
	for i, h := range w.Hits.Hits {
		out.Items[i] = Hit{
			Index:     h.Index,
			ID:        h.ID,
			Score:     h.Score,
			Source:    h.Source,
			Highlight: h.Highlight,
			Sort:      h.Sort,
		}
	}

	res, err := aggregation.Parse(w.Aggregations, aggs)
	if err != nil {
		return nil, err
	}
	out.Aggregations = res
	return out, nil
}
