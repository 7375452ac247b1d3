package chi

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/domain"
	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/aggregation"
	"github.com/kailas-cloud/esodm/internal/domain/search/highlight"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/search/result"
	"github.com/kailas-cloud/esodm/internal/domain/update"
)

// --- Requests ---

// CreateIndexRequest is the body of PUT /api/v1/indices/{index}.
type CreateIndexRequest struct {
	Settings *SettingsDTO     `json:"settings,omitempty"`
	Mappings *mapping.Mapping `json:"mappings,omitempty"`
}

// SettingsDTO carries the managed index settings.
type SettingsDTO struct {
	Shards          int    `json:"number_of_shards,omitempty"`
	Replicas        *int   `json:"number_of_replicas,omitempty"`
	RefreshInterval string `json:"refresh_interval,omitempty"`
}

// ScriptDTO is an inline or stored script.
type ScriptDTO struct {
	Source string         `json:"source,omitempty"`
	ID     string         `json:"id,omitempty"`
	Lang   string         `json:"lang,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// PatchDocumentRequest is the body of PATCH .../documents/{id}.
type PatchDocumentRequest struct {
	Doc             map[string]any `json:"doc,omitempty"`
	Script          *ScriptDTO     `json:"script,omitempty"`
	Upsert          map[string]any `json:"upsert,omitempty"`
	DocAsUpsert     bool           `json:"doc_as_upsert,omitempty"`
	RetryOnConflict int            `json:"retry_on_conflict,omitempty"`
}

// BulkRequest is the body of POST .../documents/_bulk.
type BulkRequest struct {
	Documents []BulkItem `json:"documents"`
}

// BulkItem is one document of a bulk request.
type BulkItem struct {
	ID     string          `json:"id,omitempty"`
	Source json.RawMessage `json:"source"`
}

// SortDTO orders hits by one field.
type SortDTO struct {
	Field string `json:"field"`
	Order string `json:"order,omitempty"`
}

// HighlightDTO configures hit highlighting.
type HighlightDTO struct {
	Fields            []string `json:"fields"`
	PreTags           []string `json:"pre_tags,omitempty"`
	PostTags          []string `json:"post_tags,omitempty"`
	FragmentSize      int      `json:"fragment_size,omitempty"`
	NumberOfFragments int      `json:"number_of_fragments,omitempty"`
}

// AggregationDTO is one named aggregation.
type AggregationDTO struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Field string `json:"field"`
	Size  int    `json:"size,omitempty"`
}

// SearchRequest is the body of POST .../_search. Page is zero-based and,
// when set, overrides From.
type SearchRequest struct {
	Query          json.RawMessage  `json:"query,omitempty"`
	Sort           []SortDTO        `json:"sort,omitempty"`
	From           int              `json:"from,omitempty"`
	Size           int              `json:"size,omitempty"`
	Page           *int             `json:"page,omitempty"`
	Highlight      *HighlightDTO    `json:"highlight,omitempty"`
	Aggregations   []AggregationDTO `json:"aggregations,omitempty"`
	Source         []string         `json:"_source,omitempty"`
	TrackTotalHits bool             `json:"track_total_hits,omitempty"`
}

// QueryRequest is the body of POST .../_count and .../_delete_by_query.
type QueryRequest struct {
	Query     json.RawMessage `json:"query,omitempty"`
	Conflicts string          `json:"conflicts,omitempty"`
	MaxDocs   int             `json:"max_docs,omitempty"`
}

// UpdateByQueryRequest is the body of POST .../_update_by_query.
type UpdateByQueryRequest struct {
	Query     json.RawMessage `json:"query,omitempty"`
	Script    *ScriptDTO      `json:"script"`
	Conflicts string          `json:"conflicts,omitempty"`
	MaxDocs   int             `json:"max_docs,omitempty"`
}

// --- Responses ---

// DocumentResponse is a fetched document.
type DocumentResponse struct {
	ID     string          `json:"id"`
	Index  string          `json:"index"`
	Source json.RawMessage `json:"source"`
}

// BulkResponse lists per-item results. Failures maps id (or "#pos") to the reason.
type BulkResponse struct {
	Errors   bool              `json:"errors"`
	Items    []domdoc.Info     `json:"items"`
	Failures map[string]string `json:"failures,omitempty"`
}

// HitDTO is one matched document.
type HitDTO struct {
	ID        string              `json:"id"`
	Index     string              `json:"index"`
	Score     *float64            `json:"score,omitempty"`
	Source    json.RawMessage     `json:"source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
	Sort      []any               `json:"sort,omitempty"`
}

// BucketDTO is one terms bucket.
type BucketDTO struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}

// AggregationResultDTO is the value of one aggregation.
type AggregationResultDTO struct {
	Type    string      `json:"type"`
	Value   *float64    `json:"value,omitempty"`
	Buckets []BucketDTO `json:"buckets,omitempty"`
}

// SearchResponse is the body returned by POST .../_search.
type SearchResponse struct {
	Took         int64                           `json:"took"`
	Total        int64                           `json:"total"`
	Relation     string                          `json:"relation,omitempty"`
	MaxScore     *float64                        `json:"max_score,omitempty"`
	Hits         []HitDTO                        `json:"hits"`
	Aggregations map[string]AggregationResultDTO `json:"aggregations,omitempty"`
}

// --- Converters ---

func definitionFromRequest(req CreateIndexRequest) mapping.Definition {
	def := mapping.Definition{Mapping: req.Mappings}
	if req.Settings != nil {
		def.Settings = mapping.Settings{
			Shards:          req.Settings.Shards,
			Replicas:        req.Settings.Replicas,
			RefreshInterval: req.Settings.RefreshInterval,
		}
	}
	return def
}

// queryFromRaw parses a DSL clause; an empty or null body means match_all.
func queryFromRaw(raw json.RawMessage) (query.Query, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	q, err := query.Raw(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return q, nil
}

func scriptFromDTO(dto *ScriptDTO) *update.Script {
	if dto == nil {
		return nil
	}
	s := &update.Script{Type: update.Inline, Source: dto.Source, Lang: dto.Lang, Params: dto.Params}
	if dto.ID != "" && dto.Source == "" {
		s.Type = update.Stored
		s.ID = dto.ID
	}
	return s
}

func updateFromPatch(id string, req PatchDocumentRequest) update.ByID {
	return update.ByID{
		ID:              id,
		Doc:             req.Doc,
		Script:          scriptFromDTO(req.Script),
		Upsert:          req.Upsert,
		DocAsUpsert:     req.DocAsUpsert,
		RetryOnConflict: req.RetryOnConflict,
	}
}

func searchRequestFromDTO(dto SearchRequest) (*request.Request, error) {
	q, err := queryFromRaw(dto.Query)
	if err != nil {
		return nil, err
	}
	req := request.New(q)
	req.From, req.Size = dto.From, dto.Size
	if dto.Page != nil {
		req.Page(*dto.Page, dto.Size)
	}
	for _, s := range dto.Sort {
		req.OrderBy(s.Field, request.Order(s.Order))
	}
	if h := dto.Highlight; h != nil {
		hl := highlight.New(h.Fields...)
		hl.PreTags, hl.PostTags = h.PreTags, h.PostTags
		hl.FragmentSize, hl.NumberOfFragments = h.FragmentSize, h.NumberOfFragments
		req.Highlight = hl
	}
	for _, a := range dto.Aggregations {
		agg, err := aggregationFromDTO(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		req.Aggregations = append(req.Aggregations, agg)
	}
	req.SourceIncludes = dto.Source
	req.TrackTotalHits = dto.TrackTotalHits
	return req, nil
}

func aggregationFromDTO(dto AggregationDTO) (aggregation.Aggregation, error) {
	if aggregation.Kind(dto.Type) == aggregation.KindTerms {
		a := aggregation.Terms(dto.Name, dto.Field, dto.Size)
		return a, a.Validate()
	}
	return aggregation.New(dto.Name, aggregation.Kind(dto.Type), dto.Field)
}

func searchResponseFromHits(h *result.Hits) SearchResponse {
	resp := SearchResponse{
		Took:     h.Took,
		Total:    h.Total,
		Relation: h.Relation,
		MaxScore: h.MaxScore,
		Hits:     make([]HitDTO, len(h.Items)),
	}
	for i, it := range h.Items {
		resp.Hits[i] = HitDTO{
			ID:        it.ID,
			Index:     it.Index,
			Score:     it.Score,
			Source:    it.Source,
			Highlight: it.Highlight,
			Sort:      it.Sort,
		}
	}
	if h.HasAggregations() {
		resp.Aggregations = make(map[string]AggregationResultDTO, len(h.Aggregations))
		for name, r := range h.Aggregations {
			dto := AggregationResultDTO{Type: string(r.Kind)}
			if r.Metric != nil {
				dto.Value = r.Metric.Value
			}
			for _, b := range r.Buckets {
				dto.Buckets = append(dto.Buckets, BucketDTO{Key: b.Key, DocCount: b.DocCount})
			}
			resp.Aggregations[name] = dto
		}
	}
	return resp
}

func bulkItemsFromDTO(items []BulkItem) []domdoc.Item {
	out := make([]domdoc.Item, len(items))
	for i, it := range items {
		out[i] = domdoc.Item{ID: it.ID, Source: it.Source}
	}
	return out
}
