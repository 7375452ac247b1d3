package esodm

import (
	"github.com/kailas-cloud/esodm/internal/db"
	domdoc "github.com/kailas-cloud/esodm/internal/domain/document"
	"github.com/kailas-cloud/esodm/internal/domain/mapping"
	"github.com/kailas-cloud/esodm/internal/domain/query"
	"github.com/kailas-cloud/esodm/internal/domain/search/aggregation"
	"github.com/kailas-cloud/esodm/internal/domain/search/highlight"
	"github.com/kailas-cloud/esodm/internal/domain/search/request"
	"github.com/kailas-cloud/esodm/internal/domain/update"
)

// Query DSL.
type (
	Query           = query.Query
	MatchAllQuery   = query.MatchAllQuery
	MatchQuery      = query.MatchQuery
	TermQuery       = query.TermQuery
	TermsQuery      = query.TermsQuery
	RangeQuery      = query.RangeQuery
	IDsQuery        = query.IDsQuery
	ExistsQuery     = query.ExistsQuery
	PrefixQuery     = query.PrefixQuery
	WildcardQuery   = query.WildcardQuery
	MultiMatchQuery = query.MultiMatchQuery
	RawQuery        = query.RawQuery
	BoolQuery       = query.BoolQuery
	SearchRequest   = request.Request
	Sort            = request.Sort
	Order           = request.Order
	Highlight       = highlight.Highlight
	HighlightField  = highlight.Field
	Aggregation     = aggregation.Aggregation
	Aggregations    = aggregation.Results
	Metric          = aggregation.Metric
	Bucket          = aggregation.Bucket
)

// Sort orders.
const (
	Asc  = request.Asc
	Desc = request.Desc
)

// Query constructors.
var (
	MatchAll = query.MatchAll
	Match    = query.Match
	Term     = query.Term
	Range    = query.Range
	IDs      = query.IDs
	Exists   = query.Exists
	Prefix   = query.Prefix
	Wildcard = query.Wildcard
	Raw      = query.Raw
	Bool     = query.Bool
)

// MultiMatch runs text against several fields.
func MultiMatch(text string, fields ...string) MultiMatchQuery {
	return query.MultiMatch(text, fields...)
}

// QueryString renders q as compact JSON, e.g. for logging a built query.
func QueryString(q Query) string { return query.String(q) }

// Terms matches documents whose field equals any of values.
func Terms[V any](field string, values ...V) TermsQuery {
	return query.Terms(field, values...)
}

// NewSearchRequest creates a search request for q (match_all when nil).
func NewSearchRequest(q Query) *SearchRequest { return request.New(q) }

// NewHighlight highlights the given fields.
func NewHighlight(fields ...string) *Highlight { return highlight.New(fields...) }

// Aggregation constructors.
var (
	Max         = aggregation.Max
	Min         = aggregation.Min
	Avg         = aggregation.Avg
	Sum         = aggregation.Sum
	ValueCount  = aggregation.ValueCount
	Cardinality = aggregation.Cardinality
	TermsAgg    = aggregation.Terms
)

// Updates.
type (
	UpdateByID      = update.ByID
	UpdateByQuery   = update.ByQuery
	UpdateResponse  = update.Response
	ByQueryResponse = update.ByQueryResponse
	Script          = update.Script
)

// NewScript creates an inline painless script.
func NewScript(source string) *Script { return update.NewScript(source) }

// Conflict handling for by-query operations.
const (
	ConflictsAbort   = update.ConflictsAbort
	ConflictsProceed = update.ConflictsProceed
)

// Index definitions.
type (
	Settings = mapping.Settings
	Mapping  = mapping.Mapping
	Property = mapping.Property
)

// NewSettings sets shard and replica counts explicitly.
func NewSettings(shards, replicas int) Settings { return mapping.NewSettings(shards, replicas) }

// ParseMapping reads a raw mapping document ({"properties":{...}}).
func ParseMapping(data []byte) (Mapping, error) { return mapping.Parse(data) }

// IndexedObjectInfo describes a stored document version.
type IndexedObjectInfo = domdoc.Info

// Refresh controls when writes become visible to search.
type Refresh = db.Refresh

// Refresh policies.
const (
	RefreshFalse   = db.RefreshFalse
	RefreshTrue    = db.RefreshTrue
	RefreshWaitFor = db.RefreshWaitFor
)
