// Package query is a small builder for the Elasticsearch query DSL.
//
// Every builder renders itself through Source(); nothing here talks to the
// engine. Leaf builders are values, Bool is a pointer so it can be filled in
// step by step.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxClausesPerGroup bounds each bool occurrence group.
const MaxClausesPerGroup = 1024

// Query is any clause of the query DSL.
type Query interface {
	Source() map[string]any
}

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

// MatchAll creates a match_all query.
func MatchAll() MatchAllQuery { return MatchAllQuery{} }

// Source renders the clause.
func (MatchAllQuery) Source() map[string]any {
	return map[string]any{"match_all": map[string]any{}}
}

// MatchQuery is an analyzed full-text match on a single field.
type MatchQuery struct {
	field     string
	value     any
	operator  string
	fuzziness string
}

// Match creates a match query.
func Match(field string, value any) MatchQuery {
	return MatchQuery{field: field, value: value}
}

// Operator sets how analyzed terms combine ("or" by default, or "and").
func (q MatchQuery) Operator(op string) MatchQuery {
	q.operator = op
	return q
}

// Fuzziness sets the allowed edit distance ("AUTO", "1", "2").
func (q MatchQuery) Fuzziness(f string) MatchQuery {
	q.fuzziness = f
	return q
}

// Field returns the target field.
func (q MatchQuery) Field() string { return q.field }

// Source renders the clause.
func (q MatchQuery) Source() map[string]any {
	body := map[string]any{"query": q.value}
	if q.operator != "" {
		body["operator"] = q.operator
	}
	if q.fuzziness != "" {
		body["fuzziness"] = q.fuzziness
	}
	return map[string]any{"match": map[string]any{q.field: body}}
}

// TermQuery is an exact, non-analyzed match.
type TermQuery struct {
	field string
	value any
}

// Term creates a term query.
func Term(field string, value any) TermQuery {
	return TermQuery{field: field, value: value}
}

// Field returns the target field.
func (q TermQuery) Field() string { return q.field }

// Source renders the clause.
func (q TermQuery) Source() map[string]any {
	return map[string]any{"term": map[string]any{q.field: map[string]any{"value": q.value}}}
}

// PrefixQuery matches keyword values starting with a prefix.
type PrefixQuery struct {
	field  string
	prefix string
}

// Prefix creates a prefix query.
func Prefix(field, prefix string) PrefixQuery {
	return PrefixQuery{field: field, prefix: prefix}
}

// Source renders the clause.
func (q PrefixQuery) Source() map[string]any {
	return map[string]any{"prefix": map[string]any{q.field: map[string]any{"value": q.prefix}}}
}

// WildcardQuery matches keyword values against a * / ? pattern.
type WildcardQuery struct {
	field   string
	pattern string
}

// Wildcard creates a wildcard query.
func Wildcard(field, pattern string) WildcardQuery {
	return WildcardQuery{field: field, pattern: pattern}
}

// Source renders the clause.
func (q WildcardQuery) Source() map[string]any {
	return map[string]any{"wildcard": map[string]any{q.field: map[string]any{"value": q.pattern}}}
}

// MultiMatchQuery runs one full-text query over several fields.
type MultiMatchQuery struct {
	text     string
	fields   []string
	kind     string
	operator string
}

// MultiMatch creates a multi_match query ("best_fields" unless Type is set).
func MultiMatch(text string, fields ...string) MultiMatchQuery {
	return MultiMatchQuery{text: text, fields: fields}
}

// Type sets the multi_match type: best_fields, most_fields, cross_fields, phrase, phrase_prefix.
func (q MultiMatchQuery) Type(kind string) MultiMatchQuery {
	q.kind = kind
	return q
}

// Operator sets "and" / "or" between analyzed terms.
func (q MultiMatchQuery) Operator(op string) MultiMatchQuery {
	q.operator = op
	return q
}

// Source renders the clause.
func (q MultiMatchQuery) Source() map[string]any {
	body := map[string]any{"query": q.text, "fields": q.fields}
	if q.kind != "" {
		body["type"] = q.kind
	}
	if q.operator != "" {
		body["operator"] = q.operator
	}
	return map[string]any{"multi_match": body}
}

func (q MultiMatchQuery) validate() error {
	if len(q.fields) == 0 {
		return errors.New("multi_match: at least one field is required")
	}
	for i, f := range q.fields {
		if f == "" {
			return fmt.Errorf("multi_match: fields[%d] is empty", i)
		}
	}
	switch q.kind {
	case "", "best_fields", "most_fields", "cross_fields", "phrase", "phrase_prefix", "bool_prefix":
	default:
		return fmt.Errorf("multi_match: unknown type %q", q.kind)
	}
	switch q.operator {
	case "", "and", "or", "AND", "OR":
	default:
		return fmt.Errorf("multi_match: invalid operator %q", q.operator)
	}
	return nil
}

// TermsQuery matches documents whose field contains any of the values.
// On array fields this is a set intersection test.
type TermsQuery struct {
	field  string
	values []any
}

// Terms creates a terms query.
func Terms[V any](field string, values ...V) TermsQuery {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return TermsQuery{field: field, values: vs}
}

// Field returns the target field.
func (q TermsQuery) Field() string { return q.field }

// Values returns the candidate values.
func (q TermsQuery) Values() []any { return q.values }

// Source renders the clause.
func (q TermsQuery) Source() map[string]any {
	return map[string]any{"terms": map[string]any{q.field: q.values}}
}

// RangeQuery bounds a numeric or date field.
type RangeQuery struct {
	field  string
	gt     any
	gte    any
	lt     any
	lte    any
	format string
}

// Range creates a range query without bounds; add them with Gt/Gte/Lt/Lte.
func Range(field string) RangeQuery { return RangeQuery{field: field} }

// Gt sets the exclusive lower bound.
func (q RangeQuery) Gt(v any) RangeQuery {
	q.gt = v
	return q
}

// Gte sets the inclusive lower bound.
func (q RangeQuery) Gte(v any) RangeQuery {
	q.gte = v
	return q
}

// Lt sets the exclusive upper bound.
func (q RangeQuery) Lt(v any) RangeQuery {
	q.lt = v
	return q
}

// Lte sets the inclusive upper bound.
func (q RangeQuery) Lte(v any) RangeQuery {
	q.lte = v
	return q
}

// Format sets the date format used to parse bounds.
func (q RangeQuery) Format(f string) RangeQuery {
	q.format = f
	return q
}

// Field returns the target field.
func (q RangeQuery) Field() string { return q.field }

// Source renders the clause.
func (q RangeQuery) Source() map[string]any {
	body := make(map[string]any, 5)
	if q.gt != nil {
		body["gt"] = q.gt
	}
	if q.gte != nil {
		body["gte"] = q.gte
	}
	if q.lt != nil {
		body["lt"] = q.lt
	}
	if q.lte != nil {
		body["lte"] = q.lte
	}
	if q.format != "" {
		body["format"] = q.format
	}
	return map[string]any{"range": map[string]any{q.field: body}}
}

func (q RangeQuery) validate() error {
	if q.gt == nil && q.gte == nil && q.lt == nil && q.lte == nil {
		return fmt.Errorf("range on %q: at least one bound is required", q.field)
	}
	if q.gt != nil && q.gte != nil {
		return fmt.Errorf("range on %q: cannot specify both gt and gte", q.field)
	}
	if q.lt != nil && q.lte != nil {
		return fmt.Errorf("range on %q: cannot specify both lt and lte", q.field)
	}
	return nil
}

// IDsQuery matches documents by _id.
type IDsQuery struct {
	ids []string
}

// IDs creates an ids query.
func IDs(ids ...string) IDsQuery { return IDsQuery{ids: ids} }

// Source renders the clause.
func (q IDsQuery) Source() map[string]any {
	return map[string]any{"ids": map[string]any{"values": q.ids}}
}

// ExistsQuery matches documents with a non-null value for field.
type ExistsQuery struct {
	field string
}

// Exists creates an exists query.
func Exists(field string) ExistsQuery { return ExistsQuery{field: field} }

// Source renders the clause.
func (q ExistsQuery) Source() map[string]any {
	return map[string]any{"exists": map[string]any{"field": q.field}}
}

// RawQuery carries a pre-built DSL clause verbatim.
type RawQuery struct {
	source map[string]any
}

// Raw parses a JSON query clause, e.g. {"match":{"address":"Qingdao"}}.
// Numbers are kept as json.Number so long values survive unchanged.
func Raw(data []byte) (RawQuery, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return RawQuery{}, fmt.Errorf("parse raw query: %w", err)
	}
	if dec.More() {
		return RawQuery{}, errors.New("parse raw query: trailing data after clause")
	}
	if len(m) != 1 {
		return RawQuery{}, fmt.Errorf("raw query must have exactly one top-level clause, got %d", len(m))
	}
	return RawQuery{source: m}, nil
}

// Source renders the clause.
func (q RawQuery) Source() map[string]any { return q.source }

// BoolQuery combines clauses with must/filter/should/must_not semantics.
type BoolQuery struct {
	must               []Query
	filter             []Query
	should             []Query
	mustNot            []Query
	minimumShouldMatch string
}

// Bool creates an empty bool query.
func Bool() *BoolQuery { return &BoolQuery{} }

// Must adds scoring clauses that all have to match.
func (b *BoolQuery) Must(qs ...Query) *BoolQuery {
	b.must = append(b.must, qs...)
	return b
}

// Filter adds non-scoring clauses that all have to match.
func (b *BoolQuery) Filter(qs ...Query) *BoolQuery {
	b.filter = append(b.filter, qs...)
	return b
}

// Should adds optional clauses; at least one must match when there is no must/filter.
func (b *BoolQuery) Should(qs ...Query) *BoolQuery {
	b.should = append(b.should, qs...)
	return b
}

// MustNot adds exclusion clauses.
func (b *BoolQuery) MustNot(qs ...Query) *BoolQuery {
	b.mustNot = append(b.mustNot, qs...)
	return b
}

// MinimumShouldMatch sets minimum_should_match ("1", "75%").
func (b *BoolQuery) MinimumShouldMatch(v string) *BoolQuery {
	b.minimumShouldMatch = v
	return b
}

// IsEmpty reports whether the bool query has no clauses.
func (b *BoolQuery) IsEmpty() bool {
	return len(b.must) == 0 && len(b.filter) == 0 && len(b.should) == 0 && len(b.mustNot) == 0
}

// Source renders the clause.
func (b *BoolQuery) Source() map[string]any {
	body := make(map[string]any, 5)
	addGroup(body, "must", b.must)
	addGroup(body, "filter", b.filter)
	addGroup(body, "should", b.should)
	addGroup(body, "must_not", b.mustNot)
	if b.minimumShouldMatch != "" {
		body["minimum_should_match"] = b.minimumShouldMatch
	}
	return map[string]any{"bool": body}
}

func addGroup(body map[string]any, key string, qs []Query) {
	if len(qs) == 0 {
		return
	}
	out := make([]any, len(qs))
	for i, q := range qs {
		out[i] = q.Source()
	}
	body[key] = out
}

// Validate checks required fields and bounds, descending into bool clauses.
func Validate(q Query) error {
	if q == nil {
		return errors.New("query is required")
	}
	switch v := q.(type) {
	case MatchAllQuery, RawQuery:
		return nil
	case MatchQuery:
		return requireField("match", v.field)
	case TermQuery:
		return requireField("term", v.field)
	case TermsQuery:
		if err := requireField("terms", v.field); err != nil {
			return err
		}
		if len(v.values) == 0 {
			return fmt.Errorf("terms on %q: at least one value is required", v.field)
		}
		return nil
	case RangeQuery:
		if err := requireField("range", v.field); err != nil {
			return err
		}
		return v.validate()
	case IDsQuery:
		if len(v.ids) == 0 {
			return errors.New("ids: at least one id is required")
		}
		return nil
	case ExistsQuery:
		return requireField("exists", v.field)
	case PrefixQuery:
		return requireField("prefix", v.field)
	case WildcardQuery:
		if err := requireField("wildcard", v.field); err != nil {
			return err
		}
		if v.pattern == "" {
			return fmt.Errorf("wildcard on %q: pattern is required", v.field)
		}
		return nil
	case MultiMatchQuery:
		return v.validate()
	case *BoolQuery:
		return validateBool(v)
	default:
		return nil
	}
}

func validateBool(b *BoolQuery) error {
	if b == nil {
		return errors.New("bool query is nil")
	}
	groups := []struct {
		name string
		qs   []Query
	}{
		{"must", b.must}, {"filter", b.filter}, {"should", b.should}, {"must_not", b.mustNot},
	}
	for _, g := range groups {
		if len(g.qs) > MaxClausesPerGroup {
			return fmt.Errorf("too many %s clauses (max %d)", g.name, MaxClausesPerGroup)
		}
		for i, q := range g.qs {
			if err := Validate(q); err != nil {
				return fmt.Errorf("bool.%s[%d]: %w", g.name, i, err)
			}
		}
	}
	return nil
}

func requireField(kind, field string) error {
	if field == "" {
		return fmt.Errorf("%s: field is required", kind)
	}
	return nil
}

// String renders q as compact JSON.
func String(q Query) string {
	if q == nil {
		return "null"
	}
	data, err := json.Marshal(q.Source())
	if err != nil {
		return fmt.Sprintf("<invalid query: %v>", err)
	}
	return string(data)
}
