// Package aggregation builds metric and bucket aggregations and parses their results.
package aggregation

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies the aggregation type.
type Kind string

// Supported aggregation kinds.
const (
	KindMax         Kind = "max"
	KindMin         Kind = "min"
	KindAvg         Kind = "avg"
	KindSum         Kind = "sum"
	KindValueCount  Kind = "value_count"
	KindCardinality Kind = "cardinality"
	KindTerms       Kind = "terms"
)

// IsMetric reports whether k produces a single numeric value.
func (k Kind) IsMetric() bool {
	switch k {
	case KindMax, KindMin, KindAvg, KindSum, KindValueCount, KindCardinality:
		return true
	default:
		return false
	}
}

// Aggregation is a named aggregation over one field.
type Aggregation struct {
	name  string
	kind  Kind
	field string
	size  int
}

// Max creates a max aggregation.
func Max(name, field string) Aggregation { return Aggregation{name: name, kind: KindMax, field: field} }

// Min creates a min aggregation.
func Min(name, field string) Aggregation { return Aggregation{name: name, kind: KindMin, field: field} }

// Avg creates an avg aggregation.
func Avg(name, field string) Aggregation { return Aggregation{name: name, kind: KindAvg, field: field} }

// Sum creates a sum aggregation.
func Sum(name, field string) Aggregation { return Aggregation{name: name, kind: KindSum, field: field} }

// ValueCount creates a value_count aggregation.
func ValueCount(name, field string) Aggregation {
	return Aggregation{name: name, kind: KindValueCount, field: field}
}

// Cardinality creates an approximate distinct-count aggregation.
func Cardinality(name, field string) Aggregation {
	return Aggregation{name: name, kind: KindCardinality, field: field}
}

// Terms creates a terms bucket aggregation; size <= 0 keeps the engine default.
func Terms(name, field string, size int) Aggregation {
	return Aggregation{name: name, kind: KindTerms, field: field, size: size}
}

// New creates an aggregation of an arbitrary supported kind.
func New(name string, kind Kind, field string) (Aggregation, error) {
	a := Aggregation{name: name, kind: kind, field: field}
	if err := a.Validate(); err != nil {
		return Aggregation{}, err
	}
	return a, nil
}

// Name returns the aggregation name.
func (a Aggregation) Name() string { return a.name }

// Kind returns the aggregation kind.
func (a Aggregation) Kind() Kind { return a.kind }

// Field returns the aggregated field.
func (a Aggregation) Field() string { return a.field }

// Validate checks the aggregation definition.
func (a Aggregation) Validate() error {
	if a.name == "" {
		return errors.New("aggregation name is required")
	}
	if a.field == "" {
		return fmt.Errorf("aggregation %q: field is required", a.name)
	}
	if !a.kind.IsMetric() && a.kind != KindTerms {
		return fmt.Errorf("aggregation %q: unsupported kind %q", a.name, a.kind)
	}
	return nil
}

// Source renders the aggregation body (without its name).
func (a Aggregation) Source() map[string]any {
	body := map[string]any{"field": a.field}
	if a.kind == KindTerms && a.size > 0 {
		body["size"] = a.size
	}
	return map[string]any{string(a.kind): body}
}

// Metric is the value of a single-value metric aggregation.
// Value is nil when the engine returned null (no matching documents).
type Metric struct {
	Name  string
	Kind  Kind
	Value *float64
}

// Bucket is one terms bucket.
type Bucket struct {
	Key      any
	DocCount int64
}

// Result is the parsed value of one aggregation.
type Result struct {
	Name    string
	Kind    Kind
	Metric  *Metric
	Buckets []Bucket
}

// Results indexes parsed aggregations by name.
type Results map[string]Result

// Metric returns the named metric, if present.
func (r Results) Metric(name string) (Metric, bool) {
	res, ok := r[name]
	if !ok || res.Metric == nil {
		return Metric{}, false
	}
	return *res.Metric, true
}

// Parse decodes the "aggregations" section of a search response using the
// requested definitions to know each aggregation's kind.
func Parse(raw map[string]json.RawMessage, defs []Aggregation) (Results, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(Results, len(defs))
	for _, d := range defs {
		data, ok := raw[d.name]
		if !ok {
			continue
		}
		res, err := parseOne(d, data)
		if err != nil {
			return nil, fmt.Errorf("aggregation %q: %w", d.name, err)
		}
		out[d.name] = res
	}
	return out, nil
}

func parseOne(d Aggregation, data json.RawMessage) (Result, error) {
	res := Result{Name: d.name, Kind: d.kind}
	if d.kind == KindTerms {
		var body struct {
			Buckets []struct {
				Key      any   `json:"key"`
				DocCount int64 `json:"doc_count"`
			} `json:"buckets"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return Result{}, fmt.Errorf("decode buckets: %w", err)
		}
		res.Buckets = make([]Bucket, len(body.Buckets))
		for i, b := range body.Buckets {
			res.Buckets[i] = Bucket{Key: b.Key, DocCount: b.DocCount}
		}
		return res, nil
	}

	var body struct {
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return Result{}, fmt.Errorf("decode metric: %w", err)
	}
	res.Metric = &Metric{Name: d.name, Kind: d.kind, Value: body.Value}
	return res, nil
}
