// Package document holds the outcome types of document writes.
package document

import "encoding/json"

// Info describes a stored document version, as returned by index and bulk writes.
type Info struct {
	ID          string `json:"id"`
	Index       string `json:"index"`
	Version     int64  `json:"version"`
	SeqNo       int64  `json:"seq_no"`
	PrimaryTerm int64  `json:"primary_term"`
	Result      string `json:"result"`
}

// Item is one document submitted to a bulk write. An empty ID lets the engine assign one.
type Item struct {
	ID     string
	Source json.RawMessage
}

// Outcome is the per-item result of a bulk write; Err is nil on success.
type Outcome struct {
	Info Info
	Err  error
}

// NewOK creates a successful outcome.
func NewOK(info Info) Outcome { return Outcome{Info: info} }

// NewError creates a failed outcome for the given id.
func NewError(index, id string, err error) Outcome {
	return Outcome{Info: Info{ID: id, Index: index}, Err: err}
}

// OK reports whether the item succeeded.
func (o Outcome) OK() bool { return o.Err == nil }
