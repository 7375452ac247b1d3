package db

import "encoding/json"

// Refresh controls when writes become visible to search.
type Refresh string

// Refresh policies.
const (
	RefreshFalse   Refresh = "false"
	RefreshTrue    Refresh = "true"
	RefreshWaitFor Refresh = "wait_for"
)

// Valid reports whether r is a known refresh policy. Empty means the engine default.
func (r Refresh) Valid() bool {
	switch r {
	case "", RefreshFalse, RefreshTrue, RefreshWaitFor:
		return true
	default:
		return false
	}
}

// IndexRequest writes one document. An empty ID lets the engine assign one.
type IndexRequest struct {
	Index   string
	ID      string
	Body    []byte
	Refresh Refresh
}

// UpdateRequest applies an _update body to one document.
type UpdateRequest struct {
	Index           string
	ID              string
	Body            []byte
	Refresh         Refresh
	RetryOnConflict int
}

// WriteResult is the engine's answer to a single-document write.
type WriteResult struct {
	Index       string `json:"_index"`
	ID          string `json:"_id"`
	Version     int64  `json:"_version"`
	Result      string `json:"result"`
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
}

// GetResult is a fetched document.
type GetResult struct {
	Index   string          `json:"_index"`
	ID      string          `json:"_id"`
	Version int64           `json:"_version"`
	Found   bool            `json:"found"`
	Source  json.RawMessage `json:"_source"`
}

// BulkAction is a _bulk action name.
type BulkAction string

// Supported bulk actions.
const (
	BulkIndex  BulkAction = "index"
	BulkCreate BulkAction = "create"
	BulkDelete BulkAction = "delete"
)

// BulkItem is one line pair of a _bulk body. Body is ignored for deletes.
type BulkItem struct {
	Action BulkAction
	ID     string
	Body   []byte
}

// BulkRequest is a batch of items against one index.
type BulkRequest struct {
	Index   string
	Items   []BulkItem
	Refresh Refresh
}

// BulkItemResult is the per-item outcome of a _bulk request.
type BulkItemResult struct {
	WriteResult
	Status int
	Error  string
}

// Failed reports whether the item was rejected.
func (r BulkItemResult) Failed() bool { return r.Error != "" }

// BulkResult holds per-item results in request order.
type BulkResult struct {
	Took      int64
	HasErrors bool
	Items     []BulkItemResult
}

// ByQueryOptions tunes update- and delete-by-query.
type ByQueryOptions struct {
	Refresh   bool
	Conflicts string
}
