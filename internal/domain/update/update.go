// Package update models partial updates, scripted updates and update-by-query.
package update

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/esodm/internal/domain/query"
)

// DefaultLang is the script language used when none is set.
const DefaultLang = "painless"

// ScriptType selects between inline source and a stored script id.
type ScriptType string

// Script types.
const (
	Inline ScriptType = "inline"
	Stored ScriptType = "stored"
)

// Script is an engine-side script.
type Script struct {
	Type   ScriptType
	Source string
	ID     string
	Lang   string
	Params map[string]any
}

// NewScript creates an inline painless script.
func NewScript(source string) *Script {
	return &Script{Type: Inline, Source: source, Lang: DefaultLang}
}

// WithParams sets the script parameters.
func (s *Script) WithParams(params map[string]any) *Script {
	s.Params = params
	return s
}

// Validate checks that inline scripts carry source and stored ones an id.
func (s *Script) Validate() error {
	switch s.Type {
	case "", Inline:
		if s.Source == "" {
			return errors.New("inline script requires source")
		}
	case Stored:
		if s.ID == "" {
			return errors.New("stored script requires id")
		}
	default:
		return fmt.Errorf("unknown script type %q", s.Type)
	}
	return nil
}

// Render renders the script object.
func (s *Script) Render() map[string]any {
	out := map[string]any{}
	if s.Type == Stored {
		out["id"] = s.ID
	} else {
		out["source"] = s.Source
		lang := s.Lang
		if lang == "" {
			lang = DefaultLang
		}
		out["lang"] = lang
	}
	if len(s.Params) > 0 {
		out["params"] = s.Params
	}
	return out
}

// ByID is a single-document update: a partial doc or a script.
type ByID struct {
	ID              string
	Doc             map[string]any
	Script          *Script
	Upsert          map[string]any
	DocAsUpsert     bool
	RetryOnConflict int
}

// Validate requires an id and exactly one of Doc or Script.
func (u ByID) Validate() error {
	if u.ID == "" {
		return errors.New("update requires a document id")
	}
	if (len(u.Doc) == 0) == (u.Script == nil) {
		return errors.New("update requires exactly one of doc or script")
	}
	if u.Script != nil {
		if err := u.Script.Validate(); err != nil {
			return err
		}
	}
	if u.DocAsUpsert && u.Script != nil {
		return errors.New("doc_as_upsert cannot be combined with a script")
	}
	if u.RetryOnConflict < 0 {
		return errors.New("retry_on_conflict must not be negative")
	}
	return nil
}

// Body renders the _update request body.
func (u ByID) Body() ([]byte, error) {
	body := map[string]any{}
	if len(u.Doc) > 0 {
		body["doc"] = u.Doc
	}
	if u.Script != nil {
		body["script"] = u.Script.Render()
	}
	if len(u.Upsert) > 0 {
		body["upsert"] = u.Upsert
	}
	if u.DocAsUpsert {
		body["doc_as_upsert"] = true
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal update body: %w", err)
	}
	return data, nil
}

// Conflict handling for by-query operations.
const (
	ConflictsAbort   = "abort"
	ConflictsProceed = "proceed"
)

// ByQuery updates every document matching Query with Script.
type ByQuery struct {
	Query     query.Query
	Script    *Script
	Conflicts string
	MaxDocs   int
}

// Validate requires a script and a valid query.
func (u ByQuery) Validate() error {
	if u.Script == nil {
		return errors.New("update by query requires a script")
	}
	if err := u.Script.Validate(); err != nil {
		return err
	}
	if u.Query != nil {
		if err := query.Validate(u.Query); err != nil {
			return err
		}
	}
	return ValidateConflicts(u.Conflicts, u.MaxDocs)
}

// ValidateConflicts checks the options shared by update- and delete-by-query.
func ValidateConflicts(conflicts string, maxDocs int) error {
	switch conflicts {
	case "", ConflictsAbort, ConflictsProceed:
	default:
		return fmt.Errorf("invalid conflicts mode %q", conflicts)
	}
	if maxDocs < 0 {
		return errors.New("max_docs must not be negative")
	}
	return nil
}

// Body renders the _update_by_query request body.
func (u ByQuery) Body() ([]byte, error) {
	q := u.Query
	if q == nil {
		q = query.MatchAll()
	}
	body := map[string]any{"query": q.Source()}
	if u.Script != nil {
		body["script"] = u.Script.Render()
	}
	if u.MaxDocs > 0 {
		body["max_docs"] = u.MaxDocs
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal update by query body: %w", err)
	}
	return data, nil
}

// Response is the outcome of a single-document write.
type Response struct {
	Index       string `json:"_index"`
	ID          string `json:"_id"`
	Version     int64  `json:"_version"`
	Result      string `json:"result"`
	SeqNo       int64  `json:"_seq_no"`
	PrimaryTerm int64  `json:"_primary_term"`
}

// Failure describes one document that a by-query operation could not process.
type Failure struct {
	Index  string `json:"index"`
	ID     string `json:"id"`
	Status int    `json:"status"`
	Reason string `json:"reason"`
}

// ByQueryResponse is the outcome of update- or delete-by-query.
type ByQueryResponse struct {
	Took             int64     `json:"took"`
	TimedOut         bool      `json:"timed_out"`
	Total            int64     `json:"total"`
	Updated          int64     `json:"updated"`
	Deleted          int64     `json:"deleted"`
	Batches          int64     `json:"batches"`
	VersionConflicts int64     `json:"version_conflicts"`
	Noops            int64     `json:"noops"`
	Failures         []Failure `json:"failures"`
}

// DecodeByQuery parses a by-query response. Engine failure entries carry the
// reason under cause.reason; they are flattened into Failure.
func DecodeByQuery(data []byte) (*ByQueryResponse, error) {
	var w struct {
		ByQueryResponse
		Failures []struct {
			Index  string `json:"index"`
			ID     string `json:"id"`
			Status int    `json:"status"`
			Cause  struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"cause"`
		} `json:"failures"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode by-query response: %w", err)
	}
	out := w.ByQueryResponse
	out.Failures = make([]Failure, len(w.Failures))
	for i, f := range w.Failures {
		reason := f.Cause.Reason
		if reason == "" {
			reason = f.Cause.Type
		}
		out.Failures[i] = Failure{Index: f.Index, ID: f.ID, Status: f.Status, Reason: reason}
	}
	return &out, nil
}
