package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key esodm writes to the cache store.
const KeyPrefix = "esodm:"

var (
	// ErrIndexNotFound signals a missing index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrIndexExists signals an attempt to create an existing index.
	ErrIndexExists = errors.New("index already exists")
	// ErrInvalidIndexName signals an index name the engine would reject.
	ErrInvalidIndexName = errors.New("invalid index name")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVersionConflict signals an optimistic concurrency conflict reported by the engine.
	ErrVersionConflict = errors.New("version conflict")
	// ErrInvalidQuery signals a malformed query or search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidSchema signals an invalid mapping or entity definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrMissingID signals an entity without an identifier where one is required.
	ErrMissingID = errors.New("missing document id")
	// ErrBulkFailure signals that at least one bulk item failed.
	ErrBulkFailure = errors.New("bulk operation failed")
)

// BulkError reports per-item failures of a bulk request. Successful items are
// still returned to the caller next to this error.
type BulkError struct {
	// Failures maps document id (or "#<position>" for engine-assigned ids) to the failure reason.
	Failures map[string]string
}

func (e *BulkError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for k := range e.Failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	const maxShown = 3
	parts := make([]string, 0, maxShown)
	for i, k := range keys {
		if i == maxShown {
			break
		}
		parts = append(parts, k+": "+e.Failures[k])
	}
	msg := fmt.Sprintf("%s: %d item(s) failed [%s", ErrBulkFailure.Error(), len(keys), strings.Join(parts, "; "))
	if len(keys) > maxShown {
		msg += "; ..."
	}
	return msg + "]"
}

func (e *BulkError) Unwrap() error { return ErrBulkFailure }
