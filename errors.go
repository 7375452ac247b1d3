package esodm

import "github.com/kailas-cloud/esodm/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrIndexNotFound    = domain.ErrIndexNotFound
	ErrIndexExists      = domain.ErrIndexExists
	ErrInvalidIndexName = domain.ErrInvalidIndexName
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrVersionConflict  = domain.ErrVersionConflict
	ErrInvalidQuery     = domain.ErrInvalidQuery
	ErrInvalidSchema    = domain.ErrInvalidSchema
	ErrMissingID        = domain.ErrMissingID
	ErrBulkFailure      = domain.ErrBulkFailure
)

// BulkError lists the items a bulk write could not store. Use errors.As.
type BulkError = domain.BulkError
