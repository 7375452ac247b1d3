package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	ErrKeyNotFound      = errors.New("db: key not found")
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrIndexExists      = errors.New("db: index already exists")
	ErrDocumentNotFound = errors.New("db: document not found")
	ErrVersionConflict  = errors.New("db: version conflict")
	ErrBadRequest       = errors.New("db: bad request")
)

// Op constants name engine endpoints and cache commands for error context.
const (
	OpPing          = "ping"
	OpCreateIndex   = "indices.create"
	OpDeleteIndex   = "indices.delete"
	OpIndexExists   = "indices.exists"
	OpRefresh       = "indices.refresh"
	OpIndex         = "index"
	OpGet           = "get"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpBulk          = "bulk"
	OpSearch        = "search"
	OpCount         = "count"
	OpUpdateByQuery = "update_by_query"
	OpDeleteByQuery = "delete_by_query"

	OpKVGet    = "GET"
	OpKVSet    = "SET"
	OpKVIncrBy = "INCRBY"
	OpKVExpire = "EXPIRE"
)

// Error wraps an underlying error with the operation name for diagnostics.
// Engine errors also carry the HTTP status and the engine's error type.
type Error struct {
	Op     string
	Status int
	Type   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Type != "":
		return fmt.Sprintf("%s: [%d] %s: %s", e.Op, e.Status, e.Type, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("%s: [%d] %s", e.Op, e.Status, e.Reason)
	case e.Status != 0:
		return fmt.Sprintf("%s: [%d] %s", e.Op, e.Status, e.Err.Error())
	default:
		return e.Op + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }
