package storage

import "github.com/arkohut/pensieve/internal/storage/dberr"

// Sentinel errors are re-exported from dberr so callers that only import
// storage (not a concrete provider package) can still errors.Is against
// them.
var (
	ErrNotFound             = dberr.ErrNotFound
	ErrConflict             = dberr.ErrConflict
	ErrInvalidArgument      = dberr.ErrInvalidArgument
	ErrEmbeddingUnavailable = dberr.ErrEmbeddingUnavailable
	ErrBackend              = dberr.ErrBackend
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return dberr.IsNotFound(err) }

// IsConflict reports whether err is or wraps ErrConflict.
func IsConflict(err error) bool { return dberr.IsConflict(err) }
