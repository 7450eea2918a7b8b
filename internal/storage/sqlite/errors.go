package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/arkohut/pensieve/internal/storage/dberr"
)

// Sentinel errors returned by the storage layer. Callers should use
// errors.Is against these, never string-match driver errors. Aliased from
// dberr so both providers share one set.
var (
	ErrNotFound             = dberr.ErrNotFound
	ErrConflict             = dberr.ErrConflict
	ErrInvalidArgument      = dberr.ErrInvalidArgument
	ErrEmbeddingUnavailable = dberr.ErrEmbeddingUnavailable
	ErrBackend              = dberr.ErrBackend
)

// ErrMissingEntities is returned by BatchUpdateEntityIndices when one or more
// requested entity ids are absent from the primary store.
type ErrMissingEntities = dberr.MissingEntities

// wrapDBError converts sql.ErrNoRows into ErrNotFound and annotates any
// other error with the failing operation name.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrBackend, err)
}

// wrapDBErrorf is wrapDBError with a formatted operation description.
func wrapDBErrorf(err error, format string, args ...interface{}) error {
	return wrapDBError(fmt.Sprintf(format, args...), err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// isUniqueConstraintError checks if a raw driver error is a UNIQUE
// constraint violation, independent of driver-specific error types.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE")
}
