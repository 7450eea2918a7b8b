// Package dberr defines the sentinel errors shared by every storage
// provider, so callers can errors.Is against one set regardless of which
// backend storage.Open selected.
package dberr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrBackend              = errors.New("backend error")
)

// MissingEntities is returned by BatchUpdateEntityIndices when one or more
// requested entity ids are absent from the primary store. It carries the
// missing id set so callers can report exactly what failed.
type MissingEntities struct {
	IDs []int64
}

func (e *MissingEntities) Error() string {
	return fmt.Sprintf("missing entities: %v", e.IDs)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
