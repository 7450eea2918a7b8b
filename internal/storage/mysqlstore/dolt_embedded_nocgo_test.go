//go:build !cgo

package mysqlstore

import (
	"context"
	"errors"
	"testing"
)

func TestNewEmbeddedNoCGOReturnsError(t *testing.T) {
	_, err := NewEmbedded(context.Background(), t.TempDir())
	if !errors.Is(err, errNoCGO) {
		t.Fatalf("expected errNoCGO, got %v", err)
	}
}
