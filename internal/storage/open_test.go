package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arkohut/pensieve/internal/storage"
)

func TestOpenSQLiteSchemePrefix(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prefixed.db")
	s, err := storage.Open(context.Background(), "sqlite://"+dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
}

func TestOpenBarePathDefaultsToSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bare.db")
	s, err := storage.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
}

func TestOpenUnrecognizedScheme(t *testing.T) {
	_, err := storage.Open(context.Background(), "postgres://localhost/db")
	if err == nil {
		t.Fatal("expected error for unrecognized scheme")
	}
}
