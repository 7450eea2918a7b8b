package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

// setupTestDB opens a fresh SQLite-backed store in a temp directory and
// returns it alongside a cleanup func, the teacher's own shape for
// per-test storage fixtures.
func setupTestDB(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, func() { store.Close() }
}
