package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/ingest"
	"github.com/arkohut/pensieve/internal/storage/sqlite"
)

func setupIngestTestDB(t *testing.T) (*sqlite.SQLiteStorage, int64, int64, func()) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "ingest.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	lib, err := store.CreateLibrary(ctx, "ingest-lib")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	folder, err := store.CreateFolder(ctx, lib.ID, "root", "default")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	return store, lib.ID, folder.ID, func() { store.Close() }
}

func TestPathCreatesEntities(t *testing.T) {
	store, libID, folderID, cleanup := setupIngestTestDB(t)
	defer cleanup()
	ctx := context.Background()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shot.png"), []byte("data"), 0o644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}

	stats, err := ingest.Path(ctx, store, libID, folderID, dir, nil)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if stats.Created != 1 || stats.Updated != 0 || stats.Skipped != 0 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPathSkipsIfFresh(t *testing.T) {
	store, libID, folderID, cleanup := setupIngestTestDB(t)
	defer cleanup()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}

	if _, err := ingest.Path(ctx, store, libID, folderID, dir, nil); err != nil {
		t.Fatalf("first Path: %v", err)
	}

	stats, err := ingest.Path(ctx, store, libID, folderID, dir, nil)
	if err != nil {
		t.Fatalf("second Path: %v", err)
	}
	if stats.Skipped != 1 || stats.Created != 0 || stats.Updated != 0 {
		t.Fatalf("expected skip-if-fresh on unchanged file, got %+v", stats)
	}
}

func TestPathUpdatesModifiedFile(t *testing.T) {
	store, libID, folderID, cleanup := setupIngestTestDB(t)
	defer cleanup()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}
	if _, err := ingest.Path(ctx, store, libID, folderID, dir, nil); err != nil {
		t.Fatalf("first Path: %v", err)
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	stats, err := ingest.Path(ctx, store, libID, folderID, dir, nil)
	if err != nil {
		t.Fatalf("second Path: %v", err)
	}
	if stats.Updated != 1 || stats.Created != 0 || stats.Skipped != 0 {
		t.Fatalf("expected update for modified file, got %+v", stats)
	}
}
