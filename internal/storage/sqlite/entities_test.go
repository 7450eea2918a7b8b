package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/types"
)

func mustLibrary(t *testing.T, s *SQLiteStorage, name string) *types.Library {
	t.Helper()
	lib, err := s.CreateLibrary(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateLibrary(%q): %v", name, err)
	}
	return lib
}

func TestCreateAndGetEntity(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lib := mustLibrary(t, store, "screenshots")

	created, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/shots/one.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC),
		Size:          1024,
		Tags:          []string{"screenshot"},
		MetadataEntries: []types.MetadataEntry{
			{Key: types.MetadataKeyActiveApp, Value: "Safari", DataType: types.DataTypeText},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected non-zero entity id")
	}
	if len(created.Tags) != 1 || created.Tags[0].Name != "screenshot" {
		t.Fatalf("expected one tag 'screenshot', got %+v", created.Tags)
	}
	if len(created.Metadata) != 1 || created.Metadata[0].Value != "Safari" {
		t.Fatalf("expected active_app=Safari metadata, got %+v", created.Metadata)
	}

	fetched, err := store.GetEntity(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if fetched.Filepath != created.Filepath {
		t.Errorf("GetEntity filepath = %q, want %q", fetched.Filepath, created.Filepath)
	}

	byPath, err := store.GetEntityByFilepath(ctx, created.Filepath)
	if err != nil {
		t.Fatalf("GetEntityByFilepath: %v", err)
	}
	if byPath.ID != created.ID {
		t.Errorf("GetEntityByFilepath id = %d, want %d", byPath.ID, created.ID)
	}
}

func TestCreateEntityMissingLibrary(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.CreateEntity(ctx, 999, types.EntityPayload{Filepath: "/nope.png"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing library, got %v", err)
	}
}

func TestCreateEntityDuplicateFilepath(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "dup-lib")

	payload := types.EntityPayload{Filepath: "/dup.png", FileCreatedAt: time.Now()}
	if _, err := store.CreateEntity(ctx, lib.ID, payload); err != nil {
		t.Fatalf("first CreateEntity: %v", err)
	}
	_, err := store.CreateEntity(ctx, lib.ID, payload)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate filepath, got %v", err)
	}
}

func TestUpdateEntity(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "update-lib")

	created, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/update.png",
		FileCreatedAt: time.Now(),
		Size:          10,
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	updated, err := store.UpdateEntity(ctx, created.ID, types.EntityPayload{Size: 2048})
	if err != nil {
		t.Fatalf("UpdateEntity: %v", err)
	}
	if updated.Size != 2048 {
		t.Errorf("Size = %d, want 2048", updated.Size)
	}
	if !updated.LastScanAt.After(created.LastScanAt) {
		t.Error("expected LastScanAt to advance on UpdateEntity")
	}
}

func TestRemoveEntityCascadesTagsAndMetadata(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "cascade-lib")

	created, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/cascade.png",
		FileCreatedAt: time.Now(),
		Tags:          []string{"a", "b"},
		MetadataEntries: []types.MetadataEntry{
			{Key: types.MetadataKeyActiveApp, Value: "Finder", DataType: types.DataTypeText},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	if err := store.RemoveEntity(ctx, created.ID); err != nil {
		t.Fatalf("RemoveEntity: %v", err)
	}

	if _, err := store.GetEntity(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after RemoveEntity, got %v", err)
	}

	var tagCount int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entity_tags WHERE entity_id = ?`, created.ID).Scan(&tagCount); err != nil {
		t.Fatalf("querying entity_tags: %v", err)
	}
	if tagCount != 0 {
		t.Errorf("expected entity_tags cascade-deleted, found %d rows", tagCount)
	}

	var metaCount int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM metadata_entries WHERE entity_id = ?`, created.ID).Scan(&metaCount); err != nil {
		t.Fatalf("querying metadata_entries: %v", err)
	}
	if metaCount != 0 {
		t.Errorf("expected metadata_entries cascade-deleted, found %d rows", metaCount)
	}
}

func TestGetEntityContext(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "context-lib")

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var mid *types.Entity
	for i := 0; i < 5; i++ {
		e, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
			Filepath:      fileName(i),
			FileCreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("CreateEntity %d: %v", i, err)
		}
		if i == 2 {
			mid = e
		}
	}

	before, after, err := store.GetEntityContext(ctx, lib.ID, mid.ID, 2, 2)
	if err != nil {
		t.Fatalf("GetEntityContext: %v", err)
	}
	if len(before) != 2 || len(after) != 2 {
		t.Fatalf("expected 2 before and 2 after, got %d before, %d after", len(before), len(after))
	}
	if before[1].ID != mid.ID-1 || after[0].ID != mid.ID+1 {
		t.Errorf("unexpected neighbor ordering: before=%+v after=%+v", before, after)
	}
}

func fileName(i int) string {
	return "/context-" + string(rune('a'+i)) + ".png"
}
