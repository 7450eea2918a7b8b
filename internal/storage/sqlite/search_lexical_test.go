package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

func mustIndexedEntity(t *testing.T, store *SQLiteStorage, libraryID int64, filepath string, createdAt time.Time, appName string) *types.Entity {
	t.Helper()
	ctx := context.Background()
	e, err := store.CreateEntity(ctx, libraryID, types.EntityPayload{
		Filepath:      filepath,
		FileTypeGroup: "image",
		FileCreatedAt: createdAt,
		MetadataEntries: []types.MetadataEntry{
			{Key: types.MetadataKeyActiveApp, Value: appName, DataType: types.DataTypeText},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntity(%q): %v", filepath, err)
	}
	if err := store.UpdateEntityIndex(ctx, nil, e.ID); err != nil {
		t.Fatalf("UpdateEntityIndex(%d): %v", e.ID, err)
	}
	return e
}

func TestFullTextSearch(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "lexical-lib")

	mustIndexedEntity(t, store, lib.ID, "/invoice-march.png", time.Now(), "Preview")
	mustIndexedEntity(t, store, lib.ID, "/receipt-march.png", time.Now(), "Preview")
	mustIndexedEntity(t, store, lib.ID, "/unrelated.png", time.Now(), "Preview")

	tok := tokenizer.NewFallback()
	ids, err := store.FullTextSearch(ctx, tok, "march", 10, types.SearchFilters{})
	if err != nil {
		t.Fatalf("FullTextSearch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 hits for 'march', got %d: %+v", len(ids), ids)
	}
}

func TestFullTextSearchEmptyQuery(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ids, err := store.FullTextSearch(context.Background(), tokenizer.NewFallback(), "", 10, types.SearchFilters{})
	if err != nil {
		t.Fatalf("FullTextSearch: %v", err)
	}
	if ids != nil {
		t.Fatalf("expected nil ids for empty query, got %+v", ids)
	}
}

func TestFullTextSearchAppNameFilter(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "app-filter-lib")

	mustIndexedEntity(t, store, lib.ID, "/safari-note.png", time.Now(), "Safari")
	mustIndexedEntity(t, store, lib.ID, "/finder-note.png", time.Now(), "Finder")

	tok := tokenizer.NewFallback()
	ids, err := store.FullTextSearch(ctx, tok, "note", 10, types.SearchFilters{AppNames: []string{"Safari"}})
	if err != nil {
		t.Fatalf("FullTextSearch: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 hit restricted to Safari, got %d: %+v", len(ids), ids)
	}
}

func TestFullTextSearchDateRangeFilter(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "date-filter-lib")

	inRange := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mustIndexedEntity(t, store, lib.ID, "/in-range-budget.png", inRange, "Preview")
	mustIndexedEntity(t, store, lib.ID, "/out-of-range-budget.png", outOfRange, "Preview")

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)
	tok := tokenizer.NewFallback()
	ids, err := store.FullTextSearch(ctx, tok, "budget", 10, types.SearchFilters{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("FullTextSearch: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 hit within February date range, got %d: %+v", len(ids), ids)
	}
}
