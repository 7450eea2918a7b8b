package search_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/search"
	"github.com/arkohut/pensieve/internal/storage/sqlite"
	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

func setupRankerTestDB(t *testing.T) (*sqlite.SQLiteStorage, func()) {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "ranker.db"))
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	return store, func() { store.Close() }
}

// TestHybridSearchRoundTrip exercises hybrid_search end to end: create two
// entities, index only the query match purely lexically (no embedder
// configured), then confirm the ranker returns exactly that match.
func TestHybridSearchRoundTrip(t *testing.T) {
	store, cleanup := setupRankerTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lib, err := store.CreateLibrary(ctx, "hybrid-lib")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}

	match, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/quarterly-report.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEntity(match): %v", err)
	}
	if _, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/vacation-photo.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateEntity(unrelated): %v", err)
	}

	if err := store.BatchUpdateEntityIndices(ctx, nil, []int64{match.ID}); err != nil {
		t.Fatalf("BatchUpdateEntityIndices: %v", err)
	}

	ranker := &search.Ranker{Store: store, Tokenizer: tokenizer.NewFallback()}
	result, err := ranker.Search(ctx, search.Request{Query: "quarterly", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Hits) != 1 || result.Hits[0].Entity.ID != match.ID {
		t.Fatalf("expected exactly the quarterly-report entity, got %+v", result.Hits)
	}
}

// TestHybridSearchAppNamesFilter confirms the ranker's AND-combined
// filters reach the lexical leg (facets are not requested here).
func TestHybridSearchAppNamesFilter(t *testing.T) {
	store, cleanup := setupRankerTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lib, err := store.CreateLibrary(ctx, "app-filter-lib")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}

	safari, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/budget-safari.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
		MetadataEntries: []types.MetadataEntry{
			{Key: types.MetadataKeyActiveApp, Value: "Safari", DataType: types.DataTypeText},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntity(safari): %v", err)
	}
	finder, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/budget-finder.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
		MetadataEntries: []types.MetadataEntry{
			{Key: types.MetadataKeyActiveApp, Value: "Finder", DataType: types.DataTypeText},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntity(finder): %v", err)
	}

	if err := store.BatchUpdateEntityIndices(ctx, nil, []int64{safari.ID, finder.ID}); err != nil {
		t.Fatalf("BatchUpdateEntityIndices: %v", err)
	}

	ranker := &search.Ranker{Store: store, Tokenizer: tokenizer.NewFallback()}
	result, err := ranker.Search(ctx, search.Request{
		Query:   "budget",
		Limit:   10,
		Filters: types.SearchFilters{AppNames: []string{"Safari"}},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Hits) != 1 || result.Hits[0].Entity.ID != safari.ID {
		t.Fatalf("expected only the Safari entity, got %+v", result.Hits)
	}
}

// TestHybridSearchWantFacets confirms WantFacets populates the stats
// aggregate returned alongside the ranked hits.
func TestHybridSearchWantFacets(t *testing.T) {
	store, cleanup := setupRankerTestDB(t)
	defer cleanup()
	ctx := context.Background()

	lib, err := store.CreateLibrary(ctx, "facets-ranker-lib")
	if err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}
	e, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/facet-note.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
		MetadataEntries: []types.MetadataEntry{
			{Key: types.MetadataKeyActiveApp, Value: "Notes", DataType: types.DataTypeText},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if err := store.BatchUpdateEntityIndices(ctx, nil, []int64{e.ID}); err != nil {
		t.Fatalf("BatchUpdateEntityIndices: %v", err)
	}

	ranker := &search.Ranker{Store: store, Tokenizer: tokenizer.NewFallback()}
	result, err := ranker.Search(ctx, search.Request{Query: "facet", Limit: 10, WantFacets: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Facets == nil {
		t.Fatal("expected non-nil Facets when WantFacets is set")
	}
	if result.Facets.AppNameCounts["Notes"] != 1 {
		t.Errorf("AppNameCounts[Notes] = %d, want 1", result.Facets.AppNameCounts["Notes"])
	}
}
