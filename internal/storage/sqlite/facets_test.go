package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

func TestGetSearchStats(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "facets-lib")

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	mustIndexedEntity(t, store, lib.ID, "/facet-early.png", early, "Safari")
	mustIndexedEntity(t, store, lib.ID, "/facet-late.png", late, "Safari")
	mustIndexedEntity(t, store, lib.ID, "/facet-other.png", late, "Finder")

	tok := tokenizer.NewFallback()
	stats, err := store.GetSearchStats(ctx, tok, nil, "facet", types.SearchFilters{})
	if err != nil {
		t.Fatalf("GetSearchStats: %v", err)
	}
	if stats.AppNameCounts["Safari"] != 2 {
		t.Errorf("AppNameCounts[Safari] = %d, want 2", stats.AppNameCounts["Safari"])
	}
	if stats.AppNameCounts["Finder"] != 1 {
		t.Errorf("AppNameCounts[Finder] = %d, want 1", stats.AppNameCounts["Finder"])
	}
	if stats.DateRange.Earliest == nil || !stats.DateRange.Earliest.Equal(early) {
		t.Errorf("DateRange.Earliest = %v, want %v", stats.DateRange.Earliest, early)
	}
	if stats.DateRange.Latest == nil || !stats.DateRange.Latest.Equal(late) {
		t.Errorf("DateRange.Latest = %v, want %v", stats.DateRange.Latest, late)
	}
}

func TestGetSearchStatsEmptyUnion(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	stats, err := store.GetSearchStats(context.Background(), tokenizer.NewFallback(), nil, "nothing matches this", types.SearchFilters{})
	if err != nil {
		t.Fatalf("GetSearchStats: %v", err)
	}
	if len(stats.AppNameCounts) != 0 {
		t.Errorf("expected empty AppNameCounts, got %+v", stats.AppNameCounts)
	}
}
