package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/types"
)

func mustVectorEntity(t *testing.T, store *SQLiteStorage, libraryID int64, filepath string, createdAt time.Time, vector []float32) *types.Entity {
	t.Helper()
	ctx := context.Background()
	e, err := store.CreateEntity(ctx, libraryID, types.EntityPayload{
		Filepath:      filepath,
		FileTypeGroup: "image",
		FileCreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("CreateEntity(%q): %v", filepath, err)
	}
	if err := store.UpdateEntityIndex(ctx, &fixedEmbedder{vector: vector}, e.ID); err != nil {
		t.Fatalf("UpdateEntityIndex(%d): %v", e.ID, err)
	}
	return e
}

// fixedEmbedder always returns the same vector, letting tests control
// cosine-distance ordering precisely instead of depending on text content.
type fixedEmbedder struct {
	vector []float32
}

func (f *fixedEmbedder) Dim() int { return len(f.vector) }

func (f *fixedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func TestVectorSearchOrdersByDistance(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "vector-lib")

	near := mustVectorEntity(t, store, lib.ID, "/near.png", time.Now(), []float32{1, 0, 0, 0})
	_ = mustVectorEntity(t, store, lib.ID, "/far.png", time.Now(), []float32{0, 1, 0, 0})

	ids, err := store.VectorSearch(ctx, []float32{1, 0, 0, 0}, 10, types.SearchFilters{})
	if err != nil {
		t.Fatalf("VectorSearch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ids))
	}
	if ids[0] != near.ID {
		t.Errorf("expected closest vector first, got id %d want %d", ids[0], near.ID)
	}
}

func TestVectorSearchLibraryFilter(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	libA := mustLibrary(t, store, "vector-lib-a")
	libB := mustLibrary(t, store, "vector-lib-b")

	mustVectorEntity(t, store, libA.ID, "/a.png", time.Now(), []float32{1, 0})
	mustVectorEntity(t, store, libB.ID, "/b.png", time.Now(), []float32{1, 0})

	ids, err := store.VectorSearch(ctx, []float32{1, 0}, 10, types.SearchFilters{LibraryIDs: []int64{libA.ID}})
	if err != nil {
		t.Fatalf("VectorSearch: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected 1 result restricted to libA, got %d", len(ids))
	}
}
