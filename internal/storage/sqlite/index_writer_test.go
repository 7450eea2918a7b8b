package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/embedding"
	"github.com/arkohut/pensieve/internal/types"
)

// fakeEmbedder returns a deterministic vector per call, one call counted
// per batch so tests can assert skip-if-fresh actually skipped embedding.
type fakeEmbedder struct {
	dim   int
	calls int
}

func (f *fakeEmbedder) Dim() int { return f.dim }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		for j := range v {
			v[j] = float32(len(texts[i])) / float32(j+1)
		}
		out[i] = v
	}
	return out, nil
}

var _ embedding.Embedder = (*fakeEmbedder)(nil)

func TestUpdateEntityIndex(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "index-lib")

	e, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/index.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	emb := &fakeEmbedder{dim: 4}
	if err := store.UpdateEntityIndex(ctx, emb, e.ID); err != nil {
		t.Fatalf("UpdateEntityIndex: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("expected 1 embed call, got %d", emb.calls)
	}

	var count int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities_vec_v2 WHERE rowid = ?`, e.ID).Scan(&count); err != nil {
		t.Fatalf("querying entities_vec_v2: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 vector row, got %d", count)
	}
}

func TestBatchUpdateEntityIndicesSkipsIfFresh(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "batch-lib")

	e, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{
		Filepath:      "/batch.png",
		FileTypeGroup: "image",
		FileCreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	emb := &fakeEmbedder{dim: 4}
	if err := store.BatchUpdateEntityIndices(ctx, emb, []int64{e.ID}); err != nil {
		t.Fatalf("first BatchUpdateEntityIndices: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("expected 1 embed call on first pass, got %d", emb.calls)
	}

	// A second pass with no intervening TouchEntity/UpdateEntity call finds
	// last_scan_at no newer than the vector row's created_at_timestamp, so
	// the vector side is skipped (skip-if-fresh) while the FTS row still
	// gets rewritten unconditionally.
	if err := store.BatchUpdateEntityIndices(ctx, emb, []int64{e.ID}); err != nil {
		t.Fatalf("second BatchUpdateEntityIndices: %v", err)
	}
	if emb.calls != 1 {
		t.Fatalf("expected embed call count to stay at 1 after skip-if-fresh pass, got %d", emb.calls)
	}

	// Touching the entity advances last_scan_at past the vector row's
	// created_at_timestamp, so the next batch pass must re-embed.
	if err := store.TouchEntity(ctx, e.ID); err != nil {
		t.Fatalf("TouchEntity: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := store.BatchUpdateEntityIndices(ctx, emb, []int64{e.ID}); err != nil {
		t.Fatalf("third BatchUpdateEntityIndices: %v", err)
	}
	if emb.calls != 2 {
		t.Fatalf("expected embed call count to advance to 2 after touch, got %d", emb.calls)
	}
}

func TestBatchUpdateEntityIndicesMissingEntity(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := store.BatchUpdateEntityIndices(ctx, &fakeEmbedder{dim: 4}, []int64{12345})
	if err == nil {
		t.Fatal("expected error for missing entity id")
	}
	var missingErr *ErrMissingEntities
	if !asMissingEntities(err, &missingErr) {
		t.Fatalf("expected *ErrMissingEntities, got %T: %v", err, err)
	}
	if len(missingErr.IDs) != 1 || missingErr.IDs[0] != 12345 {
		t.Fatalf("expected missing id 12345, got %+v", missingErr.IDs)
	}
}

func asMissingEntities(err error, target **ErrMissingEntities) bool {
	me, ok := err.(*ErrMissingEntities)
	if !ok {
		return false
	}
	*target = me
	return true
}
