package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arkohut/pensieve/internal/types"
)

func TestGetPendingPlugins(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	lib := mustLibrary(t, store, "plugin-lib")

	e, err := store.CreateEntity(ctx, lib.ID, types.EntityPayload{Filepath: "/plugin.png", FileCreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}

	ocr, err := store.CreatePlugin(ctx, types.Plugin{Name: "ocr", WebhookURL: "https://example.com/ocr"})
	if err != nil {
		t.Fatalf("CreatePlugin(ocr): %v", err)
	}
	tagger, err := store.CreatePlugin(ctx, types.Plugin{Name: "tagger", WebhookURL: "https://example.com/tagger"})
	if err != nil {
		t.Fatalf("CreatePlugin(tagger): %v", err)
	}

	if err := store.BindPlugin(ctx, lib.ID, ocr.ID); err != nil {
		t.Fatalf("BindPlugin(ocr): %v", err)
	}
	if err := store.BindPlugin(ctx, lib.ID, tagger.ID); err != nil {
		t.Fatalf("BindPlugin(tagger): %v", err)
	}

	pending, err := store.GetPendingPlugins(ctx, e.ID, lib.ID)
	if err != nil {
		t.Fatalf("GetPendingPlugins: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending plugins, got %d", len(pending))
	}

	if err := store.RecordProcessed(ctx, e.ID, ocr.ID); err != nil {
		t.Fatalf("RecordProcessed: %v", err)
	}

	pending, err = store.GetPendingPlugins(ctx, e.ID, lib.ID)
	if err != nil {
		t.Fatalf("GetPendingPlugins after processed: %v", err)
	}
	if len(pending) != 1 || pending[0].Name != "tagger" {
		t.Fatalf("expected only 'tagger' still pending, got %+v", pending)
	}
}

func TestCreatePluginDuplicateName(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreatePlugin(ctx, types.Plugin{Name: "dup"}); err != nil {
		t.Fatalf("first CreatePlugin: %v", err)
	}
	_, err := store.CreatePlugin(ctx, types.Plugin{Name: "dup"})
	if err == nil {
		t.Fatal("expected error on duplicate plugin name")
	}
}
