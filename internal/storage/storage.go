// Package storage defines the polymorphic backend capability set (C9) and
// selects a concrete provider from a database URL. Callers, the CLI, and
// tests depend only on the Storage interface — never on a concrete
// provider type.
package storage

import (
	"context"

	"github.com/arkohut/pensieve/internal/embedding"
	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

// Storage is the full capability set exposed by a backend: entity/library/
// plugin CRUD (C2, C8) plus the search/index capability set named in
// spec.md §9 (C3, C4, C5, C7).
type Storage interface {
	Index
	EntityStore
	LibraryStore
	PluginStore

	Close() error
}

// Index is the capability set spec.md §9 requires callers to pick a
// concrete backend for: {full_text_search, vector_search,
// update_entity_index, batch_update_entity_indices, get_search_stats}.
// No caller, CLI command, or test may type-switch on the concrete provider.
type Index interface {
	FullTextSearch(ctx context.Context, tok tokenizer.Tokenizer, query string, limit int, filters types.SearchFilters) ([]int64, error)
	VectorSearch(ctx context.Context, vector []float32, limit int, filters types.SearchFilters) ([]int64, error)
	UpdateEntityIndex(ctx context.Context, embedder embedding.Embedder, entityID int64) error
	BatchUpdateEntityIndices(ctx context.Context, embedder embedding.Embedder, entityIDs []int64) error
	GetSearchStats(ctx context.Context, tok tokenizer.Tokenizer, vector []float32, query string, filters types.SearchFilters) (*types.SearchStats, error)
}

// EntityStore is C2.
type EntityStore interface {
	CreateEntity(ctx context.Context, libraryID int64, payload types.EntityPayload) (*types.Entity, error)
	GetEntity(ctx context.Context, id int64) (*types.Entity, error)
	GetEntityByFilepath(ctx context.Context, filepath string) (*types.Entity, error)
	ListEntities(ctx context.Context, filters types.SearchFilters) ([]*types.Entity, error)
	UpdateEntity(ctx context.Context, id int64, payload types.EntityPayload) (*types.Entity, error)
	TouchEntity(ctx context.Context, id int64) error
	RemoveEntity(ctx context.Context, id int64) error
	UpdateTags(ctx context.Context, entityID int64, names []string, source types.EntityTagSource) error
	AddTags(ctx context.Context, entityID int64, names []string, source types.EntityTagSource) error
	UpdateMetadataEntries(ctx context.Context, entityID int64, entries []types.MetadataEntry) error
	GetEntityContext(ctx context.Context, libraryID, id int64, prev, next int) (before, after []*types.Entity, err error)
}

// LibraryStore covers libraries, folders, and plugin bindings (C1's CRUD
// surface plus the library side of C8).
type LibraryStore interface {
	CreateLibrary(ctx context.Context, name string) (*types.Library, error)
	GetLibrary(ctx context.Context, id int64) (*types.Library, error)
	GetLibraryByName(ctx context.Context, name string) (*types.Library, error)
	ListLibraries(ctx context.Context) ([]*types.Library, error)
	CreateFolder(ctx context.Context, libraryID int64, path string, folderType types.FolderType) (*types.Folder, error)
	ListFolders(ctx context.Context, libraryID int64) ([]*types.Folder, error)
}

// PluginStore is C8.
type PluginStore interface {
	CreatePlugin(ctx context.Context, p types.Plugin) (*types.Plugin, error)
	BindPlugin(ctx context.Context, libraryID, pluginID int64) error
	RecordProcessed(ctx context.Context, entityID, pluginID int64) error
	GetPendingPlugins(ctx context.Context, entityID, libraryID int64) ([]*types.Plugin, error)
}
