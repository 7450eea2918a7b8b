package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkohut/pensieve/internal/config"
	"github.com/arkohut/pensieve/internal/ingest"
	"github.com/arkohut/pensieve/internal/storage"
	"github.com/arkohut/pensieve/internal/types"
)

var ingestLibraryFlag string

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Scan a folder and create or refresh entity rows beneath it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		libName := ingestLibraryFlag
		if libName == "" {
			libName = config.GetString("default_library")
		}
		lib, err := getOrCreateLibrary(ctx, store, libName)
		if err != nil {
			return err
		}

		folder, err := getOrCreateFolder(ctx, store, lib.ID, args[0])
		if err != nil {
			return err
		}

		debug, _ := cmd.Flags().GetBool("verbose")
		stats, err := ingest.Path(ctx, store, lib.ID, folder.ID, args[0], ingest.NewStderrNotifier(debug))
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
		fmt.Printf("ingested %s: %d created, %d updated, %d skipped, %d failed\n",
			args[0], stats.Created, stats.Updated, stats.Skipped, stats.Failed)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestLibraryFlag, "library", "", "library name (default: default_library from config)")
	ingestCmd.Flags().Bool("verbose", false, "print per-file debug output")
}

func getOrCreateLibrary(ctx context.Context, store storage.Storage, name string) (*types.Library, error) {
	lib, err := store.GetLibraryByName(ctx, name)
	if err == nil {
		return lib, nil
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("looking up library %q: %w", name, err)
	}
	return store.CreateLibrary(ctx, name)
}

func getOrCreateFolder(ctx context.Context, store storage.Storage, libraryID int64, path string) (*types.Folder, error) {
	folders, err := store.ListFolders(ctx, libraryID)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	for _, f := range folders {
		if f.Path == path {
			return f, nil
		}
	}
	return store.CreateFolder(ctx, libraryID, path, types.FolderDefault)
}
