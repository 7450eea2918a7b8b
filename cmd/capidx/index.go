package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkohut/pensieve/internal/types"
)

var indexLibraryFlag int64

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "(Re)build the lexical/vector index for entities in a library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		filters := types.SearchFilters{}
		if indexLibraryFlag != 0 {
			filters.LibraryIDs = []int64{indexLibraryFlag}
		}
		entities, err := store.ListEntities(ctx, filters)
		if err != nil {
			return fmt.Errorf("listing entities: %w", err)
		}
		if len(entities) == 0 {
			fmt.Println("no entities to index")
			return nil
		}

		embedder := openEmbedder()
		ids := make([]int64, len(entities))
		for i, e := range entities {
			ids[i] = e.ID
		}

		if err := store.BatchUpdateEntityIndices(ctx, embedder, ids); err != nil {
			return fmt.Errorf("indexing %d entities: %w", len(ids), err)
		}
		fmt.Printf("indexed %d entities\n", len(ids))
		return nil
	},
}

func init() {
	indexCmd.Flags().Int64Var(&indexLibraryFlag, "library-id", 0, "restrict indexing to a single library")
}
