package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkohut/pensieve/internal/search"
	"github.com/arkohut/pensieve/internal/storage"
	"github.com/arkohut/pensieve/internal/types"
	"github.com/arkohut/pensieve/internal/ui"
	"github.com/arkohut/pensieve/internal/utils"
)

var (
	searchLimit    int
	searchLibrary  int64
	searchAppNames []string
	searchFacets   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run hybrid_search and print the ranked hits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext()
		defer cancel()

		store, err := openStorage(ctx, cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		ranker, err := newRanker(ctx, store)
		if err != nil {
			return err
		}

		filters := types.SearchFilters{AppNames: searchAppNames}
		if searchLibrary != 0 {
			filters.LibraryIDs = []int64{searchLibrary}
		}

		result, err := ranker.Search(ctx, search.Request{
			Query:      args[0],
			Limit:      searchLimit,
			Filters:    filters,
			WantFacets: searchFacets,
		})
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}

		width := 100
		if len(result.Hits) == 0 {
			fmt.Println("no matches")
			if suggestion := suggestQuery(ctx, store, args[0], filters); suggestion != "" {
				fmt.Printf("did you mean %q?\n", suggestion)
			}
			return nil
		}

		fmt.Println(ui.RenderResults(args[0], result.Hits, width))
		if result.Facets != nil {
			fmt.Println(ui.RenderStats(result.Facets))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of hits")
	searchCmd.Flags().Int64Var(&searchLibrary, "library-id", 0, "restrict search to a single library")
	searchCmd.Flags().StringSliceVar(&searchAppNames, "app", nil, "restrict search to these active-app names")
	searchCmd.Flags().BoolVar(&searchFacets, "facets", false, "also print get_search_stats facets")
}

// suggestQuery offers a fuzzy-matched app name from the facet aggregate's
// app_name_counts when a query returns nothing, rather than leaving the
// user to guess the exact spelling indexed for an application.
func suggestQuery(ctx context.Context, store storage.Storage, query string, filters types.SearchFilters) string {
	stats, err := store.GetSearchStats(ctx, nil, nil, "", filters)
	if err != nil || stats == nil {
		return ""
	}

	best := ""
	bestDist := -1
	for app := range stats.AppNameCounts {
		if utils.FuzzyMatch(query, app) {
			d := utils.ComputeDistance(app, query)
			if bestDist == -1 || d < bestDist {
				best, bestDist = app, d
			}
		}
	}
	return best
}
