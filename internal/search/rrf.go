// Package search implements the hybrid ranker (C6): it fuses the lexical
// index (C4) and the vector index (C5) by reciprocal rank fusion and
// hydrates the fused id order into full entities via the storage layer,
// optionally alongside the facet aggregate (C7).
package search

import (
	"context"
	"sort"

	"github.com/arkohut/pensieve/internal/embedding"
	"github.com/arkohut/pensieve/internal/storage"
	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

// rrfK and the lexical/vector weights are fixed constants, not
// configuration, per the spec's stated preference for keeping hybrid_search
// deterministic and comparable across runs.
const (
	rrfK             = 60
	lexicalWeight    = 0.7
	vectorWeight     = 0.3
	vectorOverfetch  = 2 // vector search runs at 2x limit before fusion
)

// Request is hybrid_search's argument set.
type Request struct {
	Query      string
	Limit      int
	Filters    types.SearchFilters
	WantFacets bool
}

// Result is hybrid_search's return value: the fused, hydrated hits plus an
// optional facet aggregate.
type Result struct {
	Hits   []types.SearchResult
	Facets *types.SearchStats
}

// Ranker runs hybrid_search against a single backend, a tokenizer for query
// expansion, and an embedder for the vector leg. All three are caller-owned
// dependencies; Ranker holds no state of its own.
type Ranker struct {
	Store    storage.Storage
	Tokenizer tokenizer.Tokenizer
	Embedder  embedding.Embedder
}

// Search runs C4 at req.Limit, embeds the query and runs C5 at
// vectorOverfetch*req.Limit when an embedding is available, fuses both
// rankings with RRF, hydrates the top req.Limit ids in fused order, and
// optionally computes facets over the same query/filters.
func (r *Ranker) Search(ctx context.Context, req Request) (*Result, error) {
	lexicalIDs, err := r.Store.FullTextSearch(ctx, r.Tokenizer, req.Query, req.Limit, req.Filters)
	if err != nil {
		return nil, err
	}

	var vectorIDs []int64
	var queryVector []float32
	if req.Query != "" && r.Embedder != nil {
		vectors, err := r.Embedder.Embed(ctx, []string{req.Query})
		if err != nil && err != embedding.ErrUnavailable {
			return nil, err
		}
		if len(vectors) == 1 {
			queryVector = vectors[0]
			vectorIDs, err = r.Store.VectorSearch(ctx, queryVector, vectorOverfetch*req.Limit, req.Filters)
			if err != nil {
				return nil, err
			}
		}
	}

	fused := fuse(lexicalIDs, vectorIDs)
	if len(fused) > req.Limit {
		fused = fused[:req.Limit]
	}

	entities := make([]types.SearchResult, 0, len(fused))
	for _, f := range fused {
		e, err := r.Store.GetEntity(ctx, f.id)
		if err != nil {
			return nil, err
		}
		entities = append(entities, types.SearchResult{Entity: *e, Score: f.score})
	}

	result := &Result{Hits: entities}
	if req.WantFacets {
		stats, err := r.Store.GetSearchStats(ctx, r.Tokenizer, queryVector, req.Query, req.Filters)
		if err != nil {
			return nil, err
		}
		result.Facets = stats
	}
	return result, nil
}

type fusedHit struct {
	id    int64
	score float64
}

// fuse combines two ranked id lists by reciprocal rank fusion:
// score(id) = lexicalWeight/(rrfK+rank_lexical) + vectorWeight/(rrfK+rank_vector),
// where rank is 1-based position and a list missing an id contributes 0 for
// that term. Sorted by score descending; ties preserve lexical list order,
// then vector list order, for determinism.
func fuse(lexicalIDs, vectorIDs []int64) []fusedHit {
	scores := make(map[int64]float64)
	order := make([]int64, 0, len(lexicalIDs)+len(vectorIDs))
	seen := make(map[int64]struct{})

	for rank, id := range lexicalIDs {
		scores[id] += lexicalWeight / float64(rrfK+rank+1)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}
	for rank, id := range vectorIDs {
		scores[id] += vectorWeight / float64(rrfK+rank+1)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}

	hits := make([]fusedHit, len(order))
	for i, id := range order {
		hits[i] = fusedHit{id: id, score: scores[id]}
	}

	// order already encodes the first-seen (lexical-then-vector) tiebreak;
	// sort.SliceStable preserves it for equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	return hits
}
