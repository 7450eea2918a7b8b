package sqlite

import (
	"context"

	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

// FullTextSearch executes a tokenized query against entities_fts, restricted
// to file_type_group = "image" and the supplied structured filters.
// Results are ordered by the FTS ranker ascending (best match first) and
// capped at limit. An empty query yields empty results.
func (s *SQLiteStorage) FullTextSearch(ctx context.Context, tok tokenizer.Tokenizer, query string, limit int, filters types.SearchFilters) (ids []int64, err error) {
	if query == "" {
		return nil, nil
	}
	expr := tok.QueryExpand(query)
	if expr == "" {
		return nil, nil
	}

	ctx, span := startDBSpan(ctx, "full_text_search")
	defer func() { endDBSpan(span, err) }()

	clause, args := buildFilterClauseAliased(filters, "e.file_type_group = 'image'", "e")
	args = append([]interface{}{expr}, args...)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id FROM entities_fts f
		JOIN entities e ON e.id = f.id
		WHERE f.entities_fts MATCH ? AND `+clause+`
		ORDER BY f.rank ASC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, wrapDBError("FullTextSearch", err)
	}
	return scanIDs(rows)
}
