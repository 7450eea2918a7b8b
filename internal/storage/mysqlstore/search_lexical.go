package mysqlstore

import (
	"context"

	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

// FullTextSearch mirrors the sqlite provider's C4 contract against a MySQL
// FULLTEXT index instead of FTS5: same tokenizer.QueryExpand call, same
// filter set, but MATCH ... AGAINST ... IN BOOLEAN MODE ranks by relevance
// descending rather than FTS5's ascending rank column.
func (s *Store) FullTextSearch(ctx context.Context, tok tokenizer.Tokenizer, query string, limit int, filters types.SearchFilters) (ids []int64, err error) {
	if query == "" {
		return nil, nil
	}
	expr := tok.QueryExpand(query)
	if expr == "" {
		return nil, nil
	}

	ctx, span := startDBSpan(ctx, "full_text_search")
	defer func() { endDBSpan(span, err) }()

	clause, filterArgs := buildFilterClauseAliased(filters, "e.file_type_group = 'image'", "e")

	args := make([]interface{}, 0, len(filterArgs)+3)
	args = append(args, expr)
	args = append(args, filterArgs...)
	args = append(args, expr, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id FROM entities e
		WHERE MATCH(e.filepath, e.fts_tags, e.fts_metadata) AGAINST (? IN BOOLEAN MODE) AND `+clause+`
		ORDER BY MATCH(e.filepath, e.fts_tags, e.fts_metadata) AGAINST (? IN BOOLEAN MODE) DESC
		LIMIT ?
	`, args...)
	if err != nil {
		return nil, wrapDBError("FullTextSearch", err)
	}
	return scanIDs(rows)
}
