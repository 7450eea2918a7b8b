package mysqlstore

import (
	"context"
	"sort"

	"github.com/arkohut/pensieve/internal/types"
)

// VectorSearch is identical in shape to the sqlite provider's: entities_vec_v2
// is a plain BLOB-backed table in both backends, ranked in Go by cosine
// distance rather than a database-native ANN index.
func (s *Store) VectorSearch(ctx context.Context, embedding []float32, limit int, filters types.SearchFilters) (ids []int64, err error) {
	ctx, span := startDBSpan(ctx, "vector_search")
	defer func() { endDBSpan(span, err) }()

	clause := "file_type_group = 'image'"
	var args []interface{}

	if len(filters.LibraryIDs) > 0 {
		placeholders := ""
		for i, id := range filters.LibraryIDs {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, id)
		}
		clause += " AND library_id IN (" + placeholders + ")"
	}
	if filters.Start != nil && filters.End != nil {
		clause += " AND file_created_at_date BETWEEN ? AND ?"
		args = append(args, filters.Start.Format("2006-01-02"), filters.End.Format("2006-01-02"))
		clause += " AND file_created_at_timestamp >= ? AND file_created_at_timestamp <= ?"
		args = append(args, filters.Start.Unix(), filters.End.Unix())
	}
	if len(filters.AppNames) > 0 {
		placeholders := ""
		for i, name := range filters.AppNames {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, name)
		}
		clause += " AND app_name IN (" + placeholders + ")"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT row_id, embedding FROM entities_vec_v2 WHERE `+clause, args...)
	if err != nil {
		return nil, wrapDBError("VectorSearch", err)
	}
	defer rows.Close()

	type candidate struct {
		id       int64
		distance float64
	}
	var candidates []candidate
	for rows.Next() {
		var id int64
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, wrapDBError("VectorSearch: scan", err)
		}
		candidates = append(candidates, candidate{id: id, distance: cosineDistance(embedding, decodeVector(blob))})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("VectorSearch: rows", err)
	}

	metrics.vectorScanned.Add(ctx, int64(len(candidates)))

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]int64, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out, nil
}
