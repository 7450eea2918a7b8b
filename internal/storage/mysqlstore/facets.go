package mysqlstore

import (
	"context"
	"database/sql"
	"sort"

	"github.com/arkohut/pensieve/internal/tokenizer"
	"github.com/arkohut/pensieve/internal/types"
)

// Sampling budgets mirror the sqlite provider's (see its facets.go for the
// open-question resolution this implements).
const (
	MaxSample = 4096
	MinSample = 2048
)

func (s *Store) GetSearchStats(ctx context.Context, tok tokenizer.Tokenizer, embedding []float32, query string, filters types.SearchFilters) (*types.SearchStats, error) {
	fts, err := s.FullTextSearch(ctx, tok, query, MaxSample, filters)
	if err != nil {
		return nil, err
	}

	vecLimit := clampSample(2*len(fts), MinSample, MaxSample)
	var vec []int64
	if embedding != nil {
		vec, err = s.VectorSearch(ctx, embedding, vecLimit, filters)
		if err != nil {
			return nil, err
		}
	}

	union := uniqueIDs(fts, vec)
	if len(union) == 0 {
		return &types.SearchStats{AppNameCounts: map[string]int{}}, nil
	}

	return s.computeStats(ctx, union)
}

func clampSample(n, min, max int) int {
	if n < min {
		n = min
	}
	if n > max {
		n = max
	}
	return n
}

func uniqueIDs(lists ...[]int64) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// computeStats scans directly into time.Time, since the DSN's
// parseTime=true flag has go-sql-driver/mysql do the DATETIME parsing that
// the sqlite provider has to do by hand (see its time.go).
func (s *Store) computeStats(ctx context.Context, ids []int64) (*types.SearchStats, error) {
	placeholders := ""
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}

	stats := &types.SearchStats{AppNameCounts: map[string]int{}}

	row := s.db.QueryRowContext(ctx, `
		SELECT MIN(file_created_at), MAX(file_created_at) FROM entities WHERE id IN (`+placeholders+`)
	`, args...)
	var earliest, latest sql.NullTime
	if err := row.Scan(&earliest, &latest); err != nil {
		return nil, wrapDBError("GetSearchStats: date range", err)
	}
	if earliest.Valid {
		stats.DateRange.Earliest = &earliest.Time
	}
	if latest.Valid {
		stats.DateRange.Latest = &latest.Time
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT value, COUNT(*) FROM metadata_entries
		WHERE entity_id IN (`+placeholders+`) AND `+"`key`"+` = ?
		GROUP BY value
	`, append(append([]interface{}{}, args...), types.MetadataKeyActiveApp)...)
	if err != nil {
		return nil, wrapDBError("GetSearchStats: app counts", err)
	}
	defer rows.Close()

	type appCount struct {
		name  string
		count int
	}
	var counts []appCount
	for rows.Next() {
		var ac appCount
		if err := rows.Scan(&ac.name, &ac.count); err != nil {
			return nil, wrapDBError("GetSearchStats: scan app counts", err)
		}
		counts = append(counts, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("GetSearchStats: app counts rows", err)
	}

	sort.Slice(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	for _, ac := range counts {
		stats.AppNameCounts[ac.name] = ac.count
	}

	return stats, nil
}
