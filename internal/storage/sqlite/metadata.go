package sqlite

import (
	"context"
	"database/sql"

	"github.com/arkohut/pensieve/internal/types"
)

// UpdateMetadataEntries merges incoming entries: upserts each by
// (entity_id, key), preserving the prior source/source_type when the
// incoming entry's Source is empty. Prior keys not present in entries are
// left untouched.
func (s *SQLiteStorage) UpdateMetadataEntries(ctx context.Context, entityID int64, entries []types.MetadataEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range entries {
			if err := mergeMetadataEntryTx(ctx, tx, entityID, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func mergeMetadataEntryTx(ctx context.Context, tx *sql.Tx, entityID int64, m types.MetadataEntry) error {
	source, sourceType := m.Source, m.SourceType
	if source == "" {
		var prevSource, prevSourceType string
		err := tx.QueryRowContext(ctx, `
			SELECT source, source_type FROM metadata_entries WHERE entity_id = ? AND key = ?
		`, entityID, m.Key).Scan(&prevSource, &prevSourceType)
		if err == nil {
			source, sourceType = prevSource, prevSourceType
		} else if err != sql.ErrNoRows {
			return wrapDBError("mergeMetadataEntry: lookup", err)
		}
	}

	dataType := m.DataType
	if dataType == "" {
		dataType = types.DataTypeText
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO metadata_entries (entity_id, key, value, source, source_type, data_type)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_id, key) DO UPDATE SET
			value = excluded.value,
			source = excluded.source,
			source_type = excluded.source_type,
			data_type = excluded.data_type
	`, entityID, m.Key, m.Value, source, sourceType, dataType)
	return wrapDBError("mergeMetadataEntry: upsert", err)
}

// replaceMetadataTx clears then re-inserts metadata entries wholesale,
// applying source_type = plugin_generated when Source is present, per
// create_entity's contract.
func replaceMetadataTx(ctx context.Context, tx *sql.Tx, entityID int64, entries []types.MetadataEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM metadata_entries WHERE entity_id = ?`, entityID); err != nil {
		return wrapDBError("replaceMetadata: clear", err)
	}
	for i, m := range entries {
		sourceType := m.SourceType
		if m.Source != "" && sourceType == "" {
			sourceType = "plugin_generated"
		}
		dataType := m.DataType
		if dataType == "" {
			dataType = types.DataTypeText
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO metadata_entries (entity_id, key, value, source, source_type, data_type, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, entityID, m.Key, m.Value, m.Source, sourceType, dataType, i); err != nil {
			return wrapDBError("replaceMetadata: insert", err)
		}
	}
	return nil
}

func listMetadataByConn(ctx context.Context, q querier, entityID int64) ([]types.MetadataEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT entity_id, key, value, source, source_type, data_type
		FROM metadata_entries WHERE entity_id = ?
		ORDER BY seq ASC, key ASC
	`, entityID)
	if err != nil {
		return nil, wrapDBError("listMetadata", err)
	}
	defer rows.Close()

	var out []types.MetadataEntry
	for rows.Next() {
		var m types.MetadataEntry
		if err := rows.Scan(&m.EntityID, &m.Key, &m.Value, &m.Source, &m.SourceType, &m.DataType); err != nil {
			return nil, wrapDBError("listMetadata: scan", err)
		}
		out = append(out, m)
	}
	return out, wrapDBError("listMetadata: rows", rows.Err())
}
