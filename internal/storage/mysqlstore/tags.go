package mysqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/arkohut/pensieve/internal/types"
)

func (s *Store) UpdateTags(ctx context.Context, entityID int64, names []string, source types.EntityTagSource) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := replaceTagsTx(ctx, tx, entityID, names, source); err != nil {
			return err
		}
		return touchTx(ctx, tx, entityID)
	})
}

func (s *Store) AddTags(ctx context.Context, entityID int64, names []string, source types.EntityTagSource) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			tagID, err := upsertTagTx(ctx, tx, name)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT IGNORE INTO entity_tags (entity_id, tag_id, source, attached_at)
				VALUES (?, ?, ?, ?)
			`, entityID, tagID, source, time.Now().UTC()); err != nil {
				return wrapDBError("AddTags: link", err)
			}
		}
		return touchTx(ctx, tx, entityID)
	})
}

func touchTx(ctx context.Context, tx *sql.Tx, entityID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE entities SET last_scan_at = ? WHERE id = ?`, time.Now().UTC(), entityID)
	return wrapDBError("touch", err)
}

func replaceTagsTx(ctx context.Context, tx *sql.Tx, entityID int64, names []string, source types.EntityTagSource) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_tags WHERE entity_id = ?`, entityID); err != nil {
		return wrapDBError("replaceTags: clear", err)
	}
	now := time.Now().UTC()
	for i, name := range names {
		tagID, err := upsertTagTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entity_tags (entity_id, tag_id, source, attached_at, seq)
			VALUES (?, ?, ?, ?, ?)
		`, entityID, tagID, source, now, i); err != nil {
			return wrapDBError("replaceTags: insert", err)
		}
	}
	return nil
}

// upsertTagTx reuses an existing Tag by exact name match or creates one.
// MySQL's unique-key conflict surfaces as error 1062 on the racing insert,
// same handling as the sqlite provider's SQLITE_CONSTRAINT_UNIQUE path.
func upsertTagTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, wrapDBError("upsertTag: lookup", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueConstraintError(err) {
			if qerr := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id); qerr == nil {
				return id, nil
			}
		}
		return 0, wrapDBError("upsertTag: insert", err)
	}
	return res.LastInsertId()
}

func listTagsByConn(ctx context.Context, q querier, entityID int64) ([]types.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN entity_tags et ON et.tag_id = t.id
		WHERE et.entity_id = ?
		ORDER BY et.seq ASC, et.attached_at ASC
	`, entityID)
	if err != nil {
		return nil, wrapDBError("listTags", err)
	}
	defer rows.Close()

	var tags []types.Tag
	for rows.Next() {
		var t types.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, wrapDBError("listTags: scan", err)
		}
		tags = append(tags, t)
	}
	return tags, wrapDBError("listTags: rows", rows.Err())
}
