package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arkohut/pensieve/internal/types"
)

// CreateEntity mirrors the sqlite provider's entity-plus-tags-plus-metadata
// insert, translated to MySQL's INSERT IGNORE / LAST_INSERT_ID() idiom.
func (s *Store) CreateEntity(ctx context.Context, libraryID int64, payload types.EntityPayload) (*types.Entity, error) {
	var entity *types.Entity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM libraries WHERE id = ?`, libraryID).Scan(&exists); err != nil {
			return wrapDBError("CreateEntity: check library", err)
		}
		if exists == 0 {
			return fmt.Errorf("CreateEntity: library %d: %w", libraryID, ErrNotFound)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO entities (library_id, folder_id, filepath, file_type_group, file_created_at, last_scan_at, size)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, libraryID, payload.FolderID, payload.Filepath, payload.FileTypeGroup, payload.FileCreatedAt, now, payload.Size)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("CreateEntity: filepath %q: %w", payload.Filepath, ErrConflict)
			}
			return wrapDBError("CreateEntity: insert", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return wrapDBError("CreateEntity: last insert id", err)
		}

		if err := replaceTagsTx(ctx, tx, id, payload.Tags, types.TagSourcePluginGenerated); err != nil {
			return err
		}
		if err := replaceMetadataTx(ctx, tx, id, payload.MetadataEntries); err != nil {
			return err
		}

		entity, err = getEntityTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Store) GetEntity(ctx context.Context, id int64) (*types.Entity, error) {
	return getEntityByConn(ctx, s.db, "id = ?", id)
}

func (s *Store) GetEntityByFilepath(ctx context.Context, filepath string) (*types.Entity, error) {
	return getEntityByConn(ctx, s.db, "filepath = ?", filepath)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getEntityByConn(ctx context.Context, q querier, where string, arg interface{}) (*types.Entity, error) {
	row := q.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, library_id, folder_id, filepath, file_type_group, file_created_at, last_scan_at, size
		FROM entities WHERE %s
	`, where), arg)

	e := &types.Entity{}
	if err := row.Scan(&e.ID, &e.LibraryID, &e.FolderID, &e.Filepath, &e.FileTypeGroup, &e.FileCreatedAt, &e.LastScanAt, &e.Size); err != nil {
		return nil, wrapDBError("GetEntity", err)
	}

	tags, err := listTagsByConn(ctx, q, e.ID)
	if err != nil {
		return nil, err
	}
	e.Tags = tags

	meta, err := listMetadataByConn(ctx, q, e.ID)
	if err != nil {
		return nil, err
	}
	e.Metadata = meta

	return e, nil
}

func getEntityTx(ctx context.Context, tx *sql.Tx, id int64) (*types.Entity, error) {
	return getEntityByConn(ctx, tx, "id = ?", id)
}

func (s *Store) ListEntities(ctx context.Context, filters types.SearchFilters) ([]*types.Entity, error) {
	clause, args := buildFilterClause(filters, "file_type_group = 'image'")
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id FROM entities WHERE %s ORDER BY file_created_at ASC
	`, clause), args...)
	if err != nil {
		return nil, wrapDBError("ListEntities", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	return hydrateIDs(ctx, s, ids)
}

func (s *Store) UpdateEntity(ctx context.Context, id int64, payload types.EntityPayload) (*types.Entity, error) {
	var entity *types.Entity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC()
		_, err := tx.ExecContext(ctx, `
			UPDATE entities SET
				folder_id = COALESCE(NULLIF(?, 0), folder_id),
				file_type_group = COALESCE(NULLIF(?, ''), file_type_group),
				size = CASE WHEN ? > 0 THEN ? ELSE size END,
				last_scan_at = ?
			WHERE id = ?
		`, payload.FolderID, payload.FileTypeGroup, payload.Size, payload.Size, now, id)
		if err != nil {
			return wrapDBError("UpdateEntity", err)
		}

		if payload.Tags != nil {
			if err := replaceTagsTx(ctx, tx, id, payload.Tags, types.TagSourcePluginGenerated); err != nil {
				return err
			}
		}
		if payload.MetadataEntries != nil {
			if err := replaceMetadataTx(ctx, tx, id, payload.MetadataEntries); err != nil {
				return err
			}
		}

		entity, err = getEntityTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if entity.ID == 0 {
			return fmt.Errorf("UpdateEntity: entity %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Store) TouchEntity(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE entities SET last_scan_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return wrapDBError("TouchEntity", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBError("TouchEntity: rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("TouchEntity: entity %d: %w", id, ErrNotFound)
	}
	return nil
}

// RemoveEntity relies on ON DELETE CASCADE for tags/metadata/plugin status;
// the FTS mirror columns and vector row are owned by the entities table and
// entities_vec_v2 respectively and are cleared explicitly.
func (s *Store) RemoveEntity(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entities_vec_v2 WHERE row_id = ?`, id); err != nil {
			return wrapDBError("RemoveEntity: vector", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
		if err != nil {
			return wrapDBError("RemoveEntity", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return wrapDBError("RemoveEntity: rows affected", err)
		}
		if n == 0 {
			return fmt.Errorf("RemoveEntity: entity %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (s *Store) GetEntityContext(ctx context.Context, libraryID, id int64, prev, next int) (before, after []*types.Entity, err error) {
	target, err := s.GetEntity(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	beforeRows, err := s.db.QueryContext(ctx, `
		SELECT id FROM entities
		WHERE library_id = ? AND (file_created_at < ? OR (file_created_at = ? AND id < ?))
		ORDER BY file_created_at DESC, id DESC
		LIMIT ?
	`, libraryID, target.FileCreatedAt, target.FileCreatedAt, id, prev)
	if err != nil {
		return nil, nil, wrapDBError("GetEntityContext: before", err)
	}
	beforeIDs, err := scanIDs(beforeRows)
	if err != nil {
		return nil, nil, err
	}
	for i, j := 0, len(beforeIDs)-1; i < j; i, j = i+1, j-1 {
		beforeIDs[i], beforeIDs[j] = beforeIDs[j], beforeIDs[i]
	}

	afterRows, err := s.db.QueryContext(ctx, `
		SELECT id FROM entities
		WHERE library_id = ? AND (file_created_at > ? OR (file_created_at = ? AND id > ?))
		ORDER BY file_created_at ASC, id ASC
		LIMIT ?
	`, libraryID, target.FileCreatedAt, target.FileCreatedAt, id, next)
	if err != nil {
		return nil, nil, wrapDBError("GetEntityContext: after", err)
	}
	afterIDs, err := scanIDs(afterRows)
	if err != nil {
		return nil, nil, err
	}

	before, err = hydrateIDs(ctx, s, beforeIDs)
	if err != nil {
		return nil, nil, err
	}
	after, err = hydrateIDs(ctx, s, afterIDs)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("scanIDs", err)
		}
		ids = append(ids, id)
	}
	return ids, wrapDBError("scanIDs: rows", rows.Err())
}

func hydrateIDs(ctx context.Context, s *Store, ids []int64) ([]*types.Entity, error) {
	out := make([]*types.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetEntity(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func buildFilterClause(f types.SearchFilters, base string) (string, []interface{}) {
	return buildFilterClauseAliased(f, base, "entities")
}

func buildFilterClauseAliased(f types.SearchFilters, base, entityAlias string) (string, []interface{}) {
	clause := base
	var args []interface{}

	if len(f.LibraryIDs) > 0 {
		placeholders := ""
		for i, id := range f.LibraryIDs {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, id)
		}
		clause += fmt.Sprintf(" AND %s.library_id IN (%s)", entityAlias, placeholders)
	}
	if f.Start != nil {
		clause += fmt.Sprintf(" AND %s.file_created_at >= ?", entityAlias)
		args = append(args, *f.Start)
	}
	if f.End != nil {
		clause += fmt.Sprintf(" AND %s.file_created_at <= ?", entityAlias)
		args = append(args, *f.End)
	}
	if len(f.AppNames) > 0 {
		placeholders := ""
		for i, name := range f.AppNames {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, name)
		}
		clause += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM metadata_entries me
			WHERE me.entity_id = %s.id AND me.`+"`key`"+` = '%s' AND me.value IN (%s)
		)`, entityAlias, types.MetadataKeyActiveApp, placeholders)
	}
	return clause, args
}
