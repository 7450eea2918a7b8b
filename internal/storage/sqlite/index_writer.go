package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/arkohut/pensieve/internal/embedding"
	"github.com/arkohut/pensieve/internal/types"
)

// UpdateEntityIndex renders and writes both secondary indexes for a single
// entity: the FTS row is upserted unconditionally, the vector row is
// deleted and reinserted fresh. If the embedder is unavailable, the FTS
// write still commits and the vector side is left stale/skipped, per the
// EmbeddingUnavailable policy.
func (s *SQLiteStorage) UpdateEntityIndex(ctx context.Context, embedder embedding.Embedder, entityID int64) error {
	e, err := s.GetEntity(ctx, entityID)
	if err != nil {
		return err
	}

	tagsBlob, metadataBlob := renderFTSDocument(e)
	vectorText := renderVectorInput(e)

	var vectors [][]float32
	if embedder != nil {
		vectors, err = embedder.Embed(ctx, []string{vectorText})
		if err != nil && err != embedding.ErrUnavailable {
			return err
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertFTSRowTx(ctx, tx, e.ID, e.Filepath, tagsBlob, metadataBlob); err != nil {
			return err
		}
		if len(vectors) == 1 {
			if err := writeVectorRowTx(ctx, tx, e, vectors[0]); err != nil {
				return err
			}
		}
		return nil
	})
}

// BatchUpdateEntityIndices indexes many entities in one transaction.
// skip-if-fresh: only entities whose last_scan_at is newer than the
// existing vector row's created_at_timestamp (or that have no vector row
// at all) get a fresh embedding computed; the rest keep their existing
// vector row untouched. The FTS row is always rewritten for every
// requested entity. Fails with ErrMissingEntities if any id is absent from
// the primary store; the whole batch then rolls back.
func (s *SQLiteStorage) BatchUpdateEntityIndices(ctx context.Context, embedder embedding.Embedder, entityIDs []int64) error {
	entities := make([]*entityWithFreshness, 0, len(entityIDs))
	var missing []int64

	for _, id := range entityIDs {
		e, err := s.GetEntity(ctx, id)
		if isNotFound(err) {
			missing = append(missing, id)
			continue
		}
		if err != nil {
			return err
		}
		fresh, existingCreatedAt, err := s.vectorFreshness(ctx, id, e.LastScanAt)
		if err != nil {
			return err
		}
		entities = append(entities, &entityWithFreshness{entity: e, needsReindex: !fresh, existingCreatedAt: existingCreatedAt})
	}
	if len(missing) > 0 {
		return &ErrMissingEntities{IDs: missing}
	}

	toEmbed := make([]string, 0, len(entities))
	indices := make([]int, 0, len(entities))
	for i, ent := range entities {
		if ent.needsReindex {
			toEmbed = append(toEmbed, renderVectorInput(ent.entity))
			indices = append(indices, i)
		}
	}

	var vectors [][]float32
	if len(toEmbed) > 0 && embedder != nil {
		var err error
		vectors, err = embedder.Embed(ctx, toEmbed)
		if err != nil && err != embedding.ErrUnavailable {
			return err
		}
	}
	for i, idx := range indices {
		if i < len(vectors) {
			entities[idx].vector = vectors[i]
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, ent := range entities {
			tagsBlob, metadataBlob := renderFTSDocument(ent.entity)
			if err := upsertFTSRowTx(ctx, tx, ent.entity.ID, ent.entity.Filepath, tagsBlob, metadataBlob); err != nil {
				return err
			}
			if ent.needsReindex && ent.vector != nil {
				if err := writeVectorRowTx(ctx, tx, ent.entity, ent.vector); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

type entityWithFreshness struct {
	entity            *types.Entity
	needsReindex      bool
	existingCreatedAt time.Time
	vector            []float32
}

func (s *SQLiteStorage) vectorFreshness(ctx context.Context, entityID int64, lastScanAt time.Time) (fresh bool, createdAt time.Time, err error) {
	var ts int64
	err = s.db.QueryRowContext(ctx, `SELECT created_at_timestamp FROM entities_vec_v2 WHERE rowid = ?`, entityID).Scan(&ts)
	if err == sql.ErrNoRows {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, wrapDBError("vectorFreshness", err)
	}
	createdAt = time.Unix(0, ts).UTC()
	return !lastScanAt.After(createdAt), createdAt, nil
}

func upsertFTSRowTx(ctx context.Context, tx *sql.Tx, entityID int64, filepath, tags, metadata string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities_fts WHERE id = ?`, entityID); err != nil {
		return wrapDBError("upsertFTSRow: clear", err)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entities_fts (id, filepath, tags, metadata) VALUES (?, ?, ?, ?)
	`, entityID, filepath, tags, metadata)
	return wrapDBError("upsertFTSRow: insert", err)
}

func writeVectorRowTx(ctx context.Context, tx *sql.Tx, e *types.Entity, vector []float32) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities_vec_v2 WHERE rowid = ?`, e.ID); err != nil {
		return wrapDBError("writeVectorRow: clear", err)
	}
	now := time.Now().UTC()
	fileCreatedAt := e.FileCreatedAt
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entities_vec_v2 (
			rowid, embedding, file_type_group, created_at_timestamp,
			file_created_at_timestamp, file_created_at_date, app_name, library_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, encodeVector(vector), fallbackType(e.FileTypeGroup), now.UnixNano(),
		fileCreatedAt.Unix(), fileCreatedAt.Format("2006-01-02"), appNameOf(e), e.LibraryID)
	return wrapDBError("writeVectorRow: insert", err)
}

func fallbackType(group string) string {
	if group == "" {
		return "unknown"
	}
	return group
}
