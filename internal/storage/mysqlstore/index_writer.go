package mysqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/arkohut/pensieve/internal/embedding"
	"github.com/arkohut/pensieve/internal/storage/dberr"
	"github.com/arkohut/pensieve/internal/types"
)

// UpdateEntityIndex mirrors the sqlite provider's index writer: the FTS
// mirror columns are rewritten unconditionally, the vector row is replaced
// fresh, and an unavailable embedder leaves the vector side stale rather
// than failing the whole write.
func (s *Store) UpdateEntityIndex(ctx context.Context, embedder embedding.Embedder, entityID int64) error {
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

// BatchUpdateEntityIndices applies the same skip-if-fresh policy as the
// sqlite provider: an entity needs re-embedding only if its last_scan_at is
// strictly after the existing vector row's created_at_timestamp, or it has
// no vector row at all.
func (s *Store) BatchUpdateEntityIndices(ctx context.Context, embedder embedding.Embedder, entityIDs []int64) error {
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
		return &dberr.MissingEntities{IDs: missing}
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

func (s *Store) vectorFreshness(ctx context.Context, entityID int64, lastScanAt time.Time) (fresh bool, createdAt time.Time, err error) {
	var ts int64
	err = s.db.QueryRowContext(ctx, `SELECT created_at_timestamp FROM entities_vec_v2 WHERE row_id = ?`, entityID).Scan(&ts)
	if err == sql.ErrNoRows {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, wrapDBError("vectorFreshness", err)
	}
	createdAt = time.Unix(0, ts).UTC()
	return !lastScanAt.After(createdAt), createdAt, nil
}

// upsertFTSRowTx rewrites the denormalized FTS mirror columns on the entity
// row itself, since MySQL FULLTEXT indexes live on real columns rather than
// a separate virtual table.
func upsertFTSRowTx(ctx context.Context, tx *sql.Tx, entityID int64, filepath, tags, metadata string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE entities SET filepath = ?, fts_tags = ?, fts_metadata = ? WHERE id = ?
	`, filepath, tags, metadata, entityID)
	return wrapDBError("upsertFTSRow", err)
}

func writeVectorRowTx(ctx context.Context, tx *sql.Tx, e *types.Entity, vector []float32) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities_vec_v2 WHERE row_id = ?`, e.ID); err != nil {
		return wrapDBError("writeVectorRow: clear", err)
	}
	now := time.Now().UTC()
	fileCreatedAt := e.FileCreatedAt
	_, err := tx.ExecContext(ctx, `
		INSERT INTO entities_vec_v2 (
			row_id, embedding, file_type_group, created_at_timestamp,
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
