package migrations

import (
	"database/sql"
	"fmt"
)

// MigratePopulateFTS rebuilds entities_fts from the entities table when the
// FTS table is created against a database that already has rows (schema.go
// runs CREATE VIRTUAL TABLE unconditionally; it does not backfill).
func MigratePopulateFTS(db *sql.DB) error {
	var entityCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM entities").Scan(&entityCount); err != nil {
		return fmt.Errorf("counting entities: %w", err)
	}
	if entityCount == 0 {
		return nil
	}

	var ftsCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM entities_fts").Scan(&ftsCount); err != nil {
		return fmt.Errorf("counting entities_fts: %w", err)
	}
	if ftsCount > 0 {
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO entities_fts (id, filepath, tags, metadata)
		SELECT id, filepath, '', '' FROM entities
	`)
	if err != nil {
		return fmt.Errorf("backfilling entities_fts: %w", err)
	}
	return nil
}
