package migrations

import (
	"database/sql"
	"fmt"
)

// MigratePluginWebhookURLColumn adds webhook_url to plugins for databases
// created before webhook dispatch existed. schema.go already creates new
// databases with the column; this covers upgrades in place.
func MigratePluginWebhookURLColumn(db *sql.DB) error {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('plugins') WHERE name = 'webhook_url'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking for webhook_url column: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := db.Exec(`ALTER TABLE plugins ADD COLUMN webhook_url TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("adding webhook_url column: %w", err)
	}
	return nil
}
