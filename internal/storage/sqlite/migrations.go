// Package sqlite - database migrations
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/arkohut/pensieve/internal/storage/sqlite/migrations"
)

// Migration represents a single database migration
type Migration struct {
	Name string
	Func func(*sql.DB) error
}

// migrationsList is the ordered list of all migrations to run. Migrations
// are idempotent and run in order during database initialization.
var migrationsList = []Migration{
	{"populate_fts", migrations.MigratePopulateFTS},
	{"plugin_webhook_url_column", migrations.MigratePluginWebhookURLColumn},
}

// MigrationInfo contains metadata about a migration for inspection.
type MigrationInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListMigrations returns all registered migrations with descriptions.
// All are idempotent, so this is not a "pending migrations" list.
func ListMigrations() []MigrationInfo {
	result := make([]MigrationInfo, len(migrationsList))
	for i, m := range migrationsList {
		result[i] = MigrationInfo{
			Name:        m.Name,
			Description: getMigrationDescription(m.Name),
		}
	}
	return result
}

func getMigrationDescription(name string) string {
	descriptions := map[string]string{
		"populate_fts":              "Backfills entities_fts for databases that predate the FTS table",
		"plugin_webhook_url_column": "Adds webhook_url column to plugins for in-place upgrades",
	}
	if desc, ok := descriptions[name]; ok {
		return desc
	}
	return "Unknown migration"
}

// RunMigrations executes all registered migrations in order, under an
// EXCLUSIVE transaction so concurrent process starts cannot race on
// check-then-modify schema changes.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec("PRAGMA foreign_keys = OFF")
	if err != nil {
		return fmt.Errorf("failed to disable foreign keys for migrations: %w", err)
	}
	defer func() { _, _ = db.Exec("PRAGMA foreign_keys = ON") }()

	_, err = db.Exec("BEGIN EXCLUSIVE")
	if err != nil {
		return fmt.Errorf("failed to acquire exclusive lock for migrations: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_, _ = db.Exec("ROLLBACK")
		}
	}()

	for _, migration := range migrationsList {
		if err := migration.Func(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
	}

	if _, err := db.Exec("COMMIT"); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}
	committed = true

	return nil
}
