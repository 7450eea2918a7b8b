//go:build cgo

package mysqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	embedded "github.com/dolthub/driver"
)

// embeddedDatabase is the fixed Dolt database name used for the embedded
// variant; there is only ever one per directory, so it needs no
// configuration.
const embeddedDatabase = "capidx"

const embeddedOpenMaxElapsed = 30 * time.Second

func newEmbeddedOpenBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = embeddedOpenMaxElapsed
	return bo
}

// NewEmbedded opens a zero-install, in-process Dolt database rooted at dir
// (a filesystem directory, not a connection DSN) using
// github.com/dolthub/driver. storage.Open selects this path for a
// dolt://<path> URL with no user/host part, so local development needs no
// running dolt sql-server. Grounded on the teacher's
// internal/storage/dolt/store_embedded.go embedded-mode constructor.
func NewEmbedded(ctx context.Context, dir string) (*Store, error) {
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		return nil, fmt.Errorf("NewEmbedded: %q is a file, not a directory", dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("NewEmbedded: creating database directory: %w", err)
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("NewEmbedded: resolving absolute path: %w", err)
	}

	// The catalog DSN (no ?database=) is used once to create the database;
	// the store DSN selects it for every subsequent connection.
	catalogDSN := fmt.Sprintf("file://%s?commitname=capidx&commitemail=capidx@local", absPath)
	storeDSN := fmt.Sprintf("file://%s?commitname=capidx&commitemail=capidx@local&database=%s", absPath, embeddedDatabase)

	if err := withEmbeddedDolt(catalogDSN, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", embeddedDatabase))
		return err
	}); err != nil {
		return nil, fmt.Errorf("NewEmbedded: creating database: %w", err)
	}

	db, connector, err := openEmbeddedConnection(storeDSN)
	if err != nil {
		return nil, err
	}

	// Embedded Dolt derives a session context from the connector's first
	// Connect call and reuses it across statements; a caller context
	// canceled shortly after New() returns would poison the pool, so the
	// first ping deliberately uses Background.
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		connector.Close()
		return nil, fmt.Errorf("NewEmbedded: pinging embedded dolt: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			connector.Close()
			return nil, fmt.Errorf("NewEmbedded: applying schema: %w", err)
		}
	}

	return &Store{db: db, embeddedConnector: connector}, nil
}

// withEmbeddedDolt opens a short-lived embedded connection against dsn, runs
// fn, and tears the connection down. Used for the one-shot CREATE DATABASE
// step, which needs its own connector scoped to the database-less catalog
// DSN rather than the store's long-lived one.
func withEmbeddedDolt(dsn string, fn func(*sql.DB) error) error {
	openCfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parsing embedded dolt DSN: %w", err)
	}
	openCfg.BackOff = newEmbeddedOpenBackoff()

	connector, err := embedded.NewConnector(openCfg)
	if err != nil {
		return fmt.Errorf("creating embedded dolt connector: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()
	defer connector.Close()

	return fn(db)
}

func openEmbeddedConnection(dsn string) (*sql.DB, *embedded.Connector, error) {
	openCfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing embedded dolt DSN: %w", err)
	}
	openCfg.BackOff = newEmbeddedOpenBackoff()

	connector, err := embedded.NewConnector(openCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedded dolt connector: %w", err)
	}
	db := sql.OpenDB(connector)
	// The embedded engine is single-writer; a pool wider than one
	// connection just serializes on its internal lock anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, connector, nil
}
