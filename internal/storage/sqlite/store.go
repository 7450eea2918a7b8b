// Package sqlite is the embedded, single-file storage provider: relational
// metadata in ordinary tables, a lexical index in an FTS5 virtual table, and
// a vector index in a plain table ranked in Go (see schema.go).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Pool defaults per the concurrency model: 10 base / 20 overflow / 60s
// checkout / 1h recycle.
const (
	defaultMaxOpenConns    = 30
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = time.Hour
	defaultCheckoutTimeout = 60 * time.Second
)

// SQLiteStorage is the embedded provider backing internal/storage.Storage.
type SQLiteStorage struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// New opens (creating if necessary) the SQLite-backed store at dbPath,
// applies the schema, and runs any pending migrations.
func New(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	return newStore(ctx, dbPath, false, defaultCheckoutTimeout)
}

// NewWithTimeout is New with an explicit busy/checkout timeout, used by
// callers that need tighter control over lock contention (e.g. batch
// indexing against a live ingestion process).
func NewWithTimeout(ctx context.Context, dbPath string, timeout time.Duration) (*SQLiteStorage, error) {
	return newStore(ctx, dbPath, false, timeout)
}

// NewReadOnlyWithTimeout opens the store in read-only mode: schema creation
// and migrations are skipped, writes fail at the driver level.
func NewReadOnlyWithTimeout(ctx context.Context, dbPath string, timeout time.Duration) (*SQLiteStorage, error) {
	return newStore(ctx, dbPath, true, timeout)
}

func newStore(ctx context.Context, dbPath string, readOnly bool, timeout time.Duration) (*SQLiteStorage, error) {
	if dbPath != ":memory:" && !isInMemoryURI(dbPath) {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", dbPath, timeout.Milliseconds())
	if readOnly {
		dsn += "&_pragma=query_only(1)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &SQLiteStorage{db: db, path: dbPath, readOnly: readOnly}

	if !readOnly {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
		if err := RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

func isInMemoryURI(dbPath string) bool {
	return len(dbPath) >= 5 && dbPath[:5] == "file:"
}

// Close releases the underlying connection pool.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// UnderlyingDB exposes the raw *sql.DB for tooling and tests that need to
// run ad-hoc queries against the same schema.
func (s *SQLiteStorage) UnderlyingDB() *sql.DB {
	return s.db
}

// SetConfig upserts a key/value pair into the generic config table.
func (s *SQLiteStorage) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return wrapDBErrorf(err, "SetConfig(%s)", key)
}

// GetConfig reads a single config value. Returns ErrNotFound if absent.
func (s *SQLiteStorage) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", wrapDBErrorf(err, "GetConfig(%s)", key)
	}
	return value, nil
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error (including a panic, which is re-raised after rollback).
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
