package mysqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/arkohut/pensieve/internal/storage/dberr"
	"github.com/go-sql-driver/mysql"
)

// Sentinel errors are aliased from dberr so callers get the same set
// regardless of which provider storage.Open selected.
var (
	ErrNotFound        = dberr.ErrNotFound
	ErrConflict        = dberr.ErrConflict
	ErrInvalidArgument = dberr.ErrInvalidArgument
	ErrBackend         = dberr.ErrBackend
)

func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrBackend, err)
}

func isNotFound(err error) bool { return dberr.IsNotFound(err) }

// isUniqueConstraintError matches MySQL error 1062 (ER_DUP_ENTRY), the
// go-sql-driver/mysql equivalent of sqlite's SQLITE_CONSTRAINT_UNIQUE.
func isUniqueConstraintError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
