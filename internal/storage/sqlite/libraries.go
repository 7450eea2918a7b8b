package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arkohut/pensieve/internal/types"
)

// CreateLibrary inserts a library, failing with ErrConflict if the name
// collides case-insensitively with an existing one.
func (s *SQLiteStorage) CreateLibrary(ctx context.Context, name string) (*types.Library, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO libraries (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("CreateLibrary(%q): %w", name, ErrConflict)
		}
		return nil, wrapDBError("CreateLibrary", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapDBError("CreateLibrary: last insert id", err)
	}
	return &types.Library{ID: id, Name: name}, nil
}

// GetLibrary fetches a library by id.
func (s *SQLiteStorage) GetLibrary(ctx context.Context, id int64) (*types.Library, error) {
	var lib types.Library
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM libraries WHERE id = ?`, id).Scan(&lib.ID, &lib.Name)
	if err != nil {
		return nil, wrapDBError("GetLibrary", err)
	}
	return &lib, nil
}

// GetLibraryByName looks up a library case-insensitively.
func (s *SQLiteStorage) GetLibraryByName(ctx context.Context, name string) (*types.Library, error) {
	var lib types.Library
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM libraries WHERE name = ? COLLATE NOCASE`, name).Scan(&lib.ID, &lib.Name)
	if err != nil {
		return nil, wrapDBError("GetLibraryByName", err)
	}
	return &lib, nil
}

// ListLibraries returns all libraries ordered by name.
func (s *SQLiteStorage) ListLibraries(ctx context.Context) ([]*types.Library, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM libraries ORDER BY name ASC`)
	if err != nil {
		return nil, wrapDBError("ListLibraries", err)
	}
	defer rows.Close()

	var out []*types.Library
	for rows.Next() {
		lib := &types.Library{}
		if err := rows.Scan(&lib.ID, &lib.Name); err != nil {
			return nil, wrapDBError("ListLibraries: scan", err)
		}
		out = append(out, lib)
	}
	return out, wrapDBError("ListLibraries: rows", rows.Err())
}

// CreateFolder registers a filesystem root under a library.
func (s *SQLiteStorage) CreateFolder(ctx context.Context, libraryID int64, path string, folderType types.FolderType) (*types.Folder, error) {
	if folderType == "" {
		folderType = types.FolderDefault
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO folders (library_id, path, type) VALUES (?, ?, ?)
	`, libraryID, path, folderType)
	if err != nil {
		return nil, wrapDBError("CreateFolder", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapDBError("CreateFolder: last insert id", err)
	}
	return &types.Folder{ID: id, LibraryID: libraryID, Path: path, Type: folderType}, nil
}

// ListFolders returns all folders in a library.
func (s *SQLiteStorage) ListFolders(ctx context.Context, libraryID int64) ([]*types.Folder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, library_id, path, last_modified_at, type FROM folders WHERE library_id = ?
	`, libraryID)
	if err != nil {
		return nil, wrapDBError("ListFolders", err)
	}
	defer rows.Close()

	var out []*types.Folder
	for rows.Next() {
		f := &types.Folder{}
		var lastMod sql.NullTime
		if err := rows.Scan(&f.ID, &f.LibraryID, &f.Path, &lastMod, &f.Type); err != nil {
			return nil, wrapDBError("ListFolders: scan", err)
		}
		if lastMod.Valid {
			f.LastModifiedAt = lastMod.Time
		}
		out = append(out, f)
	}
	return out, wrapDBError("ListFolders: rows", rows.Err())
}
