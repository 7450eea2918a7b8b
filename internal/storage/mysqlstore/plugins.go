package mysqlstore

import (
	"context"
	"fmt"

	"github.com/arkohut/pensieve/internal/types"
)

func (s *Store) CreatePlugin(ctx context.Context, p types.Plugin) (*types.Plugin, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO plugins (name, description, webhook_url) VALUES (?, ?, ?)
	`, p.Name, p.Description, p.WebhookURL)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("CreatePlugin(%q): %w", p.Name, ErrConflict)
		}
		return nil, wrapDBError("CreatePlugin", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapDBError("CreatePlugin: last insert id", err)
	}
	p.ID = id
	return &p, nil
}

func (s *Store) BindPlugin(ctx context.Context, libraryID, pluginID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT IGNORE INTO library_plugins (library_id, plugin_id) VALUES (?, ?)
	`, libraryID, pluginID)
	return wrapDBError("BindPlugin", err)
}

func (s *Store) RecordProcessed(ctx context.Context, entityID, pluginID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT IGNORE INTO entity_plugin_status (entity_id, plugin_id) VALUES (?, ?)
	`, entityID, pluginID)
	return wrapDBError("RecordProcessed", err)
}

func (s *Store) GetPendingPlugins(ctx context.Context, entityID, libraryID int64) ([]*types.Plugin, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.webhook_url
		FROM plugins p
		JOIN library_plugins lp ON lp.plugin_id = p.id
		WHERE lp.library_id = ?
		  AND NOT EXISTS (
		      SELECT 1 FROM entity_plugin_status eps
		      WHERE eps.plugin_id = p.id AND eps.entity_id = ?
		  )
		ORDER BY p.id ASC
	`, libraryID, entityID)
	if err != nil {
		return nil, wrapDBError("GetPendingPlugins", err)
	}
	defer rows.Close()

	var out []*types.Plugin
	for rows.Next() {
		p := &types.Plugin{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.WebhookURL); err != nil {
			return nil, wrapDBError("GetPendingPlugins: scan", err)
		}
		out = append(out, p)
	}
	return out, wrapDBError("GetPendingPlugins: rows", rows.Err())
}
