package mysqlstore

// schemaStatements is applied statement-by-statement on every open (each is
// idempotent). InnoDB throughout for foreign-key and transaction support;
// default collation is case-insensitive so library/plugin name uniqueness
// needs no COLLATE clause, unlike the sqlite schema.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS libraries (
		id   BIGINT PRIMARY KEY AUTO_INCREMENT,
		name VARCHAR(512) NOT NULL,
		UNIQUE KEY idx_libraries_name (name)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS folders (
		id               BIGINT PRIMARY KEY AUTO_INCREMENT,
		library_id       BIGINT NOT NULL,
		path             VARCHAR(2048) NOT NULL,
		last_modified_at DATETIME(6),
		type             VARCHAR(32) NOT NULL DEFAULT 'default',
		KEY idx_folders_library (library_id),
		CONSTRAINT fk_folders_library FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS entities (
		id              BIGINT PRIMARY KEY AUTO_INCREMENT,
		library_id      BIGINT NOT NULL,
		folder_id       BIGINT NOT NULL,
		filepath        VARCHAR(2048) NOT NULL,
		file_type_group VARCHAR(32) NOT NULL DEFAULT 'unknown',
		file_created_at DATETIME(6) NOT NULL,
		last_scan_at    DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		size            BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY idx_entities_filepath (filepath(768)),
		KEY idx_entities_library (library_id),
		KEY idx_entities_folder (folder_id),
		KEY idx_entities_file_created_at (file_created_at),
		KEY idx_entities_type_group (file_type_group),
		FULLTEXT KEY idx_entities_filepath_fts (filepath),
		CONSTRAINT fk_entities_library FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE,
		CONSTRAINT fk_entities_folder FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS tags (
		id   BIGINT PRIMARY KEY AUTO_INCREMENT,
		name VARCHAR(512) NOT NULL,
		UNIQUE KEY idx_tags_name (name)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS entity_tags (
		entity_id   BIGINT NOT NULL,
		tag_id      BIGINT NOT NULL,
		source      VARCHAR(32) NOT NULL DEFAULT 'plugin_generated',
		attached_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		seq         INT,
		PRIMARY KEY (entity_id, tag_id),
		KEY idx_entity_tags_tag (tag_id),
		CONSTRAINT fk_entity_tags_entity FOREIGN KEY (entity_id) REFERENCES entities(id) ON DELETE CASCADE,
		CONSTRAINT fk_entity_tags_tag FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	// tags/metadata are mirrored as plain TEXT columns on the entity row
	// (denormalized at write time) purely to give the FULLTEXT index
	// something to rank against, since MySQL FULLTEXT cannot span a joined
	// child table the way FTS5's auxiliary columns can.
	`ALTER TABLE entities ADD COLUMN IF NOT EXISTS fts_tags TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE entities ADD COLUMN IF NOT EXISTS fts_metadata TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS metadata_entries (
		entity_id   BIGINT NOT NULL,
		` + "`key`" + ` VARCHAR(256) NOT NULL,
		value       TEXT NOT NULL,
		source      VARCHAR(128) NOT NULL DEFAULT '',
		source_type VARCHAR(32) NOT NULL DEFAULT '',
		data_type   VARCHAR(32) NOT NULL DEFAULT 'text',
		seq         INT,
		PRIMARY KEY (entity_id, ` + "`key`" + `),
		CONSTRAINT fk_metadata_entity FOREIGN KEY (entity_id) REFERENCES entities(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS plugins (
		id          BIGINT PRIMARY KEY AUTO_INCREMENT,
		name        VARCHAR(256) NOT NULL,
		description TEXT NOT NULL,
		webhook_url VARCHAR(2048) NOT NULL DEFAULT '',
		UNIQUE KEY idx_plugins_name (name)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS library_plugins (
		library_id BIGINT NOT NULL,
		plugin_id  BIGINT NOT NULL,
		PRIMARY KEY (library_id, plugin_id),
		CONSTRAINT fk_lp_library FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE,
		CONSTRAINT fk_lp_plugin FOREIGN KEY (plugin_id) REFERENCES plugins(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS entity_plugin_status (
		entity_id    BIGINT NOT NULL,
		plugin_id    BIGINT NOT NULL,
		processed_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (entity_id, plugin_id),
		CONSTRAINT fk_eps_entity FOREIGN KEY (entity_id) REFERENCES entities(id) ON DELETE CASCADE,
		CONSTRAINT fk_eps_plugin FOREIGN KEY (plugin_id) REFERENCES plugins(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	// Vector index: same shape as the sqlite provider's entities_vec_v2 —
	// packed little-endian float32 BLOB, ranked in Go by cosine distance.
	// No MySQL-native vector type exists in the dependency graph either
	// (MySQL 9's VECTOR type predates no driver in this pack), so the
	// no-ANN-library stance from the sqlite provider carries over unchanged.
	`CREATE TABLE IF NOT EXISTS entities_vec_v2 (
		row_id                    BIGINT PRIMARY KEY,
		embedding                 LONGBLOB NOT NULL,
		file_type_group           VARCHAR(32) NOT NULL DEFAULT 'unknown',
		created_at_timestamp      BIGINT NOT NULL,
		file_created_at_timestamp BIGINT NOT NULL,
		file_created_at_date      VARCHAR(10) NOT NULL,
		app_name                  VARCHAR(256) NOT NULL DEFAULT 'unknown',
		library_id                BIGINT NOT NULL,
		KEY idx_vec_partition (file_created_at_date),
		KEY idx_vec_library (library_id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS config (
		` + "`key`" + `   VARCHAR(256) PRIMARY KEY,
		value TEXT NOT NULL
	) ENGINE=InnoDB`,
}
