package sqlite

// schema is applied on every open (all statements are idempotent). Numbered
// migrations in migrations/ handle changes after the first release of a
// given table shape.
const schema = `
CREATE TABLE IF NOT EXISTS libraries (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_libraries_name_ci ON libraries(name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS folders (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    library_id        INTEGER NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
    path              TEXT NOT NULL,
    last_modified_at  DATETIME,
    type              TEXT NOT NULL DEFAULT 'default'
);
CREATE INDEX IF NOT EXISTS idx_folders_library ON folders(library_id);

CREATE TABLE IF NOT EXISTS entities (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    library_id        INTEGER NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
    folder_id         INTEGER NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
    filepath          TEXT NOT NULL,
    file_type_group   TEXT NOT NULL DEFAULT 'unknown',
    file_created_at   DATETIME NOT NULL,
    last_scan_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    size              INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_entities_filepath ON entities(filepath);
CREATE INDEX IF NOT EXISTS idx_entities_library ON entities(library_id);
CREATE INDEX IF NOT EXISTS idx_entities_folder ON entities(folder_id);
CREATE INDEX IF NOT EXISTS idx_entities_file_created_at ON entities(file_created_at);
CREATE INDEX IF NOT EXISTS idx_entities_type_group ON entities(file_type_group);

CREATE TABLE IF NOT EXISTS tags (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_name ON tags(name);

CREATE TABLE IF NOT EXISTS entity_tags (
    entity_id   INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    tag_id      INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    source      TEXT NOT NULL DEFAULT 'plugin_generated',
    attached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    seq         INTEGER,
    PRIMARY KEY (entity_id, tag_id)
);
CREATE INDEX IF NOT EXISTS idx_entity_tags_tag ON entity_tags(tag_id);

CREATE TABLE IF NOT EXISTS metadata_entries (
    entity_id   INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    key         TEXT NOT NULL,
    value       TEXT NOT NULL DEFAULT '',
    source      TEXT NOT NULL DEFAULT '',
    source_type TEXT NOT NULL DEFAULT '',
    data_type   TEXT NOT NULL DEFAULT 'text',
    seq         INTEGER,
    PRIMARY KEY (entity_id, key)
);

CREATE TABLE IF NOT EXISTS plugins (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    webhook_url TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_plugins_name_ci ON plugins(name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS library_plugins (
    library_id INTEGER NOT NULL REFERENCES libraries(id) ON DELETE CASCADE,
    plugin_id  INTEGER NOT NULL REFERENCES plugins(id) ON DELETE CASCADE,
    PRIMARY KEY (library_id, plugin_id)
);

CREATE TABLE IF NOT EXISTS entity_plugin_status (
    entity_id    INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    plugin_id    INTEGER NOT NULL REFERENCES plugins(id) ON DELETE CASCADE,
    processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (entity_id, plugin_id)
);

-- Lexical index. prefix indexes of length 2,3,4 per the persisted-schema
-- contract; id stays a plain unindexed column so we can filter/join before
-- ranking on the FTS5 rank column.
CREATE VIRTUAL TABLE IF NOT EXISTS entities_fts USING fts5(
    id UNINDEXED,
    filepath,
    tags,
    metadata,
    tokenize = 'unicode61',
    prefix = '2 3 4'
);

-- Vector index. Materialized as a plain table (see DESIGN.md: no vector
-- extension binding exists in the dependency graph) with embedding stored
-- as a packed little-endian float32 blob and ranked in Go by cosine
-- distance. file_created_at_date is the partition-pruning key.
CREATE TABLE IF NOT EXISTS entities_vec_v2 (
    rowid                      INTEGER PRIMARY KEY,
    embedding                  BLOB NOT NULL,
    file_type_group            TEXT NOT NULL DEFAULT 'unknown',
    created_at_timestamp       INTEGER NOT NULL,
    file_created_at_timestamp  INTEGER NOT NULL,
    file_created_at_date       TEXT NOT NULL,
    app_name                   TEXT NOT NULL DEFAULT 'unknown',
    library_id                 INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vec_partition ON entities_vec_v2(file_created_at_date);
CREATE INDEX IF NOT EXISTS idx_vec_library ON entities_vec_v2(library_id);

-- Generic key/value config, mirroring the teacher's config table shape.
CREATE TABLE IF NOT EXISTS config (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
