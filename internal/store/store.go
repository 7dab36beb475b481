// Package store provides the SQLite-backed content store: posts,
// categories, tags, users, and media references.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	username     TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	system       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
	id          TEXT PRIMARY KEY,
	slug        TEXT NOT NULL,
	type        TEXT NOT NULL,
	name        TEXT NOT NULL DEFAULT '',
	parent_id   TEXT NOT NULL DEFAULT '',
	sort        INTEGER NOT NULL DEFAULT 0,
	icon        TEXT NOT NULL DEFAULT '',
	hidden      INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	cover_id    TEXT NOT NULL DEFAULT '',
	UNIQUE(slug, type)
);

CREATE TABLE IF NOT EXISTS tags (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	slug TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS media (
	id          TEXT PRIMARY KEY,
	filename    TEXT NOT NULL,
	path        TEXT NOT NULL UNIQUE,
	hash        TEXT NOT NULL DEFAULT '',
	uploaded_by TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_media_hash ON media(hash);

CREATE TABLE IF NOT EXISTS posts (
	id             TEXT PRIMARY KEY,
	slug           TEXT NOT NULL UNIQUE,
	title          TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT 'article',
	status         TEXT NOT NULL DEFAULT 'draft',
	source_path    TEXT NOT NULL DEFAULT '',
	category_id    TEXT NOT NULL DEFAULT '',
	author_id      TEXT NOT NULL DEFAULT '',
	cover_id       TEXT NOT NULL DEFAULT '',
	body           TEXT NOT NULL DEFAULT '',
	rendered       TEXT NOT NULL DEFAULT '',
	excerpt        TEXT NOT NULL DEFAULT '',
	seo_title      TEXT NOT NULL DEFAULT '',
	seo_desc       TEXT NOT NULL DEFAULT '',
	seo_keywords   TEXT NOT NULL DEFAULT '',
	featured       INTEGER NOT NULL DEFAULT 0,
	allow_comments INTEGER NOT NULL DEFAULT 1,
	rich_content   INTEGER NOT NULL DEFAULT 0,
	date           DATETIME,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_posts_source_path ON posts(source_path);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);

CREATE TABLE IF NOT EXISTS post_tags (
	post_id TEXT NOT NULL,
	tag_id  TEXT NOT NULL,
	UNIQUE(post_id, tag_id)
);
`

// DB wraps a sql.DB with content-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
