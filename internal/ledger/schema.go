// Package ledger keeps an optional SQLite record of generation runs and the
// documentation files each run wrote. The pipeline only writes to it.
package ledger

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  DATETIME NOT NULL,
	log_path    TEXT NOT NULL,
	records     INTEGER NOT NULL DEFAULT 0,
	skipped     INTEGER NOT NULL DEFAULT 0,
	fallbacks   INTEGER NOT NULL DEFAULT 0,
	directories INTEGER NOT NULL DEFAULT 0,
	failures    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS docs (
	run_id    INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	directory TEXT NOT NULL,
	doc_path  TEXT NOT NULL DEFAULT '',
	commands  INTEGER NOT NULL DEFAULT 0,
	created   INTEGER NOT NULL DEFAULT 0,
	checksum  TEXT NOT NULL DEFAULT '',
	error     TEXT NOT NULL DEFAULT '',
	UNIQUE(run_id, directory)
);

CREATE INDEX IF NOT EXISTS idx_docs_run ON docs(run_id);
`

// DB wraps a sql.DB with ledger operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ledger: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
