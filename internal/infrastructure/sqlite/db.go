// Package sqlite implements the domain repositories on SQLite using the
// pure-Go ncruces driver. One database file holds both the session
// history and the recovery snapshots.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	completed_at INTEGER,
	hold_duration_seconds REAL NOT NULL DEFAULT 0,
	preparation_rounds INTEGER NOT NULL DEFAULT 0,
	protocol_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC);

CREATE TABLE IF NOT EXISTS snapshots (
	session_id TEXT PRIMARY KEY,
	saved_at INTEGER NOT NULL,
	interrupted_at INTEGER NOT NULL,
	cause TEXT NOT NULL,
	state TEXT NOT NULL
);
`

// DB wraps the SQLite connection and hands out repositories bound to it.
type DB struct {
	conn *sql.DB
}

// NewDB opens (or creates) the database at path, applies the pragmas the
// app relies on, and ensures the schema exists. The parent directory is
// created with 0700 if missing.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Debug(log.CatDB, "database opened", "path", path)
	return &DB{conn: conn}, nil
}

// Records returns the session record repository backed by this database.
func (d *DB) Records() domain.RecordRepository {
	return newRecordRepository(d.conn)
}

// Snapshots returns the recovery snapshot repository backed by this
// database.
func (d *DB) Snapshots() domain.SnapshotRepository {
	return newSnapshotRepository(d.conn)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
