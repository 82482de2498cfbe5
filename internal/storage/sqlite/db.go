// ABOUTME: SQLite lifecycle for the segmentation and script caches
// ABOUTME: Pure-Go driver, WAL journaling, schema applied on open
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// fileOptions are the pragmas for the on-disk database. WAL lets the
// prefetcher write a script row while the playback path reads chunks;
// foreign keys make document deletion cascade to chunk rows.
const fileOptions = "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"

// DB owns one SQLite connection pool and its file path.
type DB struct {
	conn *sql.DB
	path string
}

// DefaultDataDir resolves the cache directory: $XDG_DATA_HOME/paperplay,
// falling back to ~/.local/share/paperplay.
func DefaultDataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "paperplay")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".local", "share", "paperplay")
	}
	return filepath.Join(home, ".local", "share", "paperplay")
}

// DefaultDBPath returns the database file inside the default data dir.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "paperplay.db")
}

// Open creates the data directory if needed and opens or creates the cache
// database at path, applying the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return open(path+fileOptions, path, 0)
}

// OpenInMemory opens a private in-memory database, used by tests and the
// benchmark harness.
func OpenInMemory() (*DB, error) {
	// every new connection to :memory: is a separate empty database, so
	// the pool is capped at a single connection
	return open(":memory:?_pragma=foreign_keys(ON)", ":memory:", 1)
}

func open(dsn, path string, maxConns int) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if maxConns > 0 {
		conn.SetMaxOpenConns(maxConns)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.Exec(Schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &DB{conn: conn, path: path}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Conn exposes the underlying pool for callers that need it directly.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the database file path, or ":memory:".
func (db *DB) Path() string {
	return db.path
}

// Exec runs a statement that returns no rows.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query runs a statement that returns rows.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow runs a statement expected to return at most one row.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Begin starts a transaction.
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}
