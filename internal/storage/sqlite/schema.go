// ABOUTME: SQLite database schema for the segmentation and script caches
// ABOUTME: Creates all tables and indexes for local storage
package sqlite

// Schema contains all SQL statements for database initialization.
// Chunks are written in the same transaction as their documents row,
// so a cache entry is always either fully present or absent.
const Schema = `
-- Segmented documents, keyed by content fingerprint
CREATE TABLE IF NOT EXISTS documents (
    fingerprint TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    strategy TEXT NOT NULL CHECK (strategy IN ('remote', 'local')),
    chunk_count INTEGER NOT NULL,
    segmented_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Ordered chunks produced by segmenting a document
CREATE TABLE IF NOT EXISTS chunks (
    fingerprint TEXT NOT NULL REFERENCES documents(fingerprint) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    text TEXT NOT NULL,
    source TEXT NOT NULL CHECK (source IN ('remote', 'local')),
    title TEXT DEFAULT '',
    PRIMARY KEY (fingerprint, ordinal)
);

-- Generated scripts per chunk, turns stored as a JSON array
CREATE TABLE IF NOT EXISTS scripts (
    fingerprint TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('pending', 'generated', 'failed')),
    turns TEXT DEFAULT '[]',
    model TEXT DEFAULT '',
    attempts INTEGER DEFAULT 0,
    generated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (fingerprint, ordinal)
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_chunks_fingerprint ON chunks(fingerprint);
CREATE INDEX IF NOT EXISTS idx_scripts_fingerprint ON scripts(fingerprint);
CREATE INDEX IF NOT EXISTS idx_scripts_status ON scripts(status);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
