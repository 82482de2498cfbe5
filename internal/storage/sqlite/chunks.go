// ABOUTME: Chunk cache storage operations for SQLite
// ABOUTME: Persists segmentation results keyed by document fingerprint
package sqlite

import (
	"database/sql"
	"time"

	"github.com/harper/paperplay/internal/models"
)

// DocumentInfo summarizes a cached segmentation entry
type DocumentInfo struct {
	Fingerprint string
	Name        string
	Strategy    models.ChunkSource
	ChunkCount  int
	SegmentedAt time.Time
}

// ChunkStore handles chunk cache persistence
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// SaveChunks replaces the cached segmentation for a document in a single
// transaction. Any previously cached entry for the fingerprint is removed.
func (s *ChunkStore) SaveChunks(fingerprint, name string, strategy models.ChunkSource, chunks []models.Chunk) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Deleting the documents row cascades to any existing chunks
	if _, err := tx.Exec("DELETE FROM documents WHERE fingerprint = ?", fingerprint); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT INTO documents (fingerprint, name, strategy, chunk_count, segmented_at)
		VALUES (?, ?, ?, ?, ?)
	`, fingerprint, name, string(strategy), len(chunks), time.Now())
	if err != nil {
		return err
	}

	for _, chunk := range chunks {
		_, err := tx.Exec(`
			INSERT INTO chunks (fingerprint, ordinal, text, source, title)
			VALUES (?, ?, ?, ?, ?)
		`, fingerprint, chunk.Ordinal, chunk.Text, string(chunk.Source), chunk.Title)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadChunks retrieves the cached segmentation for a document.
// The second return value reports which strategy produced the entry, and
// the third reports whether an entry exists at all.
func (s *ChunkStore) LoadChunks(fingerprint string) ([]models.Chunk, models.ChunkSource, bool, error) {
	var strategy string
	err := s.db.QueryRow(
		"SELECT strategy FROM documents WHERE fingerprint = ?", fingerprint,
	).Scan(&strategy)
	if err == sql.ErrNoRows {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, err
	}

	rows, err := s.db.Query(`
		SELECT ordinal, text, source, title
		FROM chunks
		WHERE fingerprint = ?
		ORDER BY ordinal ASC
	`, fingerprint)
	if err != nil {
		return nil, "", false, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var source string
		if err := rows.Scan(&chunk.Ordinal, &chunk.Text, &source, &chunk.Title); err != nil {
			return nil, "", false, err
		}
		chunk.Source = models.ChunkSource(source)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, "", false, err
	}

	return chunks, models.ChunkSource(strategy), true, nil
}

// DeleteDocument removes a cached segmentation and all of its chunks
func (s *ChunkStore) DeleteDocument(fingerprint string) error {
	_, err := s.db.Exec("DELETE FROM documents WHERE fingerprint = ?", fingerprint)
	return err
}

// ListDocuments returns all cached segmentation entries, newest first
func (s *ChunkStore) ListDocuments() ([]DocumentInfo, error) {
	rows, err := s.db.Query(`
		SELECT fingerprint, name, strategy, chunk_count, segmented_at
		FROM documents
		ORDER BY segmented_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []DocumentInfo
	for rows.Next() {
		var (
			info     DocumentInfo
			strategy string
		)
		err := rows.Scan(&info.Fingerprint, &info.Name, &strategy,
			&info.ChunkCount, &info.SegmentedAt)
		if err != nil {
			return nil, err
		}
		info.Strategy = models.ChunkSource(strategy)
		docs = append(docs, info)
	}

	return docs, rows.Err()
}
