// ABOUTME: Script cache storage operations for SQLite
// ABOUTME: Persists generated turn scripts keyed by fingerprint and chunk ordinal
package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/harper/paperplay/internal/models"
)

// ScriptStore handles script cache persistence
type ScriptStore struct {
	db *DB
}

// NewScriptStore creates a new ScriptStore
func NewScriptStore(db *DB) *ScriptStore {
	return &ScriptStore{db: db}
}

// Save upserts a generated or failed script for a chunk
func (s *ScriptStore) Save(script *models.ChunkScript) error {
	turnsJSON, err := json.Marshal(script.Turns)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO scripts (fingerprint, ordinal, status, turns, model, attempts, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint, ordinal) DO UPDATE SET
			status = excluded.status,
			turns = excluded.turns,
			model = excluded.model,
			attempts = excluded.attempts,
			generated_at = excluded.generated_at
	`, script.DocumentFingerprint, script.ChunkOrdinal, string(script.Status),
		string(turnsJSON), script.Model, script.Attempts, script.GeneratedAt)

	return err
}

// Load retrieves the cached script for a chunk, or nil when none exists
func (s *ScriptStore) Load(fingerprint string, ordinal int) (*models.ChunkScript, error) {
	var (
		script    models.ChunkScript
		status    string
		turnsJSON sql.NullString
	)

	err := s.db.QueryRow(`
		SELECT fingerprint, ordinal, status, turns, model, attempts, generated_at
		FROM scripts
		WHERE fingerprint = ? AND ordinal = ?
	`, fingerprint, ordinal).Scan(&script.DocumentFingerprint, &script.ChunkOrdinal,
		&status, &turnsJSON, &script.Model, &script.Attempts, &script.GeneratedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	script.Status = models.ScriptStatus(status)
	if turnsJSON.Valid && turnsJSON.String != "" {
		if err := json.Unmarshal([]byte(turnsJSON.String), &script.Turns); err != nil {
			return nil, err
		}
	}

	return &script, nil
}

// ListByDocument retrieves all cached scripts for a document in chunk order
func (s *ScriptStore) ListByDocument(fingerprint string) ([]models.ChunkScript, error) {
	rows, err := s.db.Query(`
		SELECT fingerprint, ordinal, status, turns, model, attempts, generated_at
		FROM scripts
		WHERE fingerprint = ?
		ORDER BY ordinal ASC
	`, fingerprint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var scripts []models.ChunkScript
	for rows.Next() {
		var (
			script    models.ChunkScript
			status    string
			turnsJSON sql.NullString
		)

		err := rows.Scan(&script.DocumentFingerprint, &script.ChunkOrdinal,
			&status, &turnsJSON, &script.Model, &script.Attempts, &script.GeneratedAt)
		if err != nil {
			return nil, err
		}

		script.Status = models.ScriptStatus(status)
		if turnsJSON.Valid && turnsJSON.String != "" {
			if err := json.Unmarshal([]byte(turnsJSON.String), &script.Turns); err != nil {
				return nil, err
			}
		}

		scripts = append(scripts, script)
	}

	return scripts, rows.Err()
}

// DeleteByDocument removes all cached scripts for a document
func (s *ScriptStore) DeleteByDocument(fingerprint string) error {
	_, err := s.db.Exec("DELETE FROM scripts WHERE fingerprint = ?", fingerprint)
	return err
}
