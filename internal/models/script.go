// ABOUTME: ChunkScript is the validated turn sequence generated for one chunk
// ABOUTME: Tracks generation status, attempts, and the producing model
package models

import (
	"fmt"
	"time"
)

// ScriptStatus is the lifecycle state of a chunk's script
type ScriptStatus string

const (
	ScriptPending   ScriptStatus = "pending"
	ScriptGenerated ScriptStatus = "generated"
	ScriptFailed    ScriptStatus = "failed"
)

// ChunkScript belongs to exactly one chunk of one document. Once status is
// generated the turn sequence never mutates in place; regeneration replaces
// the script wholesale.
type ChunkScript struct {
	DocumentFingerprint string       `json:"document_fingerprint"`
	ChunkOrdinal        int          `json:"chunk_ordinal"`
	Status              ScriptStatus `json:"status"`
	Turns               []Turn       `json:"turns,omitempty"`
	Model               string       `json:"model,omitempty"`
	Attempts            int          `json:"attempts"`
	GeneratedAt         time.Time    `json:"generated_at"`
}

// Validate checks the script's turns against the invariants a generated
// script must hold
func (s *ChunkScript) Validate() error {
	if s.Status != ScriptGenerated {
		return fmt.Errorf("script for chunk %d has status %q, want %q", s.ChunkOrdinal, s.Status, ScriptGenerated)
	}
	if len(s.Turns) == 0 {
		return fmt.Errorf("script for chunk %d has no turns", s.ChunkOrdinal)
	}
	for i := range s.Turns {
		if err := s.Turns[i].Validate(); err != nil {
			return fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return nil
}
