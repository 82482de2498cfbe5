// ABOUTME: Chunk represents one ordered slice of a document's extracted text
// ABOUTME: Produced by the segmentation gateway, consumed by the script engine
package models

import "fmt"

// ChunkSource identifies the segmentation strategy that produced a chunk
type ChunkSource string

const (
	SourceRemote ChunkSource = "remote"
	SourceLocal  ChunkSource = "local"
)

// Chunk is an immutable span of document text. Ordinals are 0-based and
// contiguous; concatenating chunk texts in ordinal order reproduces the
// strategy's extracted text exactly.
type Chunk struct {
	Ordinal int         `json:"ordinal"`
	Text    string      `json:"text"`
	Source  ChunkSource `json:"source"`
	Title   string      `json:"title,omitempty"`
}

// ValidateChunkSequence checks the ordinal contiguity invariant
func ValidateChunkSequence(chunks []Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("chunk sequence is empty")
	}
	for i, c := range chunks {
		if c.Ordinal != i {
			return fmt.Errorf("chunk at position %d has ordinal %d, want %d", i, c.Ordinal, i)
		}
		if c.Text == "" {
			return fmt.Errorf("chunk %d has empty text", i)
		}
		if c.Source != SourceRemote && c.Source != SourceLocal {
			return fmt.Errorf("chunk %d has unknown source %q", i, c.Source)
		}
	}
	return nil
}
