// ABOUTME: GenerationError reports an exhausted script generation for one chunk
// ABOUTME: Carries the attempt count and the last raw backend response for diagnosis
package script

import "fmt"

// GenerationError means every generation attempt for a chunk produced output
// that could not be validated into a turn sequence. LastResponse holds the
// raw text of the final attempt so the failure can be inspected offline.
type GenerationError struct {
	ChunkOrdinal int
	Attempts     int
	LastResponse string
	Err          error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("script generation for chunk %d failed after %d attempts: %v", e.ChunkOrdinal, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
