// ABOUTME: Local fixed-window segmentation strategy
// ABOUTME: Splits extracted text into non-overlapping rune windows in document order
package segment

import "github.com/harper/paperplay/internal/models"

// DefaultWindowSize is the fallback chunk window size in runes
const DefaultWindowSize = 1400

// SplitWindows splits text into fixed-size, non-overlapping rune windows.
// Concatenating the returned chunk texts in order reproduces the input.
func SplitWindows(text string, windowSize int) []models.Chunk {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	runes := []rune(text)
	var chunks []models.Chunk
	for start := 0; start < len(runes); start += windowSize {
		end := start + windowSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Ordinal: len(chunks),
			Text:    string(runes[start:end]),
			Source:  models.SourceLocal,
		})
	}

	return chunks
}
