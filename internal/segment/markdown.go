// ABOUTME: Markdown section splitter for remote segmentation results
// ABOUTME: Splits OCR markdown on ATX headings into structure-preserving chunks
package segment

import (
	"strings"

	"github.com/harper/paperplay/internal/models"
)

type mdSection struct {
	title string
	text  string
}

// SplitSections splits markdown into chapter/section chunks at level-1 and
// level-2 ATX headings. Each chunk carries its heading as the structural
// title; content before the first heading becomes an untitled leading chunk.
// Sections longer than twice the window size are re-windowed while keeping
// their title. Joining the chunk texts in order reproduces the markdown.
func SplitSections(markdown string, windowSize int) []models.Chunk {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	maxSection := 2 * windowSize

	var chunks []models.Chunk
	for _, sec := range splitMarkdownSections(markdown) {
		runes := []rune(sec.text)
		if len(runes) <= maxSection {
			chunks = append(chunks, models.Chunk{
				Ordinal: len(chunks),
				Text:    sec.text,
				Source:  models.SourceRemote,
				Title:   sec.title,
			})
			continue
		}

		for start := 0; start < len(runes); start += windowSize {
			end := start + windowSize
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, models.Chunk{
				Ordinal: len(chunks),
				Text:    string(runes[start:end]),
				Source:  models.SourceRemote,
				Title:   sec.title,
			})
		}
	}

	return chunks
}

// splitMarkdownSections cuts markdown into sections at heading lines.
// Heading lines stay inside the section they open, so no input bytes are
// lost across the cut points.
func splitMarkdownSections(markdown string) []mdSection {
	lines := strings.SplitAfter(markdown, "\n")

	var sections []mdSection
	var buf strings.Builder
	title := ""

	flush := func() {
		if buf.Len() > 0 {
			sections = append(sections, mdSection{title: title, text: buf.String()})
			buf.Reset()
		}
	}

	for _, line := range lines {
		if heading, ok := headingTitle(line); ok {
			flush()
			title = heading
		}
		buf.WriteString(line)
	}
	flush()

	return sections
}

// headingTitle reports whether a line is a level-1 or level-2 ATX heading
// and returns its title text. Deeper headings stay inside their section.
func headingTitle(line string) (string, bool) {
	trimmed := strings.TrimRight(line, "\r\n")

	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 2 {
		return "", false
	}
	if level >= len(trimmed) || (trimmed[level] != ' ' && trimmed[level] != '\t') {
		return "", false
	}

	return strings.TrimSpace(trimmed[level:]), true
}
