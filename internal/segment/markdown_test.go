// ABOUTME: Tests for the markdown section splitter
// ABOUTME: Verifies heading boundaries, titles, re-windowing, and exact coverage
package segment

import (
	"strings"
	"testing"

	"github.com/harper/paperplay/internal/models"
)

const sampleMarkdown = `Preamble before any heading.

# Chapter One

First chapter text.

## Section 1.1

Subsection text with detail.

### Deep heading stays inside

More text under the deep heading.

# Chapter Two

Second chapter text.
`

func TestSplitSections_HeadingBoundaries(t *testing.T) {
	chunks := SplitSections(sampleMarkdown, 4000)

	if len(chunks) != 4 {
		t.Fatalf("SplitSections() returned %d chunks, want 4", len(chunks))
	}

	wantTitles := []string{"", "Chapter One", "Section 1.1", "Chapter Two"}
	for i, want := range wantTitles {
		if chunks[i].Title != want {
			t.Errorf("chunk %d Title = %q, want %q", i, chunks[i].Title, want)
		}
	}

	// The preamble chunk holds everything before the first heading
	if !strings.Contains(chunks[0].Text, "Preamble") {
		t.Error("chunk 0 should contain the preamble text")
	}
	// Level-3 headings do not open a new chunk
	if !strings.Contains(chunks[2].Text, "Deep heading stays inside") {
		t.Error("level-3 heading should stay inside its section chunk")
	}
	// Heading lines stay in the chunk they open
	if !strings.HasPrefix(chunks[1].Text, "# Chapter One") {
		t.Errorf("chunk 1 should start with its heading line, got %q", firstLine(chunks[1].Text))
	}

	for i, chunk := range chunks {
		if chunk.Source != models.SourceRemote {
			t.Errorf("chunk %d Source = %v, want %v", i, chunk.Source, models.SourceRemote)
		}
	}
}

func TestSplitSections_ExactCoverage(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
	}{
		{name: "mixed headings", markdown: sampleMarkdown},
		{name: "no headings", markdown: "plain text\nwith lines\nand no structure"},
		{name: "starts with heading", markdown: "# Title\nbody text\n"},
		{name: "no trailing newline", markdown: "# Title\nbody without newline"},
		{name: "hash without space is not a heading", markdown: "#tag line\ncontent\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitSections(tt.markdown, 4000)

			if err := models.ValidateChunkSequence(chunks); err != nil {
				t.Fatalf("ValidateChunkSequence() error = %v", err)
			}

			var joined strings.Builder
			for _, chunk := range chunks {
				joined.WriteString(chunk.Text)
			}
			if joined.String() != tt.markdown {
				t.Errorf("joined chunk texts do not reproduce the input:\ngot  %q\nwant %q", joined.String(), tt.markdown)
			}
		})
	}
}

func TestSplitSections_OversizedSectionRewindows(t *testing.T) {
	body := strings.Repeat("long section body text ", 100)
	markdown := "# Big Chapter\n" + body

	windowSize := 200
	chunks := SplitSections(markdown, windowSize)

	if len(chunks) < 2 {
		t.Fatalf("oversized section should re-window, got %d chunks", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Title != "Big Chapter" {
			t.Errorf("chunk %d Title = %q, want 'Big Chapter'", i, chunk.Title)
		}
		if len([]rune(chunk.Text)) > windowSize {
			t.Errorf("chunk %d has %d runes, want <= %d", i, len([]rune(chunk.Text)), windowSize)
		}
	}

	var joined strings.Builder
	for _, chunk := range chunks {
		joined.WriteString(chunk.Text)
	}
	if joined.String() != markdown {
		t.Error("re-windowed chunks do not reproduce the input")
	}
}

func TestSplitSections_SmallSectionStaysWhole(t *testing.T) {
	// A section under twice the window size is kept intact to preserve
	// structure even though it exceeds one window
	body := strings.Repeat("x", 300)
	markdown := "# Chapter\n" + body

	chunks := SplitSections(markdown, 200)
	if len(chunks) != 1 {
		t.Fatalf("section under 2x window should stay whole, got %d chunks", len(chunks))
	}
}

func TestSplitSections_Empty(t *testing.T) {
	chunks := SplitSections("", 200)
	if len(chunks) != 0 {
		t.Errorf("SplitSections(\"\") returned %d chunks, want 0", len(chunks))
	}
}

func TestHeadingTitle(t *testing.T) {
	tests := []struct {
		line      string
		wantTitle string
		wantOK    bool
	}{
		{line: "# Chapter\n", wantTitle: "Chapter", wantOK: true},
		{line: "## Section Name\n", wantTitle: "Section Name", wantOK: true},
		{line: "### Too deep\n", wantOK: false},
		{line: "#NoSpace\n", wantOK: false},
		{line: "plain text\n", wantOK: false},
		{line: "#\n", wantOK: false},
		{line: "#  Padded Title  \n", wantTitle: "Padded Title", wantOK: true},
	}

	for _, tt := range tests {
		title, ok := headingTitle(tt.line)
		if ok != tt.wantOK {
			t.Errorf("headingTitle(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if ok && title != tt.wantTitle {
			t.Errorf("headingTitle(%q) = %q, want %q", tt.line, title, tt.wantTitle)
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
