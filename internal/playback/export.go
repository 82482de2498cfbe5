// ABOUTME: Export of a session's play history to YAML, JSON, or Markdown
// ABOUTME: Format is chosen by the output file extension
package playback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/paperplay/internal/models"
)

// ExportData is the complete serialized history of one session
type ExportData struct {
	Version     string        `yaml:"version" json:"version"`
	ExportedAt  string        `yaml:"exported_at" json:"exported_at"`
	Tool        string        `yaml:"tool" json:"tool"`
	Document    string        `yaml:"document" json:"document"`
	Fingerprint string        `yaml:"fingerprint" json:"fingerprint"`
	SessionID   string        `yaml:"session_id" json:"session_id"`
	Mode        string        `yaml:"mode" json:"mode"`
	State       string        `yaml:"state" json:"state"`
	Chunks      []ExportChunk `yaml:"chunks" json:"chunks"`
}

// ExportChunk groups the played turns of one chunk ordinal
type ExportChunk struct {
	Ordinal int          `yaml:"ordinal" json:"ordinal"`
	Title   string       `yaml:"title,omitempty" json:"title,omitempty"`
	Turns   []ExportTurn `yaml:"turns" json:"turns"`
}

// ExportTurn is one consumed turn plus its resolution when interactive
type ExportTurn struct {
	Index     int              `yaml:"index" json:"index"`
	Kind      string           `yaml:"kind" json:"kind"`
	Speaker   string           `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Emotion   string           `yaml:"emotion,omitempty" json:"emotion,omitempty"`
	Text      string           `yaml:"text,omitempty" json:"text,omitempty"`
	Question  string           `yaml:"question,omitempty" json:"question,omitempty"`
	Prompt    string           `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Options   []string         `yaml:"options,omitempty" json:"options,omitempty"`
	Selection *ExportSelection `yaml:"selection,omitempty" json:"selection,omitempty"`
}

// ExportSelection records how an interactive turn was resolved
type ExportSelection struct {
	OptionIndex int    `yaml:"option_index" json:"option_index"`
	OptionText  string `yaml:"option_text" json:"option_text"`
	Correct     *bool  `yaml:"correct,omitempty" json:"correct,omitempty"`
	Effect      string `yaml:"effect,omitempty" json:"effect,omitempty"`
}

// BuildExport serializes a session snapshot, grouping history by chunk
// ordinal. Valid at any point in a session's life, including mid-chunk.
func BuildExport(session models.PlaybackSession, chunks []models.Chunk) *ExportData {
	data := &ExportData{
		Version:     "1.0",
		ExportedAt:  time.Now().Format(time.RFC3339),
		Tool:        "paperplay",
		Document:    session.Document,
		Fingerprint: session.Fingerprint,
		SessionID:   session.ID,
		Mode:        string(session.Mode),
		State:       string(session.State),
	}

	titles := make(map[int]string, len(chunks))
	for _, chunk := range chunks {
		titles[chunk.Ordinal] = chunk.Title
	}

	for _, played := range session.History {
		if len(data.Chunks) == 0 || data.Chunks[len(data.Chunks)-1].Ordinal != played.ChunkOrdinal {
			data.Chunks = append(data.Chunks, ExportChunk{
				Ordinal: played.ChunkOrdinal,
				Title:   titles[played.ChunkOrdinal],
			})
		}
		group := &data.Chunks[len(data.Chunks)-1]
		group.Turns = append(group.Turns, exportTurn(played))
	}

	return data
}

func exportTurn(played models.PlayedTurn) ExportTurn {
	turn := played.Turn
	out := ExportTurn{
		Index: played.TurnIndex,
		Kind:  string(turn.Kind),
	}

	switch turn.Kind {
	case models.TurnDialogue:
		out.Speaker = turn.Speaker
		out.Emotion = string(turn.Emotion)
		out.Text = turn.Text
	case models.TurnNarration:
		out.Text = turn.Text
	case models.TurnQuiz:
		out.Question = turn.Question
		out.Options = turn.Options
	case models.TurnChoice:
		out.Prompt = turn.Prompt
		for _, opt := range turn.Choices {
			out.Options = append(out.Options, opt.Text)
		}
	}

	if sel := played.Selection; sel != nil {
		exported := &ExportSelection{
			OptionIndex: sel.OptionIndex,
			OptionText:  sel.OptionText,
			Effect:      sel.Effect,
		}
		if sel.Kind == models.TurnQuiz {
			correct := sel.Correct
			exported.Correct = &correct
		}
		out.Selection = exported
	}

	return out
}

// WriteExport writes the export to a file, picking the format from the
// extension: .yaml/.yml, .json, or .md/.markdown.
func WriteExport(data *ExportData, outputPath string) error {
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".yaml", ".yml":
		return writeYAML(data, outputPath)
	case ".json":
		return writeJSON(data, outputPath)
	case ".md", ".markdown":
		return writeMarkdown(data, outputPath)
	}
	return fmt.Errorf("unsupported export extension %q (want .yaml, .json, or .md)", filepath.Ext(outputPath))
}

func createExportFile(outputPath string) (*os.File, error) {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}

func writeYAML(data *ExportData, outputPath string) error {
	file, err := createExportFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

func writeJSON(data *ExportData, outputPath string) error {
	file, err := createExportFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeMarkdown(data *ExportData, outputPath string) error {
	file, err := createExportFile(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Play History - %s\n\n", data.Document)
	_, _ = fmt.Fprintf(file, "Session: %s  \n", data.SessionID)
	_, _ = fmt.Fprintf(file, "Exported: %s  \n", data.ExportedAt)
	_, _ = fmt.Fprintf(file, "State: %s\n\n", data.State)

	for _, chunk := range data.Chunks {
		if chunk.Title != "" {
			_, _ = fmt.Fprintf(file, "## Chunk %d: %s\n\n", chunk.Ordinal, chunk.Title)
		} else {
			_, _ = fmt.Fprintf(file, "## Chunk %d\n\n", chunk.Ordinal)
		}

		for _, turn := range chunk.Turns {
			switch turn.Kind {
			case string(models.TurnDialogue):
				_, _ = fmt.Fprintf(file, "**%s** *(%s)*: %s\n\n", turn.Speaker, turn.Emotion, turn.Text)
			case string(models.TurnNarration):
				_, _ = fmt.Fprintf(file, "*%s*\n\n", turn.Text)
			case string(models.TurnQuiz):
				_, _ = fmt.Fprintf(file, "**Quiz:** %s\n\n", turn.Question)
				writeOptions(file, turn)
				if sel := turn.Selection; sel != nil {
					verdict := "incorrect"
					if sel.Correct != nil && *sel.Correct {
						verdict = "correct"
					}
					_, _ = fmt.Fprintf(file, "**Answer:** %s (%s)\n\n", sel.OptionText, verdict)
				}
			case string(models.TurnChoice):
				_, _ = fmt.Fprintf(file, "**Choice:** %s\n\n", turn.Prompt)
				writeOptions(file, turn)
				if sel := turn.Selection; sel != nil {
					if sel.Effect != "" {
						_, _ = fmt.Fprintf(file, "**Pick:** %s [%s]\n\n", sel.OptionText, sel.Effect)
					} else {
						_, _ = fmt.Fprintf(file, "**Pick:** %s\n\n", sel.OptionText)
					}
				}
			}
		}

		_, _ = fmt.Fprintln(file, "---")
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

func writeOptions(file *os.File, turn ExportTurn) {
	for i, opt := range turn.Options {
		marker := " "
		if turn.Selection != nil && turn.Selection.OptionIndex == i {
			marker = "x"
		}
		_, _ = fmt.Fprintf(file, "- [%s] %s\n", marker, opt)
	}
	_, _ = fmt.Fprintln(file)
}
