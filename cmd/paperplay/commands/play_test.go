// ABOUTME: Tests for play command structure and terminal rendering
// ABOUTME: Verifies flags, selection prompting, and per-kind turn output

package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/harper/paperplay/internal/models"
)

func TestNewPlayCmd(t *testing.T) {
	cmd := NewPlayCmd()

	if !strings.HasPrefix(cmd.Use, "play") {
		t.Errorf("Use = %q, want prefix %q", cmd.Use, "play")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}

	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
}

func TestPlayCmd_Flags(t *testing.T) {
	cmd := NewPlayCmd()

	tests := []struct {
		flagName string
		defValue string
	}{
		{"mode", "interactive"},
		{"auto-strategy", "first"},
		{"no-remote", "false"},
		{"export", ""},
		{"max-chunks", "0"},
		{"regenerate", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}

			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestPlayCmd_Examples(t *testing.T) {
	cmd := NewPlayCmd()

	expectedParts := []string{
		"paperplay play",
		"--mode auto",
		"--export",
	}

	for _, part := range expectedParts {
		if !strings.Contains(cmd.Long, part) {
			t.Errorf("Long description should contain %q", part)
		}
	}
}

func TestReadSelection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		count   int
		want    int
		wantErr bool
	}{
		{
			name:  "first option",
			input: "1\n",
			count: 3,
			want:  0,
		},
		{
			name:  "last option",
			input: "3\n",
			count: 3,
			want:  2,
		},
		{
			name:  "retries until valid",
			input: "0\nseven\n9\n2\n",
			count: 4,
			want:  1,
		},
		{
			name:  "whitespace tolerated",
			input: "  2 \n",
			count: 2,
			want:  1,
		},
		{
			name:    "eof before valid input",
			input:   "nope\n",
			count:   2,
			wantErr: true,
		},
		{
			name:    "empty input",
			input:   "",
			count:   2,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := readSelection(bufio.NewReader(strings.NewReader(tt.input)), &out, tt.count)

			if tt.wantErr {
				if err == nil {
					t.Fatal("readSelection() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("readSelection() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readSelection() = %d, want %d", got, tt.want)
			}
			if !strings.Contains(out.String(), fmt.Sprintf("Choose 1-%d", tt.count)) {
				t.Errorf("prompt should show the option range, got %q", out.String())
			}
		})
	}
}

func TestReadSelection_RetryMessage(t *testing.T) {
	var out bytes.Buffer
	got, err := readSelection(bufio.NewReader(strings.NewReader("5\n1\n")), &out, 2)
	if err != nil {
		t.Fatalf("readSelection() error = %v", err)
	}
	if got != 0 {
		t.Errorf("readSelection() = %d, want 0", got)
	}
	if !strings.Contains(out.String(), "Enter a number between 1 and 2") {
		t.Errorf("out-of-range input should print a retry hint, got %q", out.String())
	}
}

func TestRenderTurn(t *testing.T) {
	tests := []struct {
		name string
		turn models.Turn
		want []string
	}{
		{
			name: "narration",
			turn: models.Turn{Kind: models.TurnNarration, Text: "The lab hums quietly."},
			want: []string{"The lab hums quietly."},
		},
		{
			name: "dialogue shows speaker and emotion",
			turn: models.Turn{Kind: models.TurnDialogue, Speaker: "Nana", Emotion: models.EmotionHappy, Text: "Ready to read?"},
			want: []string{"Nana (happy): Ready to read?"},
		},
		{
			name: "quiz options are numbered from 1",
			turn: models.Turn{
				Kind:         models.TurnQuiz,
				Question:     "What does the encoder emit?",
				Options:      []string{"tokens", "vectors"},
				CorrectIndex: 1,
			},
			want: []string{"Quiz: What does the encoder emit?", "1) tokens", "2) vectors"},
		},
		{
			name: "choice options are numbered from 1",
			turn: models.Turn{
				Kind:   models.TurnChoice,
				Prompt: "Which path?",
				Choices: []models.ChoiceOption{
					{Text: "Theory", Effect: "rigorous"},
					{Text: "Examples"},
				},
			},
			want: []string{"Which path?", "1) Theory", "2) Examples"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			renderTurn(&out, &tt.turn)

			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output should contain %q, got:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRenderOutcome(t *testing.T) {
	quiz := models.Turn{
		Kind:         models.TurnQuiz,
		Question:     "Pick",
		Options:      []string{"alpha", "beta"},
		CorrectIndex: 1,
		Explanation:  "Beta because of the second section.",
	}

	t.Run("correct quiz answer", func(t *testing.T) {
		var out bytes.Buffer
		renderOutcome(&out, &quiz, &models.Selection{
			Kind:        models.TurnQuiz,
			OptionIndex: 1,
			OptionText:  "beta",
			Correct:     true,
		})

		if !strings.Contains(out.String(), "✓ Correct: beta") {
			t.Errorf("correct answer output wrong, got %q", out.String())
		}
		if !strings.Contains(out.String(), "Beta because of the second section.") {
			t.Error("explanation should be printed after a quiz answer")
		}
	})

	t.Run("incorrect quiz answer names the right one", func(t *testing.T) {
		var out bytes.Buffer
		renderOutcome(&out, &quiz, &models.Selection{
			Kind:        models.TurnQuiz,
			OptionIndex: 0,
			OptionText:  "alpha",
			Correct:     false,
		})

		if !strings.Contains(out.String(), "✗ Not quite. The answer was beta") {
			t.Errorf("incorrect answer output wrong, got %q", out.String())
		}
	})

	t.Run("choice with effect tag", func(t *testing.T) {
		choice := models.Turn{
			Kind:    models.TurnChoice,
			Prompt:  "Which path?",
			Choices: []models.ChoiceOption{{Text: "Theory", Effect: "rigorous"}, {Text: "Examples"}},
		}

		var out bytes.Buffer
		renderOutcome(&out, &choice, &models.Selection{
			Kind:        models.TurnChoice,
			OptionIndex: 0,
			OptionText:  "Theory",
			Effect:      "rigorous",
		})

		if !strings.Contains(out.String(), "You chose Theory [rigorous]") {
			t.Errorf("choice outcome output wrong, got %q", out.String())
		}
	})
}

func TestRenderChunkHeader(t *testing.T) {
	t.Run("with title", func(t *testing.T) {
		var out bytes.Buffer
		renderChunkHeader(&out, models.Chunk{Ordinal: 1, Title: "Methods"})

		if !strings.Contains(out.String(), "=== Chunk 1: Methods ===") {
			t.Errorf("header output wrong, got %q", out.String())
		}
	})

	t.Run("without title", func(t *testing.T) {
		var out bytes.Buffer
		renderChunkHeader(&out, models.Chunk{Ordinal: 0})

		if !strings.Contains(out.String(), "=== Chunk 0 ===") {
			t.Errorf("header output wrong, got %q", out.String())
		}
	})
}
