// ABOUTME: Tests for the raw-response-to-turns validation boundary
// ABOUTME: Covers fence stripping, answer-form resolution, and element-indexed failures
package script

import (
	"strings"
	"testing"

	"github.com/harper/paperplay/internal/models"
)

const validScriptJSON = `[
  {"type": "narration", "text": "The lab is quiet tonight."},
  {"type": "dialogue", "speaker": "Nana", "emotion": "happy", "text": "This section is actually fun!"},
  {"type": "quiz", "question": "What does the encoder produce?", "options": ["A context vector", "A loss value", "A gradient"], "correct_index": 0, "explanation": "It compresses the input into one vector."},
  {"type": "choice", "prompt": "Which angle should we dig into?", "options": [{"text": "The math", "effect": "rigorous"}, {"text": "The intuition", "effect": "curious"}]}
]`

func TestParseTurns_ValidScript(t *testing.T) {
	turns, err := ParseTurns(validScriptJSON)
	if err != nil {
		t.Fatalf("ParseTurns() error = %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("ParseTurns() returned %d turns, want 4", len(turns))
	}

	wantKinds := []models.TurnKind{models.TurnNarration, models.TurnDialogue, models.TurnQuiz, models.TurnChoice}
	for i, kind := range wantKinds {
		if turns[i].Kind != kind {
			t.Errorf("turn %d kind = %q, want %q", i, turns[i].Kind, kind)
		}
	}

	if turns[1].Speaker != "Nana" {
		t.Errorf("dialogue speaker = %q, want Nana", turns[1].Speaker)
	}
	if turns[1].Emotion != models.EmotionHappy {
		t.Errorf("dialogue emotion = %q, want happy", turns[1].Emotion)
	}
	if turns[2].CorrectIndex != 0 {
		t.Errorf("quiz correct index = %d, want 0", turns[2].CorrectIndex)
	}
	if turns[2].Explanation == "" {
		t.Error("quiz explanation was dropped")
	}
	if got := turns[3].Choices[1].Effect; got != "curious" {
		t.Errorf("choice effect = %q, want curious", got)
	}
}

func TestParseTurns_ToleratedWrappers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json code fence", "```json\n" + validScriptJSON + "\n```"},
		{"bare code fence", "```\n" + validScriptJSON + "\n```"},
		{"prose around array", "Here is the script you asked for:\n" + validScriptJSON + "\nHave fun!"},
		{"leading whitespace", "\n\n  " + validScriptJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns, err := ParseTurns(tt.raw)
			if err != nil {
				t.Fatalf("ParseTurns() error = %v", err)
			}
			if len(turns) != 4 {
				t.Errorf("ParseTurns() returned %d turns, want 4", len(turns))
			}
		})
	}
}

func TestParseTurns_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		errMsg string
	}{
		{
			name:   "no array at all",
			raw:    "I cannot produce a script for this text.",
			errMsg: "no JSON array found",
		},
		{
			name:   "broken array",
			raw:    `[{"type": "narration", "text": "a"},]`,
			errMsg: "not a JSON array",
		},
		{
			name:   "empty array",
			raw:    `[]`,
			errMsg: "turn list is empty",
		},
		{
			name:   "unknown type",
			raw:    `[{"type": "sub_head", "title": "3.1 Overview"}]`,
			errMsg: `unknown turn type "sub_head"`,
		},
		{
			name:   "dialogue missing speaker",
			raw:    `[{"type": "dialogue", "emotion": "normal", "text": "hi"}]`,
			errMsg: "missing speaker",
		},
		{
			name:   "narration missing text",
			raw:    `[{"type": "narration"}]`,
			errMsg: "missing text",
		},
		{
			name:   "quiz single option",
			raw:    `[{"type": "quiz", "question": "q?", "options": ["only"], "correct_index": 0}]`,
			errMsg: "at least 2 options",
		},
		{
			name:   "quiz duplicate options",
			raw:    `[{"type": "quiz", "question": "q?", "options": ["Same", "Same"], "correct_index": 0}]`,
			errMsg: "duplicated",
		},
		{
			name:   "quiz index out of range",
			raw:    `[{"type": "quiz", "question": "q?", "options": ["a", "b"], "correct_index": 5}]`,
			errMsg: "out of range",
		},
		{
			name:   "quiz answer matches nothing",
			raw:    `[{"type": "quiz", "question": "q?", "options": ["a", "b"], "correct_answer": "zebra"}]`,
			errMsg: "does not match any option",
		},
		{
			name:   "quiz missing any answer form",
			raw:    `[{"type": "quiz", "question": "q?", "options": ["a", "b"]}]`,
			errMsg: "missing correct_index",
		},
		{
			name:   "choice single option",
			raw:    `[{"type": "choice", "prompt": "pick", "options": [{"text": "one"}]}]`,
			errMsg: "at least 2 options",
		},
		{
			name:   "failure names the element",
			raw:    `[{"type": "narration", "text": "fine"}, {"type": "dialogue", "speaker": "Nana", "emotion": "normal"}]`,
			errMsg: "turn 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTurns(tt.raw)
			if err == nil {
				t.Fatal("ParseTurns() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestParseTurns_CorrectAnswerForms(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"exact option text", "A loss value", 1},
		{"letter label", "B", 1},
		{"parenthesized letter", "(c)", 2},
		{"numeric label", "2.", 1},
		{"labeled answer text", "B. A loss value", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `[{"type": "quiz", "question": "q?", "options": ["A context vector", "A loss value", "A gradient"], "correct_answer": "` + tt.answer + `"}]`
			turns, err := ParseTurns(raw)
			if err != nil {
				t.Fatalf("ParseTurns() error = %v", err)
			}
			if turns[0].CorrectIndex != tt.want {
				t.Errorf("correct index = %d, want %d", turns[0].CorrectIndex, tt.want)
			}
		})
	}
}

func TestParseTurns_EmotionNormalization(t *testing.T) {
	tests := []struct {
		name    string
		emotion string
		want    models.Emotion
	}{
		{"sprite-prefixed form", "char_shy", models.EmotionShy},
		{"plain form", "angry", models.EmotionAngry},
		{"unknown falls back", "excited", models.EmotionNormal},
		{"empty falls back", "", models.EmotionNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `[{"type": "dialogue", "speaker": "Nana", "emotion": "` + tt.emotion + `", "text": "hello"}]`
			turns, err := ParseTurns(raw)
			if err != nil {
				t.Fatalf("ParseTurns() error = %v", err)
			}
			if turns[0].Emotion != tt.want {
				t.Errorf("emotion = %q, want %q", turns[0].Emotion, tt.want)
			}
		})
	}
}

func TestParseTurns_ChoiceVariants(t *testing.T) {
	raw := `[{"type": "choice", "question": "Which one?", "options": ["First path", "Second path"]}]`
	turns, err := ParseTurns(raw)
	if err != nil {
		t.Fatalf("ParseTurns() error = %v", err)
	}

	turn := turns[0]
	if turn.Prompt != "Which one?" {
		t.Errorf("prompt = %q, want fallback from question field", turn.Prompt)
	}
	if len(turn.Choices) != 2 {
		t.Fatalf("choice has %d options, want 2", len(turn.Choices))
	}
	if turn.Choices[0].Text != "First path" || turn.Choices[0].Effect != "" {
		t.Errorf("string option decoded as %+v", turn.Choices[0])
	}
}

func TestCleanOptionText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"dot label", "A. Apple", "Apple"},
		{"paren label", "(B) Banana", "Banana"},
		{"fullwidth paren label", "（1）Cat", "Cat"},
		{"enumeration comma", "2、Dog", "Dog"},
		{"plain text untouched", "Attention is all you need", "Attention is all you need"},
		{"label only keeps original", "A.", "A."},
		{"padded", "  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanOptionText(tt.input); got != tt.want {
				t.Errorf("cleanOptionText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptionLabelIndex(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"upper letter", "A", 0, true},
		{"lower letter", "b", 1, true},
		{"parenthesized", "(C)", 2, true},
		{"digit", "3", 2, true},
		{"two digits", "10.", 9, true},
		{"word is not a label", "Apple", 0, false},
		{"empty", "", 0, false},
		{"two letters", "AB", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := optionLabelIndex(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("optionLabelIndex(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("optionLabelIndex(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
