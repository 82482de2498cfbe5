// ABOUTME: Turn is the tagged union over dialogue, narration, quiz, and choice
// ABOUTME: One validation boundary turns loose generated JSON into typed turns
package models

import (
	"fmt"
	"strings"
)

// TurnKind discriminates the Turn variants
type TurnKind string

const (
	TurnDialogue  TurnKind = "dialogue"
	TurnNarration TurnKind = "narration"
	TurnQuiz      TurnKind = "quiz"
	TurnChoice    TurnKind = "choice"
)

// Emotion is the sprite-facing emotion tag on dialogue turns
type Emotion string

const (
	EmotionNormal Emotion = "normal"
	EmotionHappy  Emotion = "happy"
	EmotionAngry  Emotion = "angry"
	EmotionShy    Emotion = "shy"
)

// NormalizeEmotion maps raw generated emotion tags onto the known set.
// Accepts the sprite-prefixed form ("char_happy") the upstream prompt
// historically produced; anything unrecognized becomes normal.
func NormalizeEmotion(raw string) Emotion {
	e := strings.ToLower(strings.TrimSpace(raw))
	e = strings.TrimPrefix(e, "char_")
	switch Emotion(e) {
	case EmotionNormal, EmotionHappy, EmotionAngry, EmotionShy:
		return Emotion(e)
	}
	return EmotionNormal
}

// ChoiceOption is one selectable option on a choice turn. The effect tag is
// free-form and consumed only by playback history.
type ChoiceOption struct {
	Text   string `json:"text"`
	Effect string `json:"effect,omitempty"`
}

// Turn is one atomic unit of playback content. Kind decides which fields are
// meaningful; Validate enforces the per-kind required set. Turns are immutable
// once validated into a ChunkScript.
type Turn struct {
	Kind TurnKind `json:"kind"`

	// dialogue
	Speaker string  `json:"speaker,omitempty"`
	Emotion Emotion `json:"emotion,omitempty"`

	// dialogue and narration
	Text string `json:"text,omitempty"`

	// quiz
	Question     string   `json:"question,omitempty"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation,omitempty"`

	// choice
	Prompt  string         `json:"prompt,omitempty"`
	Choices []ChoiceOption `json:"choices,omitempty"`
}

// Validate checks the turn against its kind's required-field set
func (t *Turn) Validate() error {
	switch t.Kind {
	case TurnDialogue:
		if strings.TrimSpace(t.Speaker) == "" {
			return fmt.Errorf("dialogue turn missing speaker")
		}
		if strings.TrimSpace(t.Text) == "" {
			return fmt.Errorf("dialogue turn missing text")
		}
		switch t.Emotion {
		case EmotionNormal, EmotionHappy, EmotionAngry, EmotionShy:
		default:
			return fmt.Errorf("dialogue turn has unknown emotion %q", t.Emotion)
		}
	case TurnNarration:
		if strings.TrimSpace(t.Text) == "" {
			return fmt.Errorf("narration turn missing text")
		}
	case TurnQuiz:
		if strings.TrimSpace(t.Question) == "" {
			return fmt.Errorf("quiz turn missing question")
		}
		if len(t.Options) < 2 {
			return fmt.Errorf("quiz turn needs at least 2 options, got %d", len(t.Options))
		}
		seen := make(map[string]bool, len(t.Options))
		for i, opt := range t.Options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("quiz option %d is empty", i)
			}
			if seen[opt] {
				return fmt.Errorf("quiz option %q is duplicated", opt)
			}
			seen[opt] = true
		}
		if t.CorrectIndex < 0 || t.CorrectIndex >= len(t.Options) {
			return fmt.Errorf("quiz correct index %d out of range [0,%d)", t.CorrectIndex, len(t.Options))
		}
	case TurnChoice:
		if strings.TrimSpace(t.Prompt) == "" {
			return fmt.Errorf("choice turn missing prompt")
		}
		if len(t.Choices) < 2 {
			return fmt.Errorf("choice turn needs at least 2 options, got %d", len(t.Choices))
		}
		for i, opt := range t.Choices {
			if strings.TrimSpace(opt.Text) == "" {
				return fmt.Errorf("choice option %d is empty", i)
			}
		}
	default:
		return fmt.Errorf("unknown turn kind %q", t.Kind)
	}
	return nil
}

// IsInteractive reports whether the turn requires a selection to resolve
func (t *Turn) IsInteractive() bool {
	return t.Kind == TurnQuiz || t.Kind == TurnChoice
}

// OptionCount returns the number of selectable options (0 for non-interactive turns)
func (t *Turn) OptionCount() int {
	switch t.Kind {
	case TurnQuiz:
		return len(t.Options)
	case TurnChoice:
		return len(t.Choices)
	}
	return 0
}
