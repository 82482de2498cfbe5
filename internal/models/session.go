// ABOUTME: PlaybackSession state, modes, auto-strategies, and play history
// ABOUTME: One session is driven sequentially by a single caller
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlayMode selects how interactive turns are resolved
type PlayMode string

const (
	ModeInteractive PlayMode = "interactive"
	ModeAuto        PlayMode = "auto"
)

// ParsePlayMode validates a mode string
func ParsePlayMode(s string) (PlayMode, error) {
	switch PlayMode(s) {
	case ModeInteractive, ModeAuto:
		return PlayMode(s), nil
	}
	return "", fmt.Errorf("unknown play mode %q (want interactive or auto)", s)
}

// AutoStrategy is the deterministic selection policy in auto mode
type AutoStrategy string

const (
	StrategyFirst   AutoStrategy = "first"
	StrategyCorrect AutoStrategy = "correct"
	StrategyLast    AutoStrategy = "last"
)

// ParseAutoStrategy validates a strategy string
func ParseAutoStrategy(s string) (AutoStrategy, error) {
	switch AutoStrategy(s) {
	case StrategyFirst, StrategyCorrect, StrategyLast:
		return AutoStrategy(s), nil
	}
	return "", fmt.Errorf("unknown auto strategy %q (want first, correct, or last)", s)
}

// SessionState is the playback state machine's current state
type SessionState string

const (
	StateIdle            SessionState = "idle"
	StatePlayingTurn     SessionState = "playing_turn"
	StateAwaitingChoice  SessionState = "awaiting_choice"
	StateChunkComplete   SessionState = "chunk_complete"
	StateSessionComplete SessionState = "session_complete"
	StateError           SessionState = "error"
)

// Terminal reports whether no further turns can be consumed
func (s SessionState) Terminal() bool {
	return s == StateSessionComplete || s == StateError
}

// Selection records how one interactive turn was resolved. Correct is
// meaningful only for quiz turns, Effect only for choice turns.
type Selection struct {
	TurnIndex   int      `json:"turn_index" yaml:"turn_index"`
	Kind        TurnKind `json:"kind" yaml:"kind"`
	OptionIndex int      `json:"option_index" yaml:"option_index"`
	OptionText  string   `json:"option_text" yaml:"option_text"`
	Correct     bool     `json:"correct" yaml:"correct"`
	Effect      string   `json:"effect,omitempty" yaml:"effect,omitempty"`
}

// PlayedTurn is one history entry: a consumed turn plus its resolution
// (nil for dialogue and narration)
type PlayedTurn struct {
	ChunkOrdinal int        `json:"chunk_ordinal"`
	TurnIndex    int        `json:"turn_index"`
	Turn         Turn       `json:"turn"`
	Selection    *Selection `json:"selection,omitempty"`
}

// PlaybackSession tracks one playthrough of one document
type PlaybackSession struct {
	ID           string       `json:"id"`
	Document     string       `json:"document"`
	Fingerprint  string       `json:"fingerprint"`
	Mode         PlayMode     `json:"mode"`
	Strategy     AutoStrategy `json:"strategy"`
	State        SessionState `json:"state"`
	ChunkOrdinal int          `json:"chunk_ordinal"`
	TurnIndex    int          `json:"turn_index"`
	History      []PlayedTurn `json:"history"`
	StartedAt    time.Time    `json:"started_at"`
}

// NewPlaybackSession creates a session in the Idle state
func NewPlaybackSession(doc *Document, mode PlayMode, strategy AutoStrategy) *PlaybackSession {
	return &PlaybackSession{
		ID:          generateSessionID(),
		Document:    doc.Name,
		Fingerprint: doc.Fingerprint,
		Mode:        mode,
		Strategy:    strategy,
		State:       StateIdle,
		StartedAt:   time.Now().UTC(),
	}
}

// generateSessionID generates a unique session identifier
func generateSessionID() string {
	return fmt.Sprintf("session_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
