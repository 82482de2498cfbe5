// ABOUTME: NarrativeContext carries generation-time state across chunks
// ABOUTME: Updated only after a successful generation, read-only otherwise
package models

// NarrativeContext is the continuity state threaded through chunk
// generations: the character's last emotion and a short summary of the
// previous chunk. It is private to one session and never global.
type NarrativeContext struct {
	Summary         string  `json:"summary,omitempty"`
	LastEmotion     Emotion `json:"last_emotion"`
	ChunksCompleted int     `json:"chunks_completed"`
}

// NewNarrativeContext returns the initial context for a fresh session
func NewNarrativeContext() *NarrativeContext {
	return &NarrativeContext{LastEmotion: EmotionNormal}
}

// AdvanceAfter folds a successfully generated script into the context.
// The last dialogue emotion wins; summary is a bounded snippet of the
// chunk the script was generated from.
func (c *NarrativeContext) AdvanceAfter(chunk Chunk, script *ChunkScript) {
	for i := len(script.Turns) - 1; i >= 0; i-- {
		if script.Turns[i].Kind == TurnDialogue {
			c.LastEmotion = script.Turns[i].Emotion
			break
		}
	}
	c.Summary = Snippet(chunk.Text, 200)
	c.ChunksCompleted++
}

// Snippet returns at most n runes of s, marking truncation
func Snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
