// ABOUTME: Prompt construction for turning a document chunk into playable turns
// ABOUTME: System persona, per-chunk user prompt, and the corrective retry suffix
package script

import (
	"fmt"
	"strings"

	"github.com/harper/paperplay/internal/models"
)

// systemPrompt fixes the persona and the exact JSON contract the backend
// must honor. Validation downstream enforces the same contract, so the
// schema wording here and the checks in parse.go must stay in sync.
const systemPrompt = `You are Nana, a sharp-tongued but deeply knowledgeable catgirl tutor. Your job is to adapt one full section of an academic paper into a short visual-novel script the reader plays through turn by turn.

Ground rules:
1. De-academicize. Explain hard ideas with everyday metaphors and plain speech instead of quoting the paper.
2. Stay in character. React to the text: tease the authors over clumsy writing, get excited about clever ideas, be strict when the reader should pay attention.
3. Make it interactive. At each key point in the section, add either a quiz about the content or a choice that asks for the reader's take.
4. Output ONLY a JSON array of turn objects. No prose before or after, no code fences.

Allowed "type" values and their required fields:
- {"type": "dialogue", "speaker": "Nana", "emotion": "normal", "text": "..."}
  emotion must be one of: normal, happy, angry, shy.
- {"type": "narration", "text": "..."}
  Scene-setting or summary text with no speaker.
- {"type": "quiz", "question": "...", "options": ["...", "..."], "correct_index": 0, "explanation": "..."}
  At least 2 unique options; correct_index is the 0-based position of the right answer; explanation says in one or two sentences why it is right.
- {"type": "choice", "prompt": "...", "options": [{"text": "...", "effect": "curious"}, {"text": "...", "effect": "skeptical"}], "explanation": "..."}
  At least 2 options; effect is a short free-form tag for the flavor of that pick; explanation gives Nana's own take on the question.

Do not invent other turn types or extra top-level fields.`

// correctiveSuffix is appended to the user prompt on retry attempts, naming
// the reason the previous reply was rejected.
const correctiveSuffix = `

Your previous reply was rejected: %s.
Answer again with ONLY a valid JSON array of turn objects following the schema from the instructions. No commentary, no code fences.`

// buildUserPrompt assembles the per-chunk request: structural title when the
// remote strategy provided one, continuity state from earlier chunks, and
// the chunk text itself.
func buildUserPrompt(chunk models.Chunk, nctx *models.NarrativeContext) string {
	var b strings.Builder

	if chunk.Title != "" {
		fmt.Fprintf(&b, "Current section: %s\n\n", chunk.Title)
	}
	if nctx != nil && nctx.ChunksCompleted > 0 {
		fmt.Fprintf(&b, "You have already covered %d section(s). The previous one was about:\n%s\n", nctx.ChunksCompleted, nctx.Summary)
		fmt.Fprintf(&b, "Nana's mood at the end of it was %q; pick up from there naturally.\n\n", nctx.LastEmotion)
	}

	fmt.Fprintf(&b, "Full text of this section (chunk #%d):\n\"\"\"%s\"\"\"\n\n", chunk.Ordinal, chunk.Text)
	b.WriteString("Reply with ONLY the JSON array of turns. No surrounding text, no code fences.")

	return b.String()
}

// buildRetryPrompt reissues the user prompt with the corrective instruction
// for the named failure.
func buildRetryPrompt(userPrompt, failure string) string {
	return userPrompt + fmt.Sprintf(correctiveSuffix, failure)
}
