// ABOUTME: Validation boundary between raw backend text and typed turns
// ABOUTME: Fence stripping, array extraction, and per-element turn decoding
package script

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/harper/paperplay/internal/models"
)

// ParseTurns converts a raw backend response into a validated turn sequence.
// Any failure names the offending element index so the corrective retry can
// quote it back to the backend.
func ParseTurns(raw string) ([]models.Turn, error) {
	payload := extractJSONArray(stripCodeFences(raw))
	if payload == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("turn list is empty")
	}

	turns := make([]models.Turn, 0, len(elements))
	for i, element := range elements {
		turn, err := decodeTurn(element)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		if err := turn.Validate(); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		turns = append(turns, turn)
	}

	return turns, nil
}

// stripCodeFences removes a surrounding markdown code block if present
func stripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// extractJSONArray returns the outermost bracketed span, tolerating prose
// around the array. Returns "" when no span exists.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// rawTurn is the loose decode target for one array element. Field presence
// depends on the turn type; decodeTurn sorts out which ones matter.
type rawTurn struct {
	Type    string `json:"type"`
	Speaker string `json:"speaker"`
	Emotion string `json:"emotion"`
	Text    string `json:"text"`

	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectIndex  *int            `json:"correct_index"`
	CorrectAnswer string          `json:"correct_answer"`
	Explanation   string          `json:"explanation"`

	Prompt string `json:"prompt"`
}

// rawOption covers the object form of a choice option
type rawOption struct {
	Text   string `json:"text"`
	Effect string `json:"effect"`
}

func decodeTurn(data json.RawMessage) (models.Turn, error) {
	var raw rawTurn
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Turn{}, fmt.Errorf("not a turn object: %w", err)
	}

	switch models.TurnKind(strings.ToLower(strings.TrimSpace(raw.Type))) {
	case models.TurnDialogue:
		return models.Turn{
			Kind:    models.TurnDialogue,
			Speaker: strings.TrimSpace(raw.Speaker),
			Emotion: models.NormalizeEmotion(raw.Emotion),
			Text:    strings.TrimSpace(raw.Text),
		}, nil

	case models.TurnNarration:
		return models.Turn{
			Kind: models.TurnNarration,
			Text: strings.TrimSpace(raw.Text),
		}, nil

	case models.TurnQuiz:
		options, err := decodeOptions(raw.Options)
		if err != nil {
			return models.Turn{}, err
		}
		texts := make([]string, len(options))
		for i, opt := range options {
			texts[i] = opt.Text
		}
		correct, err := resolveCorrectIndex(raw, texts)
		if err != nil {
			return models.Turn{}, err
		}
		return models.Turn{
			Kind:         models.TurnQuiz,
			Question:     strings.TrimSpace(raw.Question),
			Options:      texts,
			CorrectIndex: correct,
			Explanation:  strings.TrimSpace(raw.Explanation),
		}, nil

	case models.TurnChoice:
		options, err := decodeOptions(raw.Options)
		if err != nil {
			return models.Turn{}, err
		}
		prompt := strings.TrimSpace(raw.Prompt)
		if prompt == "" {
			// some backends reuse the quiz field name here
			prompt = strings.TrimSpace(raw.Question)
		}
		return models.Turn{
			Kind:        models.TurnChoice,
			Prompt:      prompt,
			Choices:     options,
			Explanation: strings.TrimSpace(raw.Explanation),
		}, nil
	}

	return models.Turn{}, fmt.Errorf("unknown turn type %q", raw.Type)
}

// decodeOptions accepts either a plain string array or an array of
// {text, effect} objects, normalizing both into ChoiceOption values.
func decodeOptions(data json.RawMessage) ([]models.ChoiceOption, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("missing options")
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err == nil {
		options := make([]models.ChoiceOption, len(texts))
		for i, t := range texts {
			options[i] = models.ChoiceOption{Text: cleanOptionText(t)}
		}
		return options, nil
	}

	var objects []rawOption
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("options are neither strings nor objects: %w", err)
	}
	options := make([]models.ChoiceOption, len(objects))
	for i, o := range objects {
		options[i] = models.ChoiceOption{
			Text:   cleanOptionText(o.Text),
			Effect: strings.TrimSpace(o.Effect),
		}
	}
	return options, nil
}

var (
	// "（A）" or "(2)" on its own, possibly followed by the option text
	parenLabelRe = regexp.MustCompile(`^[（(]\s*([A-Za-z]|\d{1,2})\s*[）)]\s*`)
	// "A." / "b)" / "3、" style labels, punctuation required
	dotLabelRe = regexp.MustCompile(`^([A-Za-z]|\d{1,2})\s*[.、),:：]\s*`)
	// a label standing alone, as backends often put in correct_answer
	labelOnlyRe = regexp.MustCompile(`^[（(]?\s*([A-Za-z]|\d{1,2})\s*[）)]?\s*[.、),:：]?$`)
)

// cleanOptionText strips enumeration labels backends like to prepend to
// option text, so stored options compare cleanly against answers.
func cleanOptionText(s string) string {
	text := strings.TrimSpace(s)
	for i := 0; i < 3; i++ {
		prev := text
		text = strings.TrimSpace(parenLabelRe.ReplaceAllString(text, ""))
		text = strings.TrimSpace(dotLabelRe.ReplaceAllString(text, ""))
		if text == prev {
			break
		}
	}
	if text == "" {
		return strings.TrimSpace(s)
	}
	return text
}

// resolveCorrectIndex turns whichever answer form the backend produced into
// an option index. Preferred form is the numeric correct_index; the older
// correct_answer form carries a label ("B", "2.") or the answer text itself.
// An answer that matches nothing is a validation failure, not a guess.
func resolveCorrectIndex(raw rawTurn, options []string) (int, error) {
	if raw.CorrectIndex != nil {
		return *raw.CorrectIndex, nil
	}

	answer := strings.TrimSpace(raw.CorrectAnswer)
	if answer == "" {
		return 0, fmt.Errorf("quiz missing correct_index")
	}

	if idx, ok := optionLabelIndex(answer); ok && idx >= 0 && idx < len(options) {
		return idx, nil
	}
	cleaned := cleanOptionText(answer)
	if idx, ok := optionLabelIndex(cleaned); ok && idx >= 0 && idx < len(options) {
		return idx, nil
	}
	for i, opt := range options {
		if cleaned == strings.TrimSpace(opt) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("quiz correct_answer %q does not match any option", raw.CorrectAnswer)
}

// optionLabelIndex reads a bare label like "A", "(b)", or "2." as a 0-based
// option index.
func optionLabelIndex(s string) (int, bool) {
	m := labelOnlyRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	label := m[1]
	if label[0] >= '0' && label[0] <= '9' {
		n, err := strconv.Atoi(label)
		if err != nil || n < 1 {
			return 0, false
		}
		return n - 1, true
	}
	return int(unicode.ToUpper(rune(label[0])) - 'A'), true
}
