// ABOUTME: Scenario data for playback engine benchmarks
// ABOUTME: Defines documents, scripted backend replies, and expected outcomes

package playbench

import "strings"

// Scenario is one scripted robustness run through the full pipeline:
// segmentation, script generation with a canned backend, and auto playback.
type Scenario struct {
	ID          string
	Name        string
	Description string

	DocumentName string
	DocumentText string
	WindowSize   int
	Attempts     int

	// Responses are consumed by the scripted backend in order, one per
	// generation call across all chunks and retries
	Responses []string

	GroundTruth GroundTruth
}

// GroundTruth defines the expected outcome of a scenario
type GroundTruth struct {
	// Complete is true when the session should reach session_complete
	Complete bool

	ChunkCount  int
	TurnsPlayed int

	// GeneratorCalls is the backend call budget for the first run
	GeneratorCalls int

	// ReplayCalls is the expected backend call count for a cached
	// replay over the same database; -1 skips the replay pass
	ReplayCalls int

	// ErrorContains must appear in the run error for failing scenarios
	ErrorContains string
}

// ScenarioResult represents the outcome of one benchmark scenario
type ScenarioResult struct {
	ScenarioID      string
	ScenarioName    string
	CompletionScore float64
	BudgetScore     float64
	ReplayScore     float64
	OverallScore    float64
	Status          string // "PASS" or "FAIL"
	Details         map[string]interface{}
	ErrorMessage    string
}

// benchDocument is exactly 80 runes, so a window of 40 yields two chunks
var benchDocument = strings.Repeat("attention heads route information well. ", 2)

const cleanFirstChunk = `[
  {"type": "narration", "text": "The encoder wakes up and reads the page."},
  {"type": "quiz", "question": "What routes information between positions?", "options": ["Padding", "Attention"], "correct_index": 1}
]`

const cleanSecondChunk = `[
  {"type": "dialogue", "speaker": "Nana", "emotion": "normal", "text": "Halfway through the paper already."},
  {"type": "choice", "prompt": "Dig deeper or move on?", "options": [{"text": "Deeper", "effect": "curious"}, {"text": "Onward", "effect": "brisk"}]}
]`

// GetCleanRun returns the baseline scenario: every backend reply is valid
// on the first attempt and the cached replay costs nothing
func GetCleanRun() Scenario {
	return Scenario{
		ID:          "clean_run",
		Name:        "Clean Generation (First-Attempt Scripts)",
		Description: "Every chunk script parses on the first attempt; replay is served from cache",
		DocumentName: "bench.txt",
		DocumentText: benchDocument,
		WindowSize:   40,
		Attempts:     3,
		Responses: []string{
			cleanFirstChunk,
			cleanSecondChunk,
		},
		GroundTruth: GroundTruth{
			Complete:       true,
			ChunkCount:     2,
			TurnsPlayed:    4,
			GeneratorCalls: 2,
			ReplayCalls:    0,
		},
	}
}

// GetFencedOutput returns the markdown-fence scenario: the backend wraps
// valid scripts in code fences and the parser must salvage the array
func GetFencedOutput() Scenario {
	return Scenario{
		ID:          "fenced_output",
		Name:        "Fenced Output (Markdown Salvage)",
		Description: "Backend replies wrap the JSON array in markdown fences; no retries should be spent",
		DocumentName: "bench.txt",
		DocumentText: benchDocument,
		WindowSize:   40,
		Attempts:     3,
		Responses: []string{
			"```json\n" + cleanFirstChunk + "\n```",
			"Here is the script:\n```json\n" + cleanSecondChunk + "\n```",
		},
		GroundTruth: GroundTruth{
			Complete:       true,
			ChunkCount:     2,
			TurnsPlayed:    4,
			GeneratorCalls: 2,
			ReplayCalls:    0,
		},
	}
}

// GetCorrectiveRetry returns the retry scenario: the first reply violates
// the schema and the corrective second attempt recovers
func GetCorrectiveRetry() Scenario {
	return Scenario{
		ID:          "corrective_retry",
		Name:        "Corrective Retry (Schema Violation Recovery)",
		Description: "Chunk 0 needs a corrective retry after a malformed reply; chunk 1 is clean",
		DocumentName: "bench.txt",
		DocumentText: benchDocument,
		WindowSize:   40,
		Attempts:     3,
		Responses: []string{
			`{"scenes": "this is not a turn array"}`,
			cleanFirstChunk,
			cleanSecondChunk,
		},
		GroundTruth: GroundTruth{
			Complete:       true,
			ChunkCount:     2,
			TurnsPlayed:    4,
			GeneratorCalls: 3,
			ReplayCalls:    0,
		},
	}
}

// GetExhaustedAttempts returns the failure scenario: every attempt for the
// first chunk is unusable and the session must fail cleanly
func GetExhaustedAttempts() Scenario {
	return Scenario{
		ID:          "exhausted_attempts",
		Name:        "Exhausted Attempts (Terminal Failure)",
		Description: "All attempts for chunk 0 are malformed; the session must end in the error state",
		DocumentName: "bench.txt",
		DocumentText: benchDocument,
		WindowSize:   40,
		Attempts:     3,
		Responses: []string{
			"the model refuses to answer in JSON",
			"still prose, still no array",
			`{"turns": "wrong shape entirely"}`,
		},
		GroundTruth: GroundTruth{
			Complete:       false,
			ChunkCount:     2,
			TurnsPlayed:    0,
			GeneratorCalls: 3,
			ReplayCalls:    -1,
			ErrorContains:  "failed after 3 attempts",
		},
	}
}

// GetAllScenarios returns all playback benchmark scenarios
func GetAllScenarios() []Scenario {
	return []Scenario{
		GetCleanRun(),
		GetFencedOutput(),
		GetCorrectiveRetry(),
		GetExhaustedAttempts(),
	}
}
