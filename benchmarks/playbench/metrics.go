// ABOUTME: Deterministic scoring for playback engine benchmarks
// ABOUTME: Evaluates completion, backend call budget, and cache reuse

package playbench

import (
	"fmt"
	"strings"

	"github.com/harper/paperplay/internal/models"
)

// MetricsCalculator computes scores for benchmark scenarios
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateCompletion scores whether the run ended the way the scenario
// expects: a finished session with the full history, or a clean failure
// carrying the expected error
func (m *MetricsCalculator) CalculateCompletion(gt GroundTruth, outcome RunOutcome) (float64, string) {
	if gt.Complete {
		if outcome.RunErr != nil {
			return 0.0, fmt.Sprintf("Completion failure - expected a finished session, got error: %v", outcome.RunErr)
		}
		if outcome.FinalState != models.StateSessionComplete {
			return 0.0, fmt.Sprintf("Completion failure - final state %s, want %s", outcome.FinalState, models.StateSessionComplete)
		}
		if outcome.ChunkCount != gt.ChunkCount {
			return 0.5, fmt.Sprintf("Partial completion - played %d chunk(s), want %d", outcome.ChunkCount, gt.ChunkCount)
		}
		if outcome.TurnsPlayed != gt.TurnsPlayed {
			return 0.5, fmt.Sprintf("Partial completion - history has %d turn(s), want %d", outcome.TurnsPlayed, gt.TurnsPlayed)
		}
		return 1.0, "Session completed with the expected history"
	}

	// Failing scenario: the run must surface the expected error and park
	// the session in the error state
	if outcome.RunErr == nil {
		return 0.0, "Completion failure - expected a failing run but the session completed"
	}
	if outcome.FinalState != models.StateError {
		return 0.5, fmt.Sprintf("Partial failure handling - final state %s, want %s", outcome.FinalState, models.StateError)
	}
	if gt.ErrorContains != "" && !strings.Contains(outcome.RunErr.Error(), gt.ErrorContains) {
		return 0.5, fmt.Sprintf("Partial failure handling - error %q does not mention %q", outcome.RunErr, gt.ErrorContains)
	}
	return 1.0, "Session failed cleanly with the expected error"
}

// CalculateCallBudget scores backend efficiency against the expected
// generation call count
func (m *MetricsCalculator) CalculateCallBudget(expected, actual int) (float64, string) {
	if actual == expected {
		return 1.0, fmt.Sprintf("Exact call budget - %d backend call(s)", actual)
	}
	if actual == expected+1 {
		return 0.5, fmt.Sprintf("One call over budget - %d backend call(s), want %d", actual, expected)
	}
	return 0.0, fmt.Sprintf("Call budget missed - %d backend call(s), want %d", actual, expected)
}

// CalculateReplayEfficiency scores the cached second run; a correct
// cache serves segmentation and every script without a backend call
func (m *MetricsCalculator) CalculateReplayEfficiency(outcome RunOutcome) (float64, string) {
	if outcome.ReplayCalls < 0 {
		return 1.0, "Replay not exercised for this scenario"
	}
	if outcome.ReplayErr != nil {
		return 0.0, fmt.Sprintf("Replay failure - cached run returned error: %v", outcome.ReplayErr)
	}
	if outcome.ReplayCalls == 0 {
		return 1.0, "Perfect cache reuse - replay made no backend calls"
	}
	return 0.0, fmt.Sprintf("Cache miss on replay - %d backend call(s)", outcome.ReplayCalls)
}

// EvaluateScenario runs full evaluation for one scenario outcome
func (m *MetricsCalculator) EvaluateScenario(scenario Scenario, outcome RunOutcome) ScenarioResult {
	completion, completionDetail := m.CalculateCompletion(scenario.GroundTruth, outcome)
	budget, budgetDetail := m.CalculateCallBudget(scenario.GroundTruth.GeneratorCalls, outcome.FirstCalls)
	replay, replayDetail := m.CalculateReplayEfficiency(outcome)

	overall := (completion + budget + replay) / 3.0

	// A production pipeline must hit all three; anything below 0.9 on a
	// single metric fails the scenario
	status := "FAIL"
	if completion >= 0.9 && budget >= 0.9 && replay >= 0.9 {
		status = "PASS"
	}

	errorMessage := ""
	if outcome.RunErr != nil {
		errorMessage = outcome.RunErr.Error()
	}

	return ScenarioResult{
		ScenarioID:      scenario.ID,
		ScenarioName:    scenario.Name,
		CompletionScore: completion,
		BudgetScore:     budget,
		ReplayScore:     replay,
		OverallScore:    overall,
		Status:          status,
		ErrorMessage:    errorMessage,
		Details: map[string]interface{}{
			"completion_detail": completionDetail,
			"budget_detail":     budgetDetail,
			"replay_detail":     replayDetail,
			"final_state":       string(outcome.FinalState),
			"turns_played":      outcome.TurnsPlayed,
			"chunk_count":       outcome.ChunkCount,
			"backend_calls":     outcome.FirstCalls,
		},
	}
}
