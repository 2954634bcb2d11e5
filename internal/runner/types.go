package runner

import (
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// Status is the terminal disposition of one scenario run.
type Status string

const (
	// StatusCompleted means every scripted turn ran and was scored.
	StatusCompleted Status = "completed"
	// StatusFailed means a provider error stopped the run.
	StatusFailed Status = "failed"
	// StatusAborted means the tool-resolution round cap was exhausted with
	// the model still requesting tools.
	StatusAborted Status = "aborted"
)

// TurnScore holds one turn's verdicts keyed by evaluator name. An evaluator
// that errored appears in Errors and is absent from Scores; its contribution
// is missing, not zero.
type TurnScore struct {
	TurnIndex  int                           `json:"turn_index"`
	Scores     map[string]float64            `json:"scores"`
	SubMetrics map[string]map[string]float64 `json:"sub_metrics,omitempty"`
	Errors     map[string]string             `json:"errors,omitempty"`
}

// RunResult is the complete outcome of one (model, scenario, run) unit.
type RunResult struct {
	Model        string `json:"model"`
	ScenarioID   string `json:"scenario_id"`
	ScenarioName string `json:"scenario_name,omitempty"`
	Category     string `json:"category"`
	RunIndex     int    `json:"run_index"`

	Status        Status `json:"status"`
	FailureDetail string `json:"failure_detail,omitempty"`

	Transcript      []llm.Message           `json:"transcript,omitempty"`
	ToolInvocations []tool.InvocationRecord `json:"tool_invocations,omitempty"`
	TurnScores      []TurnScore             `json:"turn_scores,omitempty"`

	// CategoryScores is the per-evaluator mean over scored turns; OverallScore
	// is the weight-normalized combination. Both are zero-valued for runs
	// that did not complete.
	CategoryScores map[string]float64 `json:"category_scores,omitempty"`
	OverallScore   float64            `json:"overall_score"`

	TurnsCompleted int   `json:"turns_completed"`
	InputTokens    int   `json:"input_tokens"`
	OutputTokens   int   `json:"output_tokens"`
	DurationMs     int64 `json:"duration_ms"`
}

// Completed reports whether the run finished all scripted turns.
func (r *RunResult) Completed() bool {
	return r != nil && r.Status == StatusCompleted
}
