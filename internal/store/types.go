package store

import (
	"time"

	"github.com/stellarlinkco/bizbench/internal/pipeline"
	"github.com/stellarlinkco/bizbench/internal/runner"
)

// RunRecord is one persisted benchmark invocation.
type RunRecord struct {
	ID          string            `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	TotalUnits  int               `json:"total_units"`
	Summary     *pipeline.Summary `json:"summary,omitempty"`
}

// UnitRecord is one persisted (model, scenario, run) result. Detail carries
// the full RunResult, serialized; the scalar columns exist for querying.
type UnitRecord struct {
	RunID         string    `json:"run_id"`
	Model         string    `json:"model"`
	ScenarioID    string    `json:"scenario_id"`
	ScenarioName  string    `json:"scenario_name,omitempty"`
	Category      string    `json:"category"`
	RunIndex      int       `json:"run_index"`
	Status        string    `json:"status"`
	FailureDetail string    `json:"failure_detail,omitempty"`
	OverallScore  float64   `json:"overall_score"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`

	Detail *runner.RunResult `json:"detail,omitempty"`
}

// LeaderboardEntry ranks a model by its mean overall score across all
// persisted benchmark runs.
type LeaderboardEntry struct {
	Model     string  `json:"model"`
	Attempted int     `json:"attempted"`
	Completed int     `json:"completed"`
	AvgScore  float64 `json:"avg_score"`
}
