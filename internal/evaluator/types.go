package evaluator

import (
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// Evaluator scores one conversation turn on a 0-10 scale. Implementations
// must be deterministic for a given input and safe for concurrent use.
type Evaluator interface {
	Name() string
	Weight() float64
	Evaluate(in *Input) (*Result, error)
}

// Input is everything an evaluator may inspect for one turn: the response
// under assessment, the tool calls it made, and the scripted ground truth.
type Input struct {
	Response     string
	ToolCalls    []tool.InvocationRecord
	TurnIndex    int
	History      []llm.Message // conversation up to and including this response
	Scenario     *scenario.Scenario
	Turn         *scenario.Turn
	LatencyMs    int64
	InputTokens  int
	OutputTokens int
}

// LastUserMessage returns the most recent user message in the history.
func (in *Input) LastUserMessage() string {
	if in == nil {
		return ""
	}
	for i := len(in.History) - 1; i >= 0; i-- {
		if in.History[i].Role == llm.RoleUser {
			return in.History[i].Content
		}
	}
	return ""
}

func (in *Input) priorAssistantMessages() []string {
	if in == nil {
		return nil
	}
	var out []string
	for _, m := range in.History {
		if m.Role == llm.RoleAssistant && m.Content != in.Response {
			out = append(out, m.Content)
		}
	}
	return out
}

// Result is one evaluator's verdict on a turn.
type Result struct {
	Score       float64            `json:"score"` // 0-10
	SubMetrics  map[string]float64 `json:"sub_metrics,omitempty"`
	Explanation string             `json:"explanation,omitempty"`
}

// Canonical evaluator names, also the keys of weight configuration.
const (
	NameResponseQuality    = "response_quality"
	NameCommunicationStyle = "communication_style"
	NameToolUsage          = "tool_usage"
	NameBusinessValue      = "business_value"
	NamePerformance        = "performance"
)

// DefaultWeights is the built-in evaluator weighting. The pipeline
// re-normalizes whatever weights it is handed, so these only need to agree
// in proportion.
var DefaultWeights = map[string]float64{
	NameResponseQuality:    0.25,
	NameCommunicationStyle: 0.20,
	NameToolUsage:          0.20,
	NameBusinessValue:      0.25,
	NamePerformance:        0.10,
}

// DefaultSet builds the five standard evaluators. Entries in weights
// override the default weight for the matching name; unknown names are
// ignored.
func DefaultSet(weights map[string]float64) []Evaluator {
	w := func(name string) float64 {
		if v, ok := weights[name]; ok && v >= 0 {
			return v
		}
		return DefaultWeights[name]
	}
	return []Evaluator{
		NewResponseQuality(w(NameResponseQuality)),
		NewCommunicationStyle(w(NameCommunicationStyle)),
		NewToolUsage(w(NameToolUsage)),
		NewBusinessValue(w(NameBusinessValue)),
		NewPerformance(w(NamePerformance)),
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
