package evaluator

import (
	"fmt"
)

// Performance scores operational efficiency: turn latency against the
// scenario's complexity band, completion-token economy, and precision/recall
// of tool calls against the turn's expectations.
//
// Point budget: latency 0-4, token efficiency 0-3, tool efficiency 0-3,
// for a 0-10 total.
type Performance struct {
	weight float64
}

func NewPerformance(weight float64) *Performance {
	return &Performance{weight: weight}
}

func (e *Performance) Name() string    { return NamePerformance }
func (e *Performance) Weight() float64 { return e.weight }

type perfBand struct {
	excellentMs, goodMs, adequateMs    int64
	excellentTok, goodTok, adequateTok int
}

var perfBands = map[string]perfBand{
	"simple":  {1500, 3000, 5000, 200, 400, 600},
	"medium":  {2500, 5000, 8000, 400, 800, 1200},
	"complex": {4000, 8000, 12000, 800, 1500, 2500},
}

func (e *Performance) Evaluate(in *Input) (*Result, error) {
	if in == nil || in.Scenario == nil || in.Turn == nil {
		return nil, fmt.Errorf("evaluator: %s: nil input", e.Name())
	}
	band, ok := perfBands[in.Scenario.Complexity]
	if !ok {
		band = perfBands["medium"]
	}

	latency := scoreLatency(in.LatencyMs, band)
	tokens := scoreTokens(in.InputTokens, in.OutputTokens, band)
	tools := scoreToolPrecision(in)

	return &Result{
		Score: clampScore(latency + tokens + tools),
		SubMetrics: map[string]float64{
			"latency":          latency,
			"token_efficiency": tokens,
			"tool_efficiency":  tools,
		},
	}, nil
}

func scoreLatency(ms int64, band perfBand) float64 {
	switch {
	case ms <= band.excellentMs:
		return 4.0
	case ms <= band.goodMs:
		return 3.0
	case ms <= band.adequateMs:
		return 2.0
	case ms <= band.adequateMs*3/2:
		return 1.0
	default:
		return 0.0
	}
}

func scoreTokens(in, out int, band perfBand) float64 {
	ratio := 2.0 // worst case when no prompt tokens reported
	if in > 0 {
		ratio = float64(out) / float64(in)
	}
	switch {
	case out <= band.excellentTok && ratio < 0.5:
		return 3.0
	case out <= band.goodTok && ratio < 0.8:
		return 2.0
	case out <= band.adequateTok:
		return 1.0
	default:
		return 0.0
	}
}

// scoreToolPrecision is the F1 of actual against expected tool names.
func scoreToolPrecision(in *Input) float64 {
	expected := in.Turn.ExpectedToolNames()
	if len(expected) == 0 {
		if len(in.ToolCalls) == 0 {
			return 3.0
		}
		return 0.0
	}
	if len(in.ToolCalls) == 0 {
		return 0.0
	}

	actualNames := make(map[string]bool, len(in.ToolCalls))
	for _, c := range in.ToolCalls {
		actualNames[c.Name] = true
	}
	used := 0
	for _, name := range expected {
		if actualNames[name] {
			used++
		}
	}
	precision := float64(used) / float64(len(in.ToolCalls))
	recall := float64(used) / float64(len(expected))
	if precision+recall == 0 {
		return 0.0
	}
	f1 := 2 * precision * recall / (precision + recall)

	diff := len(in.ToolCalls) - len(expected)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case f1 >= 0.9 && diff <= 1:
		return 3.0
	case f1 >= 0.7 && diff <= 2:
		return 2.0
	case f1 >= 0.5:
		return 1.0
	default:
		return 0.0
	}
}
