package pipeline

import (
	"github.com/stellarlinkco/bizbench/internal/evaluator"
	"github.com/stellarlinkco/bizbench/internal/runner"
)

// ModelSummary aggregates one model's results across all scenarios and runs.
// Score fields average over completed runs only; failed and aborted runs
// count in Attempted but contribute no scores.
type ModelSummary struct {
	Model     string `json:"model"`
	Attempted int    `json:"attempted"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Aborted   int    `json:"aborted"`

	OverallScore   float64            `json:"overall_score"`
	CategoryScores map[string]float64 `json:"category_scores,omitempty"`
	// ScenarioScores is the per-scenario mean overall score.
	ScenarioScores map[string]float64 `json:"scenario_scores,omitempty"`
	// ToolMetrics averages the tool-usage evaluator's sub-metrics.
	ToolMetrics map[string]float64 `json:"tool_metrics,omitempty"`
}

// Summary is the benchmark-level reduction of all unit results. It is a pure
// function of the result set: scheduling order does not affect it.
type Summary struct {
	TotalUnits int                      `json:"total_units"`
	Models     map[string]*ModelSummary `json:"models"`
	// SuccessRate is completed/attempted per scenario category, across all
	// models.
	SuccessRate map[string]float64 `json:"success_rate,omitempty"`
}

type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v float64) {
	a.sum += v
	a.count++
}

func (a *accumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// Summarize reduces unit results to per-model and per-category aggregates.
func Summarize(results []*runner.RunResult) *Summary {
	s := &Summary{
		TotalUnits: len(results),
		Models:     make(map[string]*ModelSummary),
	}

	overall := make(map[string]*accumulator)
	categories := make(map[string]map[string]*accumulator)
	scenarios := make(map[string]map[string]*accumulator)
	toolMetrics := make(map[string]map[string]*accumulator)
	categoryAttempted := make(map[string]int)
	categoryCompleted := make(map[string]int)

	for _, res := range results {
		if res == nil {
			continue
		}
		ms, ok := s.Models[res.Model]
		if !ok {
			ms = &ModelSummary{Model: res.Model}
			s.Models[res.Model] = ms
			overall[res.Model] = &accumulator{}
			categories[res.Model] = make(map[string]*accumulator)
			scenarios[res.Model] = make(map[string]*accumulator)
			toolMetrics[res.Model] = make(map[string]*accumulator)
		}

		ms.Attempted++
		categoryAttempted[res.Category]++
		switch res.Status {
		case runner.StatusCompleted:
			ms.Completed++
			categoryCompleted[res.Category]++
		case runner.StatusFailed:
			ms.Failed++
			continue
		case runner.StatusAborted:
			ms.Aborted++
			continue
		}

		overall[res.Model].add(res.OverallScore)
		for name, score := range res.CategoryScores {
			acc, ok := categories[res.Model][name]
			if !ok {
				acc = &accumulator{}
				categories[res.Model][name] = acc
			}
			acc.add(score)
		}
		acc, ok := scenarios[res.Model][res.ScenarioID]
		if !ok {
			acc = &accumulator{}
			scenarios[res.Model][res.ScenarioID] = acc
		}
		acc.add(res.OverallScore)

		for _, ts := range res.TurnScores {
			for name, v := range ts.SubMetrics[evaluator.NameToolUsage] {
				acc, ok := toolMetrics[res.Model][name]
				if !ok {
					acc = &accumulator{}
					toolMetrics[res.Model][name] = acc
				}
				acc.add(v)
			}
		}
	}

	for model, ms := range s.Models {
		ms.OverallScore = overall[model].mean()
		ms.CategoryScores = collapse(categories[model])
		ms.ScenarioScores = collapse(scenarios[model])
		ms.ToolMetrics = collapse(toolMetrics[model])
	}

	if len(categoryAttempted) > 0 {
		s.SuccessRate = make(map[string]float64, len(categoryAttempted))
		for cat, attempted := range categoryAttempted {
			s.SuccessRate[cat] = float64(categoryCompleted[cat]) / float64(attempted)
		}
	}
	return s
}

func collapse(accs map[string]*accumulator) map[string]float64 {
	if len(accs) == 0 {
		return nil
	}
	out := make(map[string]float64, len(accs))
	for k, a := range accs {
		out[k] = a.mean()
	}
	return out
}
