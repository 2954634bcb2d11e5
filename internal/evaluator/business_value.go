package evaluator

import (
	"fmt"
)

// BusinessValue scores whether a response actually advances the customer's
// business need: it addresses the scenario's query intent, offers concrete
// next steps, and demonstrates command of the scenario's domain facts.
//
// Point budget: objective 0-4, actionability 0-3, domain knowledge 0-3,
// for a 0-10 total. Grounded tool usage can add a half-point bonus; the
// total is capped at 10.
type BusinessValue struct {
	weight float64
}

func NewBusinessValue(weight float64) *BusinessValue {
	return &BusinessValue{weight: weight}
}

func (e *BusinessValue) Name() string    { return NameBusinessValue }
func (e *BusinessValue) Weight() float64 { return e.weight }

var actionIndicators = []string{
	"next step", "recommend", "schedule", "you can", "we can", "i can",
	"contact", "book", "sign up", "reach out", "follow up", "set up",
	"here's how", "to get started", "i've created", "i have created",
}

func (e *BusinessValue) Evaluate(in *Input) (*Result, error) {
	if in == nil || in.Scenario == nil {
		return nil, fmt.Errorf("evaluator: %s: nil input", e.Name())
	}

	objective := e.scoreObjective(in)
	actionable := e.scoreActionability(in.Response)
	knowledge := e.scoreDomainKnowledge(in)

	bonus := 0.0
	if in.Turn != nil && in.Turn.ExpectsTools() {
		expected := make(map[string]bool)
		for _, name := range in.Turn.ExpectedToolNames() {
			expected[name] = true
		}
		for _, c := range in.ToolCalls {
			if expected[c.Name] && !c.Result.IsError() {
				bonus = 0.5
				break
			}
		}
	}

	return &Result{
		Score: clampScore(objective + actionable + knowledge + bonus),
		SubMetrics: map[string]float64{
			"objective":        objective,
			"actionability":    actionable,
			"domain_knowledge": knowledge,
		},
	}, nil
}

// scoreObjective measures coverage of the scenario's query intent, falling
// back to the turn's user message when no intent is authored.
func (e *BusinessValue) scoreObjective(in *Input) float64 {
	objective := in.Scenario.GroundTruth.QueryIntent
	if objective == "" {
		objective = in.LastUserMessage()
	}
	if objective == "" {
		return 2.0
	}
	coverage := termCoverage(in.Response, objective)
	switch {
	case coverage >= 0.9:
		return 4.0
	case coverage >= 0.7:
		return 3.0
	case coverage >= 0.5:
		return 2.0
	case coverage >= 0.3:
		return 1.0
	default:
		return 0.0
	}
}

func (e *BusinessValue) scoreActionability(text string) float64 {
	hits := countAny(text, actionIndicators)
	switch {
	case hits >= 3:
		return 3.0
	case hits == 2:
		return 2.0
	case hits == 1:
		return 1.0
	default:
		return 0.0
	}
}

// scoreDomainKnowledge measures how many scenario-wide facts the response
// reflects.
func (e *BusinessValue) scoreDomainKnowledge(in *Input) float64 {
	facts := in.Scenario.GroundTruth.Facts
	if len(facts) == 0 {
		return 2.0
	}
	covered := 0
	for _, fact := range facts {
		if mentions(in.Response, fact) {
			covered++
		}
	}
	ratio := float64(covered) / float64(len(facts))
	switch {
	case ratio >= 0.8:
		return 3.0
	case ratio >= 0.5:
		return 2.0
	case ratio > 0:
		return 1.0
	default:
		return 0.0
	}
}
