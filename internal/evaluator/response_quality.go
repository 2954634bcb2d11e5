package evaluator

import (
	"fmt"
	"strings"
)

// ResponseQuality scores factual accuracy against the turn's expected facts,
// completeness against required elements, relevance to the user's query, and
// consistency with earlier assistant statements.
//
// Point budget: accuracy 0-4, completeness 0-3, relevance 0-2, consistency
// 0-1, for a 0-10 total.
type ResponseQuality struct {
	weight float64
}

func NewResponseQuality(weight float64) *ResponseQuality {
	return &ResponseQuality{weight: weight}
}

func (e *ResponseQuality) Name() string    { return NameResponseQuality }
func (e *ResponseQuality) Weight() float64 { return e.weight }

func (e *ResponseQuality) Evaluate(in *Input) (*Result, error) {
	if in == nil || in.Turn == nil {
		return nil, fmt.Errorf("evaluator: %s: nil input", e.Name())
	}

	accuracy, factErrors := e.scoreAccuracy(in.Response, in.Turn.ExpectedFacts)
	completeness, missing := e.scoreCompleteness(in.Response, in.Turn.RequiredElements)
	relevance := e.scoreRelevance(in)
	consistency := e.scoreConsistency(in, factErrors)

	total := clampScore(accuracy + completeness + relevance + consistency)

	var notes []string
	if factErrors > 0 {
		notes = append(notes, fmt.Sprintf("%d expected facts not stated", factErrors))
	}
	if len(missing) > 0 {
		notes = append(notes, "missing elements: "+strings.Join(missing, ", "))
	}
	explanation := "response matches the turn's ground truth"
	if len(notes) > 0 {
		explanation = strings.Join(notes, "; ")
	}

	return &Result{
		Score: total,
		SubMetrics: map[string]float64{
			"accuracy":     accuracy,
			"completeness": completeness,
			"relevance":    relevance,
			"consistency":  consistency,
		},
		Explanation: explanation,
	}, nil
}

// scoreAccuracy checks each expected fact. A fact of the form "key: value"
// requires both halves to appear; a bare fact just needs its key terms.
func (e *ResponseQuality) scoreAccuracy(text string, facts []string) (float64, int) {
	if len(facts) == 0 {
		return 4.0, 0
	}
	correct := 0
	for _, fact := range facts {
		key, value, hasValue := strings.Cut(fact, ":")
		if !hasValue {
			if mentions(text, fact) {
				correct++
			}
			continue
		}
		if mentions(text, strings.TrimSpace(key)) && mentions(text, strings.TrimSpace(value)) {
			correct++
		}
	}
	errors := len(facts) - correct
	ratio := float64(correct) / float64(len(facts))
	switch {
	case ratio >= 0.9:
		return 4.0, errors
	case ratio >= 0.8:
		return 3.0, errors
	case ratio >= 0.6:
		return 2.0, errors
	case ratio >= 0.4:
		return 1.0, errors
	default:
		return 0.0, errors
	}
}

func (e *ResponseQuality) scoreCompleteness(text string, elements []string) (float64, []string) {
	if len(elements) == 0 {
		return 3.0, nil
	}
	included := 0
	var missing []string
	for _, el := range elements {
		if mentions(text, el) {
			included++
		} else {
			missing = append(missing, el)
		}
	}
	ratio := float64(included) / float64(len(elements))
	switch {
	case ratio == 1.0:
		return 3.0, nil
	case ratio >= 0.8:
		return 2.0, missing
	case ratio >= 0.5:
		return 1.0, missing
	default:
		return 0.0, missing
	}
}

// scoreRelevance measures query-term coverage and penalizes off-topic drift.
func (e *ResponseQuality) scoreRelevance(in *Input) float64 {
	reference := in.LastUserMessage()
	if reference == "" && in.Scenario != nil {
		reference = in.Scenario.GroundTruth.QueryIntent
	}
	if reference == "" {
		return 2.0
	}
	coverage := termCoverage(in.Response, reference)

	terms := keyTerms(reference)
	sentences := splitSentences(in.Response)
	offTopic := 0
	for _, s := range sentences {
		lower := strings.ToLower(s)
		hit := false
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hit = true
				break
			}
		}
		if !hit {
			offTopic++
		}
	}
	offTopicRatio := 0.0
	if len(sentences) > 0 {
		offTopicRatio = float64(offTopic) / float64(len(sentences))
	}

	switch {
	case coverage >= 0.8 && offTopicRatio <= 0.3:
		return 2.0
	case coverage >= 0.5 && offTopicRatio <= 0.6:
		return 1.0
	default:
		return 0.0
	}
}

// scoreConsistency awards the point unless the response contradicts a prior
// assistant statement (same subject, negation flips) or accumulated factual
// errors on this turn.
func (e *ResponseQuality) scoreConsistency(in *Input, factErrors int) float64 {
	prior := in.priorAssistantMessages()
	if len(prior) == 0 {
		return 1.0
	}
	if factErrors >= 3 {
		return 0.0
	}
	current := splitSentences(in.Response)
	for _, stmt := range current {
		if len(strings.Fields(stmt)) < 5 {
			continue
		}
		for _, prev := range prior {
			for _, prevStmt := range splitSentences(prev) {
				if len(strings.Fields(prevStmt)) < 5 {
					continue
				}
				if contradictory(stmt, prevStmt) {
					return 0.0
				}
			}
		}
	}
	return 1.0
}

var negations = []string{"not ", "no ", "never ", "cannot ", "can't ", "won't ", "isn't ", "doesn't "}

// contradictory flags statement pairs that share most key terms but differ
// in negation. Crude, but catches direct reversals.
func contradictory(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	negA := countAny(la, negations) > 0
	negB := countAny(lb, negations) > 0
	if negA == negB {
		return false
	}
	return termCoverage(la, lb) >= 0.7 && termCoverage(lb, la) >= 0.7
}
