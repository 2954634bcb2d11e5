package evaluator

import (
	"fmt"
	"strings"

	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// ToolUsage scores whether the model picked the tools the turn expected,
// supplied the expected arguments, avoided redundant calls, and worked the
// results into its answer.
//
// Point budget: selection 0-3, parameters 0-3, efficiency 0-2,
// interpretation 0-2, for a 0-10 total.
type ToolUsage struct {
	weight float64
}

func NewToolUsage(weight float64) *ToolUsage {
	return &ToolUsage{weight: weight}
}

func (e *ToolUsage) Name() string    { return NameToolUsage }
func (e *ToolUsage) Weight() float64 { return e.weight }

func (e *ToolUsage) Evaluate(in *Input) (*Result, error) {
	if in == nil || in.Turn == nil {
		return nil, fmt.Errorf("evaluator: %s: nil input", e.Name())
	}
	expected := in.Turn.ExpectedTools
	actual := in.ToolCalls

	// Turns with no expected tools are pass/fail on restraint.
	if len(expected) == 0 {
		if len(actual) == 0 {
			return &Result{
				Score:       10,
				Explanation: "no tools expected or used",
				SubMetrics:  subMetrics(3, 3, 2, 2),
			}, nil
		}
		return &Result{
			Score:       0,
			Explanation: fmt.Sprintf("used %d tools when none were expected", len(actual)),
			SubMetrics:  subMetrics(0, 0, 0, 0),
		}, nil
	}
	if len(actual) == 0 {
		return &Result{
			Score:       0,
			Explanation: "no tools used when tools were expected",
			SubMetrics:  subMetrics(0, 0, 0, 0),
		}, nil
	}

	selection := e.scoreSelection(actual, expected)
	parameters := e.scoreParameters(actual, expected)
	efficiency := e.scoreEfficiency(actual, expected)
	interpretation := e.scoreInterpretation(in.Response, actual)

	return &Result{
		Score:      clampScore(selection + parameters + efficiency + interpretation),
		SubMetrics: subMetrics(selection, parameters, efficiency, interpretation),
	}, nil
}

func subMetrics(selection, parameters, efficiency, interpretation float64) map[string]float64 {
	return map[string]float64{
		"selection":      selection,
		"parameters":     parameters,
		"efficiency":     efficiency,
		"interpretation": interpretation,
	}
}

func (e *ToolUsage) scoreSelection(actual []tool.InvocationRecord, expected []scenario.ExpectedCall) float64 {
	actualNames := make(map[string]bool, len(actual))
	for _, c := range actual {
		actualNames[c.Name] = true
	}
	correct := 0
	expectedNames := make(map[string]bool, len(expected))
	for _, exp := range expected {
		expectedNames[exp.Tool] = true
		if actualNames[exp.Tool] {
			correct++
		}
	}
	unnecessary := 0
	for name := range actualNames {
		if !expectedNames[name] {
			unnecessary++
		}
	}
	coverage := float64(correct) / float64(len(expected))
	score := 3.0*coverage - 0.33*float64(unnecessary)
	if score < 0 {
		return 0
	}
	if score > 3 {
		return 3
	}
	return score
}

// scoreParameters compares arguments of expected tools that were actually
// called: exact value match counts full, supplying the key with a different
// value counts half.
func (e *ToolUsage) scoreParameters(actual []tool.InvocationRecord, expected []scenario.ExpectedCall) float64 {
	actualArgs := make(map[string]map[string]any, len(actual))
	for _, c := range actual {
		if _, ok := actualArgs[c.Name]; !ok {
			actualArgs[c.Name] = c.Arguments
		}
	}
	var perTool []float64
	for _, exp := range expected {
		args, called := actualArgs[exp.Tool]
		if !called {
			continue
		}
		if len(exp.Arguments) == 0 {
			perTool = append(perTool, 1.0)
			continue
		}
		matched := 0.0
		for key, want := range exp.Arguments {
			got, ok := args[key]
			if !ok {
				continue
			}
			if fmt.Sprint(got) == fmt.Sprint(want) {
				matched += 1.0
			} else {
				matched += 0.5
			}
		}
		perTool = append(perTool, matched/float64(len(exp.Arguments)))
	}
	if len(perTool) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range perTool {
		sum += v
	}
	return 3.0 * sum / float64(len(perTool))
}

// scoreEfficiency penalizes deviation from the expected call count and
// repeated calls to the same tool beyond two.
func (e *ToolUsage) scoreEfficiency(actual []tool.InvocationRecord, expected []scenario.ExpectedCall) float64 {
	diff := len(actual) - len(expected)
	if diff < 0 {
		diff = -diff
	}
	ratio := 1.0 - float64(diff)/float64(max(1, len(expected)))
	if ratio < 0 {
		ratio = 0
	}

	counts := make(map[string]int, len(actual))
	for _, c := range actual {
		counts[c.Name]++
	}
	penalty := 0.0
	for _, n := range counts {
		if n > 2 {
			penalty += 0.25 * float64(n-2)
		}
	}
	if penalty > 1 {
		penalty = 1
	}

	score := 2.0*ratio - penalty
	if score < 0 {
		return 0
	}
	return score
}

// scoreInterpretation checks whether distinctive values from successful tool
// results surface in the response text.
func (e *ToolUsage) scoreInterpretation(response string, actual []tool.InvocationRecord) float64 {
	considered := 0
	incorporated := 0
	for _, c := range actual {
		if c.Result.IsError() {
			continue
		}
		considered++
		if resultIncorporated(response, c.Result.Data) {
			incorporated++
		}
	}
	if considered == 0 {
		// Every call errored; interpretation is about acknowledging that.
		if countAny(response, []string{"unavailable", "try again", "error", "issue", "unable", "sorry"}) > 0 {
			return 2.0
		}
		return 0.0
	}
	return 2.0 * float64(incorporated) / float64(considered)
}

func resultIncorporated(response string, data any) bool {
	lower := strings.ToLower(response)
	switch v := data.(type) {
	case map[string]any:
		for _, value := range v {
			if resultIncorporated(response, value) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if resultIncorporated(response, item) {
				return true
			}
		}
	case string:
		if len(v) >= 4 && strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	case float64, int, int64:
		s := fmt.Sprint(v)
		if len(s) >= 2 && strings.Contains(lower, s) {
			return true
		}
	default:
		if data != nil {
			// Typed payloads (structs, typed slices) fall back to term overlap
			// against their rendered form.
			s := fmt.Sprint(data)
			if len(s) >= 4 && termCoverage(lower, s) >= 0.3 {
				return true
			}
		}
	}
	return false
}
