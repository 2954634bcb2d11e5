package scenario

import "strings"

// Scenario is an authored multi-turn business conversation script. Loaded
// once per benchmark invocation and read-only thereafter; safe to share
// across concurrent units.
type Scenario struct {
	ID            string      `yaml:"scenario_id" json:"scenario_id"`
	Name          string      `yaml:"name" json:"name"`
	Description   string      `yaml:"description,omitempty" json:"description,omitempty"`
	Category      string      `yaml:"category" json:"category"`
	Complexity    string      `yaml:"complexity,omitempty" json:"complexity,omitempty"` // simple, medium, complex
	ToolsRequired []string    `yaml:"tools_required,omitempty" json:"tools_required,omitempty"`
	MaxTurns      int         `yaml:"max_turns,omitempty" json:"max_turns,omitempty"`
	Turns         []Turn      `yaml:"turns" json:"turns"`
	GroundTruth   GroundTruth `yaml:"ground_truth,omitempty" json:"ground_truth,omitempty"`
}

// Turn is one scripted user message plus the ground truth the response to
// it is scored against.
type Turn struct {
	UserMessage      string         `yaml:"user_message" json:"user_message"`
	ExpectedTools    []ExpectedCall `yaml:"expected_tools,omitempty" json:"expected_tools,omitempty"`
	ExpectedFacts    []string       `yaml:"expected_facts,omitempty" json:"expected_facts,omitempty"`
	RequiredElements []string       `yaml:"required_elements,omitempty" json:"required_elements,omitempty"`
}

// ExpectedCall names a tool the model is expected to invoke on a turn,
// optionally with argument values it should supply.
type ExpectedCall struct {
	Tool      string         `yaml:"tool" json:"tool"`
	Arguments map[string]any `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// GroundTruth holds scenario-wide facts used by evaluators.
type GroundTruth struct {
	QueryIntent string   `yaml:"query_intent,omitempty" json:"query_intent,omitempty"`
	Facts       []string `yaml:"facts,omitempty" json:"facts,omitempty"`
}

// TurnLimit is the effective scripted-turn bound: scenario length capped by
// MaxTurns when set.
func (s *Scenario) TurnLimit() int {
	if s == nil {
		return 0
	}
	n := len(s.Turns)
	if s.MaxTurns > 0 && s.MaxTurns < n {
		return s.MaxTurns
	}
	return n
}

// ExpectsTools reports whether the turn's ground truth names any tools.
func (t *Turn) ExpectsTools() bool {
	return t != nil && len(t.ExpectedTools) > 0
}

// ExpectedToolNames lists the expected tool names for a turn.
func (t *Turn) ExpectedToolNames() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.ExpectedTools))
	for _, c := range t.ExpectedTools {
		if name := strings.TrimSpace(c.Tool); name != "" {
			out = append(out, name)
		}
	}
	return out
}
