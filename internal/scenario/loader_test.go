package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validScenario = `
scenario_id: s1
name: Pricing inquiry
category: sales
turns:
  - user_message: "What does the enterprise tier cost?"
    expected_tools:
      - tool: pricing_calculator
        arguments:
          product_id: datainsight
  - user_message: "Thanks!"
`

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", validScenario)
	writeScenario(t, dir, "b.yaml", strings.ReplaceAll(validScenario, "s1", "s2"))
	writeScenario(t, dir, "notes.txt", "not a scenario")

	scenarios, warnings, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(scenarios) != 2 || len(warnings) != 0 {
		t.Fatalf("scenarios = %d, warnings = %v", len(scenarios), warnings)
	}
	if scenarios[0].ID != "s1" || scenarios[1].ID != "s2" {
		t.Errorf("order = %s, %s", scenarios[0].ID, scenarios[1].ID)
	}
	if got := scenarios[0].Turns[0].ExpectedTools[0].Tool; got != "pricing_calculator" {
		t.Errorf("expected tool = %q", got)
	}
}

func TestLoadDirInvalidScenarioIsWarning(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "good.yaml", validScenario)
	// zero-turn scenario is a configuration error, reported but not fatal
	writeScenario(t, dir, "empty.yaml", `
scenario_id: broken
name: Broken
category: sales
turns: []
`)

	scenarios, warnings, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(scenarios) != 1 {
		t.Fatalf("scenarios = %d", len(scenarios))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "zero scripted turns") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestLoadDirDuplicateIDFails(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", validScenario)
	writeScenario(t, dir, "b.yaml", validScenario)

	if _, _, err := LoadDir(dir); err == nil || !strings.Contains(err.Error(), "duplicate id") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadDirAllInvalidFails(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "scenario_id: x\n")

	if _, _, err := LoadDir(dir); err == nil {
		t.Fatal("LoadDir accepted a directory with no valid scenarios")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Scenario {
		return &Scenario{
			ID:       "s1",
			Name:     "n",
			Category: "sales",
			Turns:    []Turn{{UserMessage: "hi"}},
		}
	}

	if err := Validate(base()); err != nil {
		t.Errorf("valid scenario rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"missing id", func(s *Scenario) { s.ID = "" }},
		{"missing name", func(s *Scenario) { s.Name = "" }},
		{"missing category", func(s *Scenario) { s.Category = "" }},
		{"zero turns", func(s *Scenario) { s.Turns = nil }},
		{"empty user message", func(s *Scenario) { s.Turns[0].UserMessage = "  " }},
		{"negative max turns", func(s *Scenario) { s.MaxTurns = -1 }},
	}
	for _, tc := range cases {
		s := base()
		tc.mutate(s)
		if err := Validate(s); err == nil {
			t.Errorf("%s: Validate accepted invalid scenario", tc.name)
		}
	}
}

func TestTurnLimit(t *testing.T) {
	s := &Scenario{Turns: make([]Turn, 5)}
	if got := s.TurnLimit(); got != 5 {
		t.Errorf("TurnLimit = %d", got)
	}
	s.MaxTurns = 3
	if got := s.TurnLimit(); got != 3 {
		t.Errorf("TurnLimit with cap = %d", got)
	}
	s.MaxTurns = 10
	if got := s.TurnLimit(); got != 5 {
		t.Errorf("TurnLimit with high cap = %d", got)
	}
}
