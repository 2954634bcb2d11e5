package pipeline

import (
	"context"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/stellarlinkco/bizbench/internal/evaluator"
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/runner"
	"github.com/stellarlinkco/bizbench/internal/scenario"
)

// staticProvider answers every turn with the same text and never calls tools.
type staticProvider struct {
	name  string
	usage llm.UsageStats
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) GenerateResponse(_ context.Context, _ []llm.Message, _ []llm.ToolDefinition) (*llm.Response, error) {
	return &llm.Response{Content: "Thank you for reaching out. We recommend our standard plan."}, nil
}

func (p *staticProvider) TokenCount(text string) int { return len(text) / 4 }
func (p *staticProvider) Usage() *llm.UsageStats     { return &p.usage }

func testScenarios() []*scenario.Scenario {
	return []*scenario.Scenario{
		{
			ID:       "s1",
			Name:     "one",
			Category: "sales",
			Turns:    []scenario.Turn{{UserMessage: "hello"}},
		},
		{
			ID:       "s2",
			Name:     "two",
			Category: "support",
			Turns:    []scenario.Turn{{UserMessage: "help me"}},
		},
	}
}

func TestNewValidation(t *testing.T) {
	providers := []llm.Provider{&staticProvider{name: "m"}}
	scenarios := testScenarios()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"no models", Config{Scenarios: scenarios, Runs: 1}},
		{"no scenarios", Config{Providers: providers, Runs: 1}},
		{"zero runs", Config{Providers: providers, Scenarios: scenarios}},
		{"parallel without workers", Config{Providers: providers, Scenarios: scenarios, Runs: 1, Parallel: true}},
		{"negative weight", Config{Providers: providers, Scenarios: scenarios, Runs: 1,
			Weights: map[string]float64{evaluator.NameToolUsage: -1}}},
	}
	for _, tc := range cases {
		if _, err := New(tc.cfg); err == nil {
			t.Errorf("%s: New() accepted invalid config", tc.name)
		}
	}

	if _, err := New(Config{Providers: providers, Scenarios: scenarios, Runs: 1}); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestExecuteCrossProduct(t *testing.T) {
	cfg := Config{
		Providers: []llm.Provider{&staticProvider{name: "m1"}, &staticProvider{name: "m2"}},
		Scenarios: testScenarios(),
		Runs:      3,
		Seed:      11,
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	report, err := p.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Results) != 2*2*3 {
		t.Fatalf("results = %d, want 12", len(report.Results))
	}
	if report.RunID == "" {
		t.Error("empty run id")
	}

	// every (model, scenario, run) triple appears exactly once
	seen := make(map[[3]any]bool)
	for _, res := range report.Results {
		key := [3]any{res.Model, res.ScenarioID, res.RunIndex}
		if seen[key] {
			t.Errorf("duplicate unit %v", key)
		}
		seen[key] = true
		if res.Status != runner.StatusCompleted {
			t.Errorf("unit %v status = %s (%s)", key, res.Status, res.FailureDetail)
		}
	}

	ms := report.Summary.Models["m1"]
	if ms == nil || ms.Attempted != 6 || ms.Completed != 6 {
		t.Errorf("m1 summary = %+v", ms)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	base := Config{
		Providers: []llm.Provider{&staticProvider{name: "m1"}},
		Scenarios: testScenarios(),
		Runs:      2,
		Seed:      42,
	}
	seq, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	seqReport, err := seq.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	parCfg := base
	parCfg.Parallel = true
	parCfg.Workers = 4
	par, err := New(parCfg)
	if err != nil {
		t.Fatal(err)
	}
	parReport, err := par.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(seqReport.Summary, parReport.Summary) {
		t.Errorf("summaries differ:\nseq: %+v\npar: %+v", seqReport.Summary, parReport.Summary)
	}
}

// echoProvider quotes the last user message back, so every response carries
// the identity of the conversation it was generated for.
type echoProvider struct {
	name  string
	usage llm.UsageStats
}

func (p *echoProvider) Name() string { return p.name }

func (p *echoProvider) GenerateResponse(_ context.Context, messages []llm.Message, _ []llm.ToolDefinition) (*llm.Response, error) {
	last := ""
	for _, m := range messages {
		if m.Role == llm.RoleUser {
			last = m.Content
		}
	}
	return &llm.Response{Content: "regarding " + last + ", we can help."}, nil
}

func (p *echoProvider) TokenCount(text string) int { return len(text) / 4 }
func (p *echoProvider) Usage() *llm.UsageStats     { return &p.usage }

func TestParallelUnitsAreIsolated(t *testing.T) {
	words := []string{"aurora", "basalt", "cobalt", "drift"}
	scenarios := make([]*scenario.Scenario, len(words))
	for i, w := range words {
		scenarios[i] = &scenario.Scenario{
			ID:       "iso-" + w,
			Name:     w,
			Category: "sales",
			Turns:    []scenario.Turn{{UserMessage: "question about " + w}},
		}
	}

	p, err := New(Config{
		Providers: []llm.Provider{&echoProvider{name: "m1"}},
		Scenarios: scenarios,
		Runs:      3,
		Parallel:  true,
		Workers:   8,
	})
	if err != nil {
		t.Fatal(err)
	}
	report, err := p.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != len(words)*3 {
		t.Fatalf("results = %d", len(report.Results))
	}

	for _, res := range report.Results {
		if res.Status != runner.StatusCompleted {
			t.Fatalf("unit %s/%d status = %s (%s)", res.ScenarioID, res.RunIndex, res.Status, res.FailureDetail)
		}
		// one user message and one assistant reply, nothing borrowed
		if len(res.Transcript) != 2 {
			t.Fatalf("unit %s/%d transcript has %d messages", res.ScenarioID, res.RunIndex, len(res.Transcript))
		}
		own := strings.TrimPrefix(res.ScenarioID, "iso-")
		if !strings.Contains(res.Transcript[0].Content, own) || !strings.Contains(res.Transcript[1].Content, own) {
			t.Errorf("unit %s/%d transcript lost its own topic: %+v", res.ScenarioID, res.RunIndex, res.Transcript)
		}
		for _, w := range words {
			if w == own {
				continue
			}
			for i, msg := range res.Transcript {
				if strings.Contains(msg.Content, w) {
					t.Errorf("unit %s/%d message %d mentions %q from another unit: %q",
						res.ScenarioID, res.RunIndex, i, w, msg.Content)
				}
			}
		}
	}
}

func makeResult(model, scenarioID, category string, status runner.Status, overall float64) *runner.RunResult {
	return &runner.RunResult{
		Model:          model,
		ScenarioID:     scenarioID,
		Category:       category,
		Status:         status,
		OverallScore:   overall,
		CategoryScores: map[string]float64{evaluator.NameResponseQuality: overall},
	}
}

func TestSummarizeSuccessRate(t *testing.T) {
	results := []*runner.RunResult{
		makeResult("m", "s1", "sales", runner.StatusCompleted, 8),
		makeResult("m", "s1", "sales", runner.StatusFailed, 0),
		makeResult("m", "s1", "sales", runner.StatusAborted, 0),
		makeResult("m", "s2", "support", runner.StatusCompleted, 6),
	}
	s := Summarize(results)

	if got := s.SuccessRate["sales"]; got < 0.333 || got > 0.334 {
		t.Errorf("sales success rate = %v, want 1/3", got)
	}
	if got := s.SuccessRate["support"]; got != 1 {
		t.Errorf("support success rate = %v, want 1", got)
	}

	ms := s.Models["m"]
	if ms.Attempted != 4 || ms.Completed != 2 || ms.Failed != 1 || ms.Aborted != 1 {
		t.Errorf("model counts = %+v", ms)
	}
	// failed/aborted runs are excluded from score averages
	if ms.OverallScore != 7 {
		t.Errorf("OverallScore = %v, want 7", ms.OverallScore)
	}
	if ms.ScenarioScores["s1"] != 8 || ms.ScenarioScores["s2"] != 6 {
		t.Errorf("ScenarioScores = %v", ms.ScenarioScores)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	results := []*runner.RunResult{
		makeResult("m1", "s1", "sales", runner.StatusCompleted, 8),
		makeResult("m1", "s2", "support", runner.StatusCompleted, 4),
		makeResult("m2", "s1", "sales", runner.StatusFailed, 0),
		makeResult("m2", "s2", "support", runner.StatusCompleted, 9),
	}
	want := Summarize(results)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]*runner.RunResult, len(results))
		copy(shuffled, results)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if got := Summarize(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("summary depends on order:\ngot:  %+v\nwant: %+v", got, want)
		}
	}
}

func TestUnitSeedDerivation(t *testing.T) {
	cfg := Config{
		Providers: []llm.Provider{&staticProvider{name: "m1"}},
		Scenarios: testScenarios(),
		Runs:      1,
		Seed:      99,
	}
	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	u1 := unit{provider: cfg.Providers[0], scenario: cfg.Scenarios[0], runIndex: 0}
	u2 := unit{provider: cfg.Providers[0], scenario: cfg.Scenarios[1], runIndex: 0}
	if p.unitSeed(u1) == p.unitSeed(u2) {
		t.Error("different scenarios share a unit seed")
	}
	if p.unitSeed(u1) != p.unitSeed(u1) {
		t.Error("unit seed not stable")
	}

	p.cfg.Seed = 0
	if p.unitSeed(u1) != 0 {
		t.Error("zero benchmark seed must stay zero (time-based)")
	}
}
