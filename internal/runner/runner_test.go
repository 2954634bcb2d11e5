package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stellarlinkco/bizbench/internal/evaluator"
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// scriptedProvider replays canned responses in order.
type scriptedProvider struct {
	name      string
	responses []*llm.Response
	err       error
	calls     int
	usage     llm.UsageStats
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) GenerateResponse(_ context.Context, _ []llm.Message, _ []llm.ToolDefinition) (*llm.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.calls >= len(p.responses) {
		return &llm.Response{Content: "done"}, nil
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

func (p *scriptedProvider) TokenCount(text string) int { return len(text) / 4 }
func (p *scriptedProvider) Usage() *llm.UsageStats     { return &p.usage }

// fixedEvaluator always returns the same score, or an error.
type fixedEvaluator struct {
	name   string
	weight float64
	score  float64
	err    error
}

func (e *fixedEvaluator) Name() string    { return e.name }
func (e *fixedEvaluator) Weight() float64 { return e.weight }

func (e *fixedEvaluator) Evaluate(*evaluator.Input) (*evaluator.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &evaluator.Result{Score: e.score}, nil
}

func echoTool(name string) tool.Tool {
	return tool.NewSimTool(tool.Definition{Name: name}, 0, 1, func(args map[string]any) (any, error) {
		return args, nil
	})
}

func twoTurnScenario() *scenario.Scenario {
	return &scenario.Scenario{
		ID:       "s1",
		Name:     "two turns",
		Category: "sales",
		Turns: []scenario.Turn{
			{UserMessage: "first question"},
			{UserMessage: "second question"},
		},
	}
}

func TestRunCompleted(t *testing.T) {
	p := &scriptedProvider{
		name: "m1",
		responses: []*llm.Response{
			{Content: "answer one", InputTokens: 10, OutputTokens: 5},
			{Content: "answer two", InputTokens: 12, OutputTokens: 6},
		},
	}
	evals := []evaluator.Evaluator{
		&fixedEvaluator{name: "quality", weight: 2, score: 8},
		&fixedEvaluator{name: "style", weight: 1, score: 5},
	}
	res := New(evals, 3).Run(context.Background(), p, twoTurnScenario(), nil)

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %s (%s)", res.Status, res.FailureDetail)
	}
	if res.TurnsCompleted != 2 || len(res.TurnScores) != 2 {
		t.Fatalf("turns = %d, scores = %d", res.TurnsCompleted, len(res.TurnScores))
	}
	if res.InputTokens != 22 || res.OutputTokens != 11 {
		t.Errorf("tokens = %d/%d", res.InputTokens, res.OutputTokens)
	}
	// (2*8 + 1*5) / 3
	if res.OverallScore != 7 {
		t.Errorf("OverallScore = %v, want 7", res.OverallScore)
	}
	if res.CategoryScores["quality"] != 8 || res.CategoryScores["style"] != 5 {
		t.Errorf("CategoryScores = %v", res.CategoryScores)
	}
	// transcript: user, assistant, user, assistant
	if len(res.Transcript) != 4 {
		t.Errorf("transcript length = %d", len(res.Transcript))
	}
}

func TestRunProviderFailure(t *testing.T) {
	p := &scriptedProvider{name: "m1", err: errors.New("rate limited")}
	res := New(nil, 3).Run(context.Background(), p, twoTurnScenario(), nil)

	if res.Status != StatusFailed {
		t.Fatalf("Status = %s", res.Status)
	}
	if !strings.Contains(res.FailureDetail, "rate limited") {
		t.Errorf("FailureDetail = %q", res.FailureDetail)
	}
	if res.OverallScore != 0 || res.CategoryScores != nil {
		t.Errorf("failed run carries scores: %v / %v", res.OverallScore, res.CategoryScores)
	}
}

func TestRunToolLoop(t *testing.T) {
	p := &scriptedProvider{
		name: "m1",
		responses: []*llm.Response{
			{ToolCalls: []llm.ToolUse{{ID: "abc", Name: "echo", Arguments: map[string]any{"k": "v"}}}},
			{Content: "used the tool"},
			{Content: "plain answer"},
		},
	}
	tools := map[string]tool.Tool{"echo": echoTool("echo")}
	res := New(nil, 3).Run(context.Background(), p, twoTurnScenario(), tools)

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %s (%s)", res.Status, res.FailureDetail)
	}
	if len(res.ToolInvocations) != 1 {
		t.Fatalf("invocations = %d", len(res.ToolInvocations))
	}
	rec := res.ToolInvocations[0]
	if rec.CallID != "abc" || !rec.Valid || rec.Result.IsError() {
		t.Errorf("record = %+v", rec)
	}

	// transcript: user, assistant(tool call), tool, assistant, user, assistant
	if len(res.Transcript) != 6 {
		t.Fatalf("transcript length = %d", len(res.Transcript))
	}
	toolMsg := res.Transcript[2]
	if toolMsg.Role != llm.RoleTool || toolMsg.ToolCallID != "abc" {
		t.Errorf("tool message = %+v", toolMsg)
	}
}

func TestRunRoundCapAborts(t *testing.T) {
	call := llm.ToolUse{ID: "x", Name: "echo", Arguments: map[string]any{}}
	p := &scriptedProvider{
		name: "m1",
		responses: []*llm.Response{
			{ToolCalls: []llm.ToolUse{call}},
			{ToolCalls: []llm.ToolUse{call}},
			{ToolCalls: []llm.ToolUse{call}},
			{ToolCalls: []llm.ToolUse{call}},
			{ToolCalls: []llm.ToolUse{call}},
		},
	}
	tools := map[string]tool.Tool{"echo": echoTool("echo")}
	res := New(nil, 3).Run(context.Background(), p, twoTurnScenario(), tools)

	if res.Status != StatusAborted {
		t.Fatalf("Status = %s", res.Status)
	}
	if !strings.Contains(res.FailureDetail, "tool round cap") {
		t.Errorf("FailureDetail = %q", res.FailureDetail)
	}
	// 3 resolution rounds before the cap check fires
	if len(res.ToolInvocations) != 3 {
		t.Errorf("invocations = %d", len(res.ToolInvocations))
	}
}

func TestRunUnknownToolName(t *testing.T) {
	p := &scriptedProvider{
		name: "m1",
		responses: []*llm.Response{
			// typo'd tool name must yield an error result, not a crash
			{ToolCalls: []llm.ToolUse{{ID: "c1", Name: "scheudler", Arguments: map[string]any{}}}},
			{Content: "sorry, let me try differently"},
			{Content: "second answer"},
		},
	}
	tools := map[string]tool.Tool{"scheduler": echoTool("scheduler")}
	res := New(nil, 3).Run(context.Background(), p, twoTurnScenario(), tools)

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %s (%s)", res.Status, res.FailureDetail)
	}
	rec := res.ToolInvocations[0]
	if rec.Valid || rec.Result.Error != "ToolNotFound" {
		t.Errorf("record = %+v", rec)
	}
}

func TestRunMalformedArguments(t *testing.T) {
	p := &scriptedProvider{
		name: "m1",
		responses: []*llm.Response{
			{ToolCalls: []llm.ToolUse{{Name: "echo", Arguments: nil, RawArguments: `{"broken`}}},
			{Content: "recovered"},
			{Content: "second answer"},
		},
	}
	tools := map[string]tool.Tool{"echo": echoTool("echo")}
	res := New(nil, 3).Run(context.Background(), p, twoTurnScenario(), tools)

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %s (%s)", res.Status, res.FailureDetail)
	}
	rec := res.ToolInvocations[0]
	if rec.Valid || rec.Result.Error != "InvalidArguments" {
		t.Errorf("record = %+v", rec)
	}
	// missing call id synthesized from ordinal
	if rec.CallID != "call_1" {
		t.Errorf("CallID = %q", rec.CallID)
	}
}

func TestRunEvaluatorErrorIsMissingContribution(t *testing.T) {
	p := &scriptedProvider{
		name:      "m1",
		responses: []*llm.Response{{Content: "a"}, {Content: "b"}},
	}
	evals := []evaluator.Evaluator{
		&fixedEvaluator{name: "ok", weight: 1, score: 6},
		&fixedEvaluator{name: "broken", weight: 1, err: errors.New("boom")},
	}
	res := New(evals, 3).Run(context.Background(), p, twoTurnScenario(), nil)

	if res.Status != StatusCompleted {
		t.Fatalf("Status = %s", res.Status)
	}
	if res.TurnScores[0].Errors["broken"] == "" {
		t.Error("broken evaluator error not recorded")
	}
	if _, ok := res.TurnScores[0].Scores["broken"]; ok {
		t.Error("broken evaluator produced a score")
	}
	// overall excludes the broken evaluator's weight entirely
	if res.OverallScore != 6 {
		t.Errorf("OverallScore = %v, want 6", res.OverallScore)
	}
	if _, ok := res.CategoryScores["broken"]; ok {
		t.Error("broken evaluator appears in category scores")
	}
}

func TestRunNilGuards(t *testing.T) {
	res := New(nil, 0).Run(context.Background(), nil, nil, nil)
	if res.Status != StatusFailed || res.FailureDetail == "" {
		t.Errorf("result = %+v", res)
	}
}
