package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/stellarlinkco/bizbench/internal/evaluator"
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// DefaultMaxToolRounds caps tool-resolution rounds within a single turn.
const DefaultMaxToolRounds = 3

// Runner drives one model through scripted scenarios and scores each turn.
// A Runner is stateless across runs and safe for concurrent use.
type Runner struct {
	evaluators    []evaluator.Evaluator
	maxToolRounds int
}

func New(evaluators []evaluator.Evaluator, maxToolRounds int) *Runner {
	if maxToolRounds <= 0 {
		maxToolRounds = DefaultMaxToolRounds
	}
	return &Runner{evaluators: evaluators, maxToolRounds: maxToolRounds}
}

// Run executes one scripted conversation. The returned RunResult always has
// a terminal status; execution faults are data on the result, never a panic.
func (r *Runner) Run(ctx context.Context, provider llm.Provider, sc *scenario.Scenario, tools map[string]tool.Tool) *RunResult {
	res := &RunResult{Status: StatusFailed}
	if sc != nil {
		res.ScenarioID = sc.ID
		res.ScenarioName = sc.Name
		res.Category = sc.Category
	}
	if provider != nil {
		res.Model = provider.Name()
	}
	if r == nil || provider == nil || sc == nil {
		res.FailureDetail = "runner: nil provider or scenario"
		return res
	}

	start := time.Now()
	defer func() { res.DurationMs = time.Since(start).Milliseconds() }()

	defs := toolDefinitions(tools)
	state := newConversationState()

	limit := sc.TurnLimit()
	for i := 0; i < limit; i++ {
		turn := &sc.Turns[i]
		state.beginTurn()
		state.append(llm.Message{Role: llm.RoleUser, Content: turn.UserMessage})

		final, err := r.resolveTurn(ctx, provider, state, tools, defs)
		if err != nil {
			res.FailureDetail = err.Error()
			res.Transcript = state.history()
			res.ToolInvocations = state.records
			return res
		}
		if final == nil {
			// Round cap exhausted with tools still requested.
			res.Status = StatusAborted
			res.FailureDetail = fmt.Sprintf("runner: tool round cap (%d) exhausted on turn %d", r.maxToolRounds, i)
			res.Transcript = state.history()
			res.ToolInvocations = state.records
			return res
		}

		res.InputTokens += final.InputTokens
		res.OutputTokens += final.OutputTokens
		res.TurnScores = append(res.TurnScores, r.scoreTurn(sc, turn, i, state, final))
		res.TurnsCompleted++
	}

	res.Status = StatusCompleted
	res.Transcript = state.history()
	res.ToolInvocations = state.records
	res.CategoryScores, res.OverallScore = aggregateScores(r.evaluators, res.TurnScores)
	return res
}

// resolveTurn runs the model/tool loop for one scripted turn. It returns the
// final (tool-free) response, or nil when the round cap is exhausted with
// the model still requesting tools.
func (r *Runner) resolveTurn(ctx context.Context, provider llm.Provider, state *conversationState, tools map[string]tool.Tool, defs []llm.ToolDefinition) (*llm.Response, error) {
	for round := 0; ; round++ {
		resp, err := provider.GenerateResponse(ctx, state.history(), defs)
		if err != nil {
			return nil, fmt.Errorf("runner: provider %s: %w", provider.Name(), err)
		}

		state.append(llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		if len(resp.ToolCalls) == 0 {
			return resp, nil
		}
		if round >= r.maxToolRounds {
			return nil, nil
		}

		for ordinal, call := range resp.ToolCalls {
			rec := resolveCall(call, ordinal, tools)
			state.record(rec)
			state.append(llm.Message{
				Role:       llm.RoleTool,
				Content:    rec.Result.JSON(),
				ToolCallID: rec.CallID,
				ToolName:   rec.Name,
			})
		}
	}
}

// resolveCall turns one model tool-call request into an invocation record.
// Unknown names and unparseable arguments produce error results without
// reaching a tool body.
func resolveCall(call llm.ToolUse, ordinal int, tools map[string]tool.Tool) tool.InvocationRecord {
	rec := tool.InvocationRecord{
		CallID:    call.ID,
		Name:      call.Name,
		Arguments: call.Arguments,
	}
	if rec.CallID == "" {
		rec.CallID = fmt.Sprintf("call_%d", ordinal+1)
	}

	t, known := tools[call.Name]
	if !known {
		rec.Result = tool.Failure("ToolNotFound", fmt.Sprintf("no tool named %q is available", call.Name))
		return rec
	}
	if call.Arguments == nil && call.RawArguments != "" {
		rec.Result = tool.Failure("InvalidArguments", fmt.Sprintf("arguments for %q are not valid JSON", call.Name))
		return rec
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	started := time.Now()
	rec.Result = t.Call(args)
	rec.LatencyMs = time.Since(started).Milliseconds()
	rec.Valid = true
	return rec
}

// scoreTurn applies every evaluator to the completed turn. Evaluator errors
// become missing contributions on the TurnScore.
func (r *Runner) scoreTurn(sc *scenario.Scenario, turn *scenario.Turn, turnIndex int, state *conversationState, final *llm.Response) TurnScore {
	ts := TurnScore{
		TurnIndex: turnIndex,
		Scores:    make(map[string]float64, len(r.evaluators)),
	}
	in := &evaluator.Input{
		Response:     final.Content,
		ToolCalls:    state.turnRecords(),
		TurnIndex:    turnIndex,
		History:      state.history(),
		Scenario:     sc,
		Turn:         turn,
		LatencyMs:    final.LatencyMs,
		InputTokens:  final.InputTokens,
		OutputTokens: final.OutputTokens,
	}
	for _, ev := range r.evaluators {
		out, err := ev.Evaluate(in)
		if err != nil {
			if ts.Errors == nil {
				ts.Errors = make(map[string]string)
			}
			ts.Errors[ev.Name()] = err.Error()
			continue
		}
		ts.Scores[ev.Name()] = out.Score
		if len(out.SubMetrics) > 0 {
			if ts.SubMetrics == nil {
				ts.SubMetrics = make(map[string]map[string]float64)
			}
			ts.SubMetrics[ev.Name()] = out.SubMetrics
		}
	}
	return ts
}

// aggregateScores reduces turn scores to per-evaluator means and a
// weight-normalized overall score. Evaluators with no scored turns are
// excluded from both, and the weight denominator shrinks accordingly.
func aggregateScores(evaluators []evaluator.Evaluator, turns []TurnScore) (map[string]float64, float64) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, ts := range turns {
		for name, score := range ts.Scores {
			sums[name] += score
			counts[name]++
		}
	}

	categories := make(map[string]float64, len(sums))
	weighted, totalWeight := 0.0, 0.0
	for _, ev := range evaluators {
		n := counts[ev.Name()]
		if n == 0 {
			continue
		}
		mean := sums[ev.Name()] / float64(n)
		categories[ev.Name()] = mean
		weighted += ev.Weight() * mean
		totalWeight += ev.Weight()
	}
	if totalWeight == 0 {
		return categories, 0
	}
	return categories, weighted / totalWeight
}

func toolDefinitions(tools map[string]tool.Tool) []llm.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		d := t.Definition()
		defs = append(defs, llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema(),
		})
	}
	return defs
}
