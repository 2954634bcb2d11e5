package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/stellarlinkco/bizbench/internal/evaluator"
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/runner"
	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// Config describes one benchmark invocation: which models run which
// scenarios, how many times, and how execution is scheduled.
type Config struct {
	Providers []llm.Provider
	Scenarios []*scenario.Scenario
	Runs      int

	Parallel bool
	Workers  int

	MaxToolRounds int
	ToolErrorRate float64
	// Seed drives tool error simulation. Zero selects time-based seeding;
	// any other value makes the whole benchmark reproducible.
	Seed int64

	// Weights override evaluator default weights by name.
	Weights map[string]float64
}

// Pipeline executes the models x scenarios x runs cross-product and reduces
// the results to a Summary.
type Pipeline struct {
	cfg    Config
	runner *runner.Runner
}

// New validates the configuration; invalid configurations refuse to start.
func New(cfg Config) (*Pipeline, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("pipeline: no models configured")
	}
	if len(cfg.Scenarios) == 0 {
		return nil, fmt.Errorf("pipeline: no scenarios configured")
	}
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("pipeline: run count %d, want >= 1", cfg.Runs)
	}
	if cfg.Parallel && cfg.Workers < 1 {
		return nil, fmt.Errorf("pipeline: parallel mode needs workers >= 1")
	}
	for name, w := range cfg.Weights {
		if w < 0 {
			return nil, fmt.Errorf("pipeline: negative weight %v for evaluator %q", w, name)
		}
	}

	evals := evaluator.DefaultSet(cfg.Weights)
	return &Pipeline{
		cfg:    cfg,
		runner: runner.New(evals, cfg.MaxToolRounds),
	}, nil
}

// unit is one cell of the cross-product.
type unit struct {
	provider llm.Provider
	scenario *scenario.Scenario
	runIndex int
}

// Report is the full outcome of one benchmark invocation.
type Report struct {
	RunID       string              `json:"run_id"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
	Results     []*runner.RunResult `json:"results"`
	Summary     *Summary            `json:"summary"`
}

// Execute runs every unit. Units are isolated: each owns its conversation
// state and tool set, and one unit's failure never cancels siblings. The
// scheduling mode only affects wall time, never results.
func (p *Pipeline) Execute(ctx context.Context) (*Report, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline: nil pipeline")
	}

	units := p.enumerate()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   make([]*runner.RunResult, len(units)),
	}

	if p.cfg.Parallel {
		if err := p.executeParallel(ctx, units, report.Results); err != nil {
			return nil, err
		}
	} else {
		for i, u := range units {
			report.Results[i] = p.executeUnit(ctx, u)
		}
	}

	report.CompletedAt = time.Now().UTC()
	report.Summary = Summarize(report.Results)
	return report, nil
}

func (p *Pipeline) enumerate() []unit {
	units := make([]unit, 0, len(p.cfg.Providers)*len(p.cfg.Scenarios)*p.cfg.Runs)
	for _, provider := range p.cfg.Providers {
		for _, sc := range p.cfg.Scenarios {
			for run := 0; run < p.cfg.Runs; run++ {
				units = append(units, unit{provider: provider, scenario: sc, runIndex: run})
			}
		}
	}
	return units
}

func (p *Pipeline) executeParallel(ctx context.Context, units []unit, results []*runner.RunResult) error {
	pool, err := ants.NewPool(p.cfg.Workers)
	if err != nil {
		return fmt.Errorf("pipeline: worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, u := range units {
		i, u := i, u
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = p.executeUnit(ctx, u)
		})
		if submitErr != nil {
			wg.Done()
			results[i] = p.executeUnit(ctx, u)
		}
	}
	wg.Wait()
	return nil
}

func (p *Pipeline) executeUnit(ctx context.Context, u unit) *runner.RunResult {
	tools := tool.Default(p.cfg.ToolErrorRate, p.unitSeed(u))
	res := p.runner.Run(ctx, u.provider, u.scenario, tools)
	res.RunIndex = u.runIndex
	return res
}

// unitSeed derives a per-unit seed from the benchmark seed and the unit's
// identity, so repeated invocations reproduce the same simulated tool
// failures regardless of scheduling order. A zero benchmark seed stays zero,
// which the tools treat as time-based.
func (p *Pipeline) unitSeed(u unit) int64 {
	if p.cfg.Seed == 0 {
		return 0
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", u.provider.Name(), u.scenario.ID, u.runIndex)
	seed := p.cfg.Seed ^ int64(h.Sum64())
	if seed == 0 {
		seed = 1
	}
	return seed
}
