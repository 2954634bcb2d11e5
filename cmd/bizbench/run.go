package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/pipeline"
	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/store"
)

type runOptions struct {
	scenarioID string
	runs       int
	parallel   bool
	seed       int64
	output     string
	noStore    bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.scenarioID, "scenario", "", "run a single scenario by id")
	cmd.Flags().IntVar(&opts.runs, "runs", -1, "runs per (model, scenario) pair (overrides config)")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "force parallel execution")
	cmd.Flags().Int64Var(&opts.seed, "seed", -1, "tool error simulation seed (overrides config; 0 = time-based)")
	cmd.Flags().StringVar(&opts.output, "output", "", "output format: table|json (overrides config)")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "skip persisting results")

	return cmd
}

func runBenchmark(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}

	output, err := resolveOutputFormat(opts.output, st.cfg.Evaluation.OutputFormat)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	providers, err := llm.FromConfig(st.cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	scenarios, warnings, err := scenario.LoadDir(st.cfg.Scenarios.Dir)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}

	if id := strings.TrimSpace(opts.scenarioID); id != "" {
		var picked []*scenario.Scenario
		for _, sc := range scenarios {
			if sc.ID == id {
				picked = append(picked, sc)
			}
		}
		if len(picked) == 0 {
			return fmt.Errorf("run: unknown scenario %q", id)
		}
		scenarios = picked
	}

	runs := st.cfg.Evaluation.NumRuns
	if opts.runs >= 0 {
		runs = opts.runs
	}
	seed := st.cfg.Evaluation.Seed
	if opts.seed >= 0 {
		seed = opts.seed
	}

	p, err := pipeline.New(pipeline.Config{
		Providers:     providers,
		Scenarios:     scenarios,
		Runs:          runs,
		Parallel:      opts.parallel || st.cfg.Evaluation.Parallel,
		Workers:       st.cfg.Evaluation.Workers,
		MaxToolRounds: st.cfg.Evaluation.MaxToolRounds,
		ToolErrorRate: st.cfg.Tools.ErrorRate,
		Seed:          seed,
		Weights:       st.cfg.Evaluation.Weights,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := p.Execute(ctx)
	if err != nil {
		return err
	}

	if !opts.noStore && strings.EqualFold(st.cfg.Storage.Type, "sqlite") {
		dbStore, err := store.NewSQLiteStore(st.cfg.Storage.Path)
		if err != nil {
			return err
		}
		defer dbStore.Close()
		if err := dbStore.SaveReport(ctx, report); err != nil {
			return err
		}
	}

	if dir := strings.TrimSpace(st.cfg.Evaluation.OutputDir); dir != "" {
		if err := writeResultsFile(dir, report); err != nil {
			return err
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), formatReport(report, output))
	return nil
}

func writeResultsFile(dir string, report *pipeline.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("run: create output dir: %w", err)
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("run: marshal report: %w", err)
	}
	name := fmt.Sprintf("results-%s.json", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("run: write %s: %w", path, err)
	}
	return nil
}
