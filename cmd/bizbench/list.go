package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/store"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

func newListCmd(st *cliState) *cobra.Command {
	var (
		showRuns  bool
		showTools bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scenarios or stored benchmark runs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat(output, st.cfg.Evaluation.OutputFormat)
			if err != nil {
				return fmt.Errorf("list: %w", err)
			}
			if showRuns {
				return listRuns(cmd, st, format)
			}
			if showTools {
				return listTools(cmd)
			}
			return listScenarios(cmd, st, format)
		},
	}

	cmd.Flags().BoolVar(&showRuns, "runs", false, "list stored benchmark runs instead of scenarios")
	cmd.Flags().BoolVar(&showTools, "tools", false, "list the simulated business tools")
	cmd.Flags().StringVar(&output, "output", "", "output format: table|json")
	return cmd
}

func listScenarios(cmd *cobra.Command, st *cliState, format OutputFormat) error {
	scenarios, warnings, err := scenario.LoadDir(st.cfg.Scenarios.Dir)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
	}

	if format == FormatJSON {
		fmt.Fprint(cmd.OutOrStdout(), formatScenariosJSON(scenarios))
		return nil
	}
	for _, sc := range scenarios {
		tools := ""
		if len(sc.ToolsRequired) > 0 {
			tools = " [" + strings.Join(sc.ToolsRequired, ", ") + "]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%s, %d turns)%s\n",
			sc.ID, sc.Name, sc.Category, len(sc.Turns), tools)
	}
	return nil
}

func listTools(cmd *cobra.Command) error {
	for _, def := range tool.Definitions(tool.Default(0, 0)) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", def.Name, def.Description)
	}
	return nil
}

func listRuns(cmd *cobra.Command, st *cliState, format OutputFormat) error {
	dbStore, err := openStore(st)
	if err != nil {
		return err
	}
	defer dbStore.Close()

	runs, err := dbStore.ListRuns(cmd.Context(), 0)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatRunList(runs, format))
	return nil
}

func newLeaderboardCmd(st *cliState) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank models across stored benchmark runs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat(output, st.cfg.Evaluation.OutputFormat)
			if err != nil {
				return fmt.Errorf("leaderboard: %w", err)
			}
			dbStore, err := openStore(st)
			if err != nil {
				return err
			}
			defer dbStore.Close()

			entries, err := dbStore.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatLeaderboard(entries, format))
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output format: table|json")
	return cmd
}

func openStore(st *cliState) (*store.SQLiteStore, error) {
	if !strings.EqualFold(st.cfg.Storage.Type, "sqlite") {
		return nil, fmt.Errorf("storage type %q does not support queries (set storage.type: sqlite)", st.cfg.Storage.Type)
	}
	return store.NewSQLiteStore(st.cfg.Storage.Path)
}
