package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/stellarlinkco/bizbench/internal/pipeline"
	"github.com/stellarlinkco/bizbench/internal/scenario"
	"github.com/stellarlinkco/bizbench/internal/store"
)

type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

func parseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return FormatTable
	case "json", "jsonl":
		return FormatJSON
	default:
		return ""
	}
}

func resolveOutputFormat(flagValue, configValue string) (OutputFormat, error) {
	if strings.TrimSpace(flagValue) != "" {
		out := parseOutputFormat(flagValue)
		if out == "" {
			return "", fmt.Errorf("invalid --output %q (expected table|json)", flagValue)
		}
		return out, nil
	}
	if out := parseOutputFormat(configValue); out != "" {
		return out, nil
	}
	return FormatTable, nil
}

func formatReport(report *pipeline.Report, format OutputFormat) string {
	if report == nil {
		return ""
	}
	if format == FormatJSON {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Sprintf("{\"error\": %q}\n", err.Error())
		}
		return string(b) + "\n"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Benchmark %s: %d units in %s\n\n",
		report.RunID, len(report.Results), report.CompletedAt.Sub(report.StartedAt).Round(1e6))

	summary := report.Summary
	if summary == nil {
		return buf.String()
	}

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tOVERALL\tCOMPLETED\tFAILED\tABORTED")
	for _, model := range sortedKeys(summary.Models) {
		ms := summary.Models[model]
		fmt.Fprintf(w, "%s\t%.2f\t%d/%d\t%d\t%d\n",
			ms.Model, ms.OverallScore, ms.Completed, ms.Attempted, ms.Failed, ms.Aborted)
	}
	w.Flush()

	for _, model := range sortedKeys(summary.Models) {
		ms := summary.Models[model]
		if len(ms.CategoryScores) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n%s by evaluator:\n", ms.Model)
		cw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, name := range sortedKeys(ms.CategoryScores) {
			fmt.Fprintf(cw, "  %s\t%.2f\n", name, ms.CategoryScores[name])
		}
		cw.Flush()
	}

	if len(summary.SuccessRate) > 0 {
		fmt.Fprintln(&buf, "\nSuccess rate by category:")
		sw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
		for _, cat := range sortedKeys(summary.SuccessRate) {
			fmt.Fprintf(sw, "  %s\t%.0f%%\n", cat, summary.SuccessRate[cat]*100)
		}
		sw.Flush()
	}
	return buf.String()
}

func formatRunList(runs []*store.RunRecord, format OutputFormat) string {
	if format == FormatJSON {
		b, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Sprintf("{\"error\": %q}\n", err.Error())
		}
		return string(b) + "\n"
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tUNITS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.TotalUnits)
	}
	w.Flush()
	return buf.String()
}

func formatLeaderboard(entries []*store.LeaderboardEntry, format OutputFormat) string {
	if format == FormatJSON {
		b, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Sprintf("{\"error\": %q}\n", err.Error())
		}
		return string(b) + "\n"
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tMODEL\tAVG SCORE\tCOMPLETED\tATTEMPTED")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%d\n", i+1, e.Model, e.AvgScore, e.Completed, e.Attempted)
	}
	w.Flush()
	return buf.String()
}

func formatScenariosJSON(scenarios []*scenario.Scenario) string {
	b, err := json.MarshalIndent(scenarios, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return string(b) + "\n"
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
