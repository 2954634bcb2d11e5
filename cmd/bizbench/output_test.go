package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stellarlinkco/bizbench/internal/pipeline"
	"github.com/stellarlinkco/bizbench/internal/runner"
	"github.com/stellarlinkco/bizbench/internal/store"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want OutputFormat
	}{
		{in: "table", want: FormatTable},
		{in: " TABLE ", want: FormatTable},
		{in: "json", want: FormatJSON},
		{in: "jsonl", want: FormatJSON},
		{in: "nope", want: ""},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := parseOutputFormat(tt.in); got != tt.want {
			t.Fatalf("parseOutputFormat(%q): got %q want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		flagValue   string
		configValue string
		want        OutputFormat
		wantErrSub  string
	}{
		{name: "flag invalid", flagValue: "wat", wantErrSub: "invalid --output"},
		{name: "flag json", flagValue: "json", want: FormatJSON},
		{name: "flag wins over config", flagValue: "json", configValue: "table", want: FormatJSON},
		{name: "config json", configValue: "json", want: FormatJSON},
		{name: "config invalid => table", configValue: "wat", want: FormatTable},
		{name: "default table", want: FormatTable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolveOutputFormat(tt.flagValue, tt.configValue)
			if tt.wantErrSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErrSub) {
					t.Fatalf("resolveOutputFormat: err=%v want substring %q", err, tt.wantErrSub)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveOutputFormat: %v", err)
			}
			if got != tt.want {
				t.Fatalf("resolveOutputFormat: got %q want %q", got, tt.want)
			}
		})
	}
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	if got := formatReport(nil, FormatTable); got != "" {
		t.Fatalf("formatReport(nil): got %q", got)
	}

	report := sampleReport()
	table := formatReport(report, FormatTable)
	for _, want := range []string{"MODEL", "gpt-4o", "7.00", "2/3", "sales", "response_quality"} {
		if !strings.Contains(table, want) {
			t.Fatalf("formatReport(table): missing %q in %q", want, table)
		}
	}

	gotJSON := formatReport(report, FormatJSON)
	var parsed pipeline.Report
	if err := json.Unmarshal([]byte(gotJSON), &parsed); err != nil {
		t.Fatalf("formatReport(json): unmarshal: %v", err)
	}
	if parsed.Summary == nil || parsed.Summary.TotalUnits != 3 {
		t.Fatalf("formatReport(json): summary = %+v", parsed.Summary)
	}
}

func TestFormatRunList(t *testing.T) {
	t.Parallel()

	runs := []*store.RunRecord{
		{ID: "r1", StartedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), TotalUnits: 4},
	}
	table := formatRunList(runs, FormatTable)
	if !strings.Contains(table, "r1") || !strings.Contains(table, "2026-08-01 10:00:00") {
		t.Fatalf("formatRunList(table): got %q", table)
	}

	var parsed []*store.RunRecord
	if err := json.Unmarshal([]byte(formatRunList(runs, FormatJSON)), &parsed); err != nil {
		t.Fatalf("formatRunList(json): unmarshal: %v", err)
	}
	if len(parsed) != 1 || parsed[0].ID != "r1" {
		t.Fatalf("formatRunList(json): got %#v", parsed)
	}
}

func TestFormatLeaderboard(t *testing.T) {
	t.Parallel()

	entries := []*store.LeaderboardEntry{
		{Model: "gpt-4o", Attempted: 4, Completed: 4, AvgScore: 8.25},
		{Model: "local", Attempted: 4, Completed: 2, AvgScore: 5.5},
	}
	table := formatLeaderboard(entries, FormatTable)
	if !strings.Contains(table, "RANK") || !strings.Contains(table, "8.25") {
		t.Fatalf("formatLeaderboard(table): got %q", table)
	}
	// rank column follows slice order
	gptLine := strings.Index(table, "gpt-4o")
	localLine := strings.Index(table, "local")
	if gptLine < 0 || localLine < 0 || gptLine > localLine {
		t.Fatalf("formatLeaderboard(table): ordering in %q", table)
	}
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	got := sortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("sortedKeys: got %v", got)
	}
}

func sampleReport() *pipeline.Report {
	results := []*runner.RunResult{
		{
			Model: "gpt-4o", ScenarioID: "s1", Category: "sales",
			Status: runner.StatusCompleted, OverallScore: 8,
			CategoryScores: map[string]float64{"response_quality": 8},
		},
		{
			Model: "gpt-4o", ScenarioID: "s2", Category: "support",
			Status: runner.StatusCompleted, OverallScore: 6,
			CategoryScores: map[string]float64{"response_quality": 6},
		},
		{
			Model: "gpt-4o", ScenarioID: "s1", Category: "sales",
			Status: runner.StatusFailed, FailureDetail: "provider unreachable",
		},
	}
	started := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return &pipeline.Report{
		RunID:       "11111111-2222-3333-4444-555555555555",
		StartedAt:   started,
		CompletedAt: started.Add(90 * time.Second),
		Results:     results,
		Summary:     pipeline.Summarize(results),
	}
}
