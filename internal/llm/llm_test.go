package llm

import (
	"strings"
	"testing"

	"github.com/stellarlinkco/bizbench/internal/config"
)

func TestTaggedTextExtractor(t *testing.T) {
	text := `Let me check that for you.
<function_call name='knowledge_base'>{"query": "support plans"}</function_call>
<function_call name="scheduler">{"meeting_type": "sales_call"}</function_call>`

	clean, calls := TaggedTextExtractor{}.Extract(text)
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].ID != "call_1" || calls[1].ID != "call_2" {
		t.Errorf("ids = %s, %s", calls[0].ID, calls[1].ID)
	}
	if calls[0].Name != "knowledge_base" || calls[0].Arguments["query"] != "support plans" {
		t.Errorf("call 0 = %+v", calls[0])
	}
	if calls[1].Name != "scheduler" {
		t.Errorf("call 1 = %+v", calls[1])
	}
	if strings.Contains(clean, "function_call") || !strings.Contains(clean, "Let me check") {
		t.Errorf("clean = %q", clean)
	}

	plain, calls := TaggedTextExtractor{}.Extract("no calls here")
	if plain != "no calls here" || calls != nil {
		t.Errorf("plain = %q, calls = %v", plain, calls)
	}
}

func TestTaggedTextExtractorMalformedJSON(t *testing.T) {
	_, calls := TaggedTextExtractor{}.Extract(`<function_call name='echo'>{"broken</function_call>`)
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	// nil arguments with non-empty raw marks an unparseable call
	if calls[0].Arguments != nil || calls[0].RawArguments == "" {
		t.Errorf("call = %+v", calls[0])
	}
}

func TestParseToolArguments(t *testing.T) {
	if got := parseToolArguments(""); got == nil || len(got) != 0 {
		t.Errorf("empty = %v", got)
	}
	got := parseToolArguments(`{"a": 1}`)
	if got == nil || got["a"] != float64(1) {
		t.Errorf("valid = %v", got)
	}
	if got := parseToolArguments("{nope"); got != nil {
		t.Errorf("invalid = %v", got)
	}
}

func TestUsageStats(t *testing.T) {
	var u UsageStats
	u.Record(100, 50, 0.0125)
	u.Record(200, 100, 0.025)

	snap := u.Snapshot()
	if snap.APICalls != 2 || snap.InputTokens != 300 || snap.OutputTokens != 150 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.TotalTokens != 450 {
		t.Errorf("TotalTokens = %d", snap.TotalTokens)
	}
	if snap.TotalCost < 0.0374 || snap.TotalCost > 0.0376 {
		t.Errorf("TotalCost = %v", snap.TotalCost)
	}

	u.Reset()
	if snap := u.Snapshot(); snap.APICalls != 0 || snap.TotalTokens != 0 {
		t.Errorf("after reset = %+v", snap)
	}
}

func TestCostFor(t *testing.T) {
	if got := costFor("unknown-model", 1000, 1000); got != 0 {
		t.Errorf("unknown model cost = %v", got)
	}
	// longest-prefix match picks the mini rate over the gpt-4o rate
	mini := costFor("gpt-4o-mini-2024-07-18", 1000, 1000)
	full := costFor("gpt-4o-2024-08-06", 1000, 1000)
	if mini <= 0 || full <= 0 || mini >= full {
		t.Errorf("mini = %v, full = %v", mini, full)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Models: []config.ModelConfig{
			{Provider: "openai", Model: "gpt-4o", APIKey: "sk-test"},
			{Provider: "claude", Model: "claude-sonnet-4-5-20250929", APIKey: "sk-ant-test"},
			{Provider: "local", BaseURL: "http://localhost:8000/v1", Model: "llama"},
		},
	}
	providers, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(providers) != 3 {
		t.Fatalf("providers = %d", len(providers))
	}
	names := map[string]bool{}
	for _, p := range providers {
		names[p.Name()] = true
	}
	if !names["gpt-4o"] || !names["claude-sonnet-4-5-20250929"] {
		t.Errorf("names = %v", names)
	}
}

func TestFromConfigDuplicateModel(t *testing.T) {
	cfg := &config.Config{
		Models: []config.ModelConfig{
			{Provider: "openai", Model: "gpt-4o", APIKey: "k"},
			{Provider: "openai", Model: "gpt-4o", APIKey: "k"},
		},
	}
	if _, err := FromConfig(cfg); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("err = %v", err)
	}
}

func TestFromConfigUnknownProvider(t *testing.T) {
	cfg := &config.Config{
		Models: []config.ModelConfig{{Provider: "cohere", APIKey: "k"}},
	}
	if _, err := FromConfig(cfg); err == nil {
		t.Fatal("unknown provider accepted")
	}
}
