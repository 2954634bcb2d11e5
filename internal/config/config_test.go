package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `
models:
  - provider: openai
    model: gpt-4o
    api_key: sk-test
  - provider: claude
    model: claude-sonnet-4-5-20250929
    api_key: sk-ant-test

evaluation:
  num_runs: 3
  parallel: true
  workers: 8
  seed: 42
  weights:
    tool_usage: 0.5

tools:
  error_rate: 0.2

storage:
  type: sqlite
  path: data/test.db
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Models) != 2 {
		t.Fatalf("models = %d", len(cfg.Models))
	}
	if cfg.Evaluation.NumRuns != 3 || cfg.Evaluation.Workers != 8 || cfg.Evaluation.Seed != 42 {
		t.Errorf("evaluation = %+v", cfg.Evaluation)
	}
	if cfg.Evaluation.Weights["tool_usage"] != 0.5 {
		t.Errorf("weights = %v", cfg.Evaluation.Weights)
	}
	if cfg.Tools.ErrorRate != 0.2 {
		t.Errorf("error rate = %v", cfg.Tools.ErrorRate)
	}
	// defaults fill in unset fields
	if cfg.Evaluation.MaxToolRounds != 3 {
		t.Errorf("MaxToolRounds = %d", cfg.Evaluation.MaxToolRounds)
	}
	if cfg.Scenarios.Dir != "scenarios" {
		t.Errorf("Scenarios.Dir = %q", cfg.Scenarios.Dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load accepted missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")

	cfg, err := Load(writeConfig(t, `
models:
  - provider: openai
    model: gpt-4o
  - provider: claude
  - provider: openai
    model: gpt-4
    api_key: sk-explicit
evaluation:
  num_runs: 1
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Models[0].APIKey != "sk-from-env" {
		t.Errorf("openai key = %q", cfg.Models[0].APIKey)
	}
	if cfg.Models[1].APIKey != "sk-ant-from-env" {
		t.Errorf("claude key = %q", cfg.Models[1].APIKey)
	}
	// explicit keys win over env
	if cfg.Models[2].APIKey != "sk-explicit" {
		t.Errorf("explicit key = %q", cfg.Models[2].APIKey)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"nil config", nil, "nil config"},
		{"no models", &Config{}, "no models"},
		{"missing provider", &Config{Models: []ModelConfig{{}}}, "missing provider"},
		{"unknown provider", &Config{Models: []ModelConfig{{Provider: "cohere"}}}, "unknown provider"},
		{"missing api key", &Config{Models: []ModelConfig{{Provider: "openai"}}}, "missing API key"},
		{"negative weight", &Config{
			Models:     []ModelConfig{{Provider: "local"}},
			Evaluation: EvaluationConfig{Weights: map[string]float64{"tool_usage": -1}},
		}, "negative weight"},
	}
	for _, tc := range cases {
		err := Validate(tc.cfg)
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: err = %v", tc.name, err)
		}
	}

	// local provider needs no API key
	if err := Validate(&Config{Models: []ModelConfig{{Provider: "local"}}}); err != nil {
		t.Errorf("local without key rejected: %v", err)
	}
}

func TestErrorRateClamped(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
models:
  - provider: local
tools:
  error_rate: 1.5
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tools.ErrorRate != 1 {
		t.Errorf("error rate = %v, want clamped to 1", cfg.Tools.ErrorRate)
	}
}
