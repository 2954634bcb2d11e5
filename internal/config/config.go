package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Models     []ModelConfig    `yaml:"models"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Tools      ToolsConfig      `yaml:"tools"`
	Scenarios  ScenariosConfig  `yaml:"scenarios"`
	Storage    StorageConfig    `yaml:"storage"`
}

type ModelConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "claude", or "local"
	Model       string  `yaml:"model,omitempty"`
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

type EvaluationConfig struct {
	NumRuns       int                `yaml:"num_runs"`
	Parallel      bool               `yaml:"parallel,omitempty"`
	Workers       int                `yaml:"workers,omitempty"`
	MaxToolRounds int                `yaml:"max_tool_rounds,omitempty"`
	Seed          int64              `yaml:"seed,omitempty"`
	Weights       map[string]float64 `yaml:"weights,omitempty"`
	OutputDir     string             `yaml:"output_dir,omitempty"`
	OutputFormat  string             `yaml:"output_format,omitempty"`
}

type ToolsConfig struct {
	ErrorRate float64 `yaml:"error_rate"`
}

type ScenariosConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

type StorageConfig struct {
	Type string `yaml:"type,omitempty"` // "sqlite" or "memory"
	Path string `yaml:"path,omitempty"` // SQLite file path
}

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Evaluation.NumRuns <= 0 {
		cfg.Evaluation.NumRuns = 1
	}
	if cfg.Evaluation.Workers <= 0 {
		cfg.Evaluation.Workers = 4
	}
	if cfg.Evaluation.MaxToolRounds <= 0 {
		cfg.Evaluation.MaxToolRounds = 3
	}
	if cfg.Tools.ErrorRate < 0 {
		cfg.Tools.ErrorRate = 0
	}
	if cfg.Tools.ErrorRate > 1 {
		cfg.Tools.ErrorRate = 1
	}
	if strings.TrimSpace(cfg.Scenarios.Dir) == "" {
		cfg.Scenarios.Dir = "scenarios"
	}
}

func applyEnvOverrides(cfg *Config) {
	anthropicKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if anthropicKey == "" {
		anthropicKey = strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN"))
	}
	openaiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	for i := range cfg.Models {
		m := &cfg.Models[i]
		if strings.TrimSpace(m.APIKey) != "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Provider)) {
		case "claude", "anthropic":
			m.APIKey = anthropicKey
		case "openai":
			m.APIKey = openaiKey
		}
	}
}

// Validate reports configuration errors before any unit executes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	if len(cfg.Models) == 0 {
		return fmt.Errorf("config: no models configured")
	}
	for i, m := range cfg.Models {
		provider := strings.ToLower(strings.TrimSpace(m.Provider))
		switch provider {
		case "claude", "anthropic", "openai", "local":
		case "":
			return fmt.Errorf("config: model %d: missing provider", i)
		default:
			return fmt.Errorf("config: model %d: unknown provider %q", i, m.Provider)
		}
		if provider != "local" && strings.TrimSpace(m.APIKey) == "" {
			return fmt.Errorf("config: model %d (%s): missing API key", i, provider)
		}
	}
	for name, w := range cfg.Evaluation.Weights {
		if w < 0 {
			return fmt.Errorf("config: negative weight for evaluator %q", name)
		}
	}
	return nil
}
