package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/bizbench/internal/config"
)

// FromConfig builds one provider per configured model.
func FromConfig(cfg *config.Config) ([]Provider, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("llm: no models configured")
	}

	out := make([]Provider, 0, len(cfg.Models))
	seen := make(map[string]struct{}, len(cfg.Models))
	for i, m := range cfg.Models {
		p, err := newProvider(m)
		if err != nil {
			return nil, fmt.Errorf("llm: model %d: %w", i, err)
		}
		if _, dup := seen[p.Name()]; dup {
			return nil, fmt.Errorf("llm: duplicate model %q", p.Name())
		}
		seen[p.Name()] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func newProvider(m config.ModelConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(m.Provider)) {
	case "claude", "anthropic":
		return NewClaudeProvider(m.APIKey, m.BaseURL, m.Model, m.Temperature, m.MaxTokens), nil
	case "openai":
		return NewOpenAIProvider(m.APIKey, m.BaseURL, m.Model, m.Temperature, m.MaxTokens), nil
	case "local":
		return NewLocalProvider(m.BaseURL, m.Model, m.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", m.Provider)
	}
}
