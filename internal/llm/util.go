package llm

import (
	"encoding/json"
	"strings"
)

// modelRates maps model name prefixes to per-1K-token dollar rates.
type modelRate struct {
	input  float64
	output float64
}

var modelRates = map[string]modelRate{
	"gpt-4o":          {input: 0.0025, output: 0.01},
	"gpt-4o-mini":     {input: 0.00015, output: 0.0006},
	"gpt-4":           {input: 0.03, output: 0.06},
	"claude-opus":     {input: 0.015, output: 0.075},
	"claude-sonnet":   {input: 0.003, output: 0.015},
	"claude-haiku":    {input: 0.0008, output: 0.004},
	"claude-3-5":      {input: 0.003, output: 0.015},
	"claude-3-haiku":  {input: 0.00025, output: 0.00125},
	"claude-3-sonnet": {input: 0.003, output: 0.015},
}

// costFor estimates the dollar cost of one call by model name prefix.
// Unknown models cost zero; usage accounting still records their tokens.
func costFor(model string, inputTokens, outputTokens int) float64 {
	model = strings.ToLower(strings.TrimSpace(model))
	var best string
	for prefix := range modelRates {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return 0
	}
	r := modelRates[best]
	return float64(inputTokens)/1000*r.input + float64(outputTokens)/1000*r.output
}

// estimateTokens approximates a token count at ~4 characters per token.
func estimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// parseToolArguments parses a JSON argument payload. A malformed payload
// returns nil so the caller can surface an invalid-arguments error instead
// of calling the tool.
func parseToolArguments(args string) map[string]any {
	args = strings.TrimSpace(args)
	if args == "" {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(args), &out); err != nil {
		return nil
	}
	return out
}
