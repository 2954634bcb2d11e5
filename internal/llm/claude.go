package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

type ClaudeProvider struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	usage       *UsageStats
}

func NewClaudeProvider(apiKey, baseURL, model string, temperature float64, maxTokens int) *ClaudeProvider {
	opts := make([]option.RequestOption, 0, 2)
	if v := strings.TrimSpace(apiKey); v != "" {
		opts = append(opts, option.WithAPIKey(v))
	}
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(v, "/")))
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = defaultClaudeModel
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &ClaudeProvider{
		client:      anthropic.NewClient(opts...),
		model:       m,
		temperature: temperature,
		maxTokens:   maxTokens,
		usage:       &UsageStats{},
	}
}

func (p *ClaudeProvider) Name() string {
	if p == nil {
		return "claude"
	}
	return p.model
}

func (p *ClaudeProvider) Usage() *UsageStats {
	if p == nil {
		return nil
	}
	return p.usage
}

func (p *ClaudeProvider) TokenCount(text string) int {
	return estimateTokens(text)
}

func (p *ClaudeProvider) GenerateResponse(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error) {
	if p == nil {
		return nil, errors.New("llm: claude: nil provider")
	}
	if ctx == nil {
		return nil, errors.New("llm: claude: nil context")
	}
	if len(messages) == 0 {
		return nil, errors.New("llm: claude: empty messages")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
	}
	if p.temperature != 0 {
		params.Temperature = param.NewOpt(p.temperature)
	}
	if system := systemText(messages); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system, Type: "text"}}
	}
	params.Messages = toClaudeMessages(messages)
	if len(tools) > 0 {
		params.Tools = toClaudeTools(tools)
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, errors.New("llm: claude: nil response")
	}

	out := &Response{
		StopReason:   string(msg.StopReason),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
		LatencyMs:    latency,
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			sb.WriteString(block.AsText().Text)
		case "tool_use":
			tu := block.AsToolUse()
			out.ToolCalls = append(out.ToolCalls, ToolUse{
				ID:           tu.ID,
				Name:         tu.Name,
				Arguments:    parseToolArguments(string(tu.Input)),
				RawArguments: string(tu.Input),
			})
		}
	}
	out.Content = sb.String()

	p.usage.Record(out.InputTokens, out.OutputTokens, costFor(p.model, out.InputTokens, out.OutputTokens))
	return out, nil
}

// systemText collects system-role messages; the Claude API carries them as a
// request parameter rather than in the message list.
func systemText(messages []Message) string {
	var parts []string
	for _, m := range messages {
		if strings.EqualFold(strings.TrimSpace(m.Role), RoleSystem) {
			if s := strings.TrimSpace(m.Content); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func toClaudeMessages(in []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(in))
	for _, m := range in {
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case RoleSystem:
			continue
		case RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				input := any(tc.Arguments)
				if tc.Arguments == nil {
					input = json.RawMessage(tc.RawArguments)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleAssistant,
				Content: blocks,
			})
		case RoleTool:
			out = append(out, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false),
				},
			})
		default:
			out = append(out, anthropic.MessageParam{
				Role:    anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
			})
		}
	}
	return out
}

func toClaudeTools(tools []ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		tool := anthropic.ToolParam{
			Name:        name,
			InputSchema: toClaudeInputSchema(t.InputSchema),
		}
		if desc := strings.TrimSpace(t.Description); desc != "" {
			tool.Description = param.NewOpt(desc)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

func toClaudeInputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{Type: "object"}
	if schema == nil {
		return out
	}
	if props, ok := schema["properties"]; ok {
		out.Properties = props
	}
	if required, ok := schema["required"]; ok {
		switch v := required.(type) {
		case []string:
			out.Required = v
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					out.Required = append(out.Required, s)
				}
			}
		}
	}
	return out
}
