package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
	usage       *UsageStats
}

func NewOpenAIProvider(apiKey, baseURL, model string, temperature float64, maxTokens int) *OpenAIProvider {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = "gpt-4o"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		model:       m,
		temperature: temperature,
		maxTokens:   maxTokens,
		usage:       &UsageStats{},
	}
}

func (p *OpenAIProvider) Name() string {
	if p == nil {
		return "openai"
	}
	return p.model
}

func (p *OpenAIProvider) Usage() *UsageStats {
	if p == nil {
		return nil
	}
	return p.usage
}

func (p *OpenAIProvider) TokenCount(text string) int {
	return estimateTokens(text)
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: openai: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: openai: nil context")
	}
	if len(messages) == 0 {
		return nil, errors.New("llm: openai: empty messages")
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   p.maxTokens,
		Temperature: float32(p.temperature),
	}
	if oaTools := toOpenAITools(tools); len(oaTools) > 0 {
		req.Tools = oaTools
		req.ToolChoice = "auto"
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: openai: empty choices")
	}

	choice := resp.Choices[0]
	out := &Response{
		Content:      choice.Message.Content,
		StopReason:   string(choice.FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		LatencyMs:    latency,
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolUse{
			ID:           strings.TrimSpace(tc.ID),
			Name:         strings.TrimSpace(tc.Function.Name),
			Arguments:    parseToolArguments(tc.Function.Arguments),
			RawArguments: tc.Function.Arguments,
		})
	}

	p.usage.Record(out.InputTokens, out.OutputTokens, costFor(p.model, out.InputTokens, out.OutputTokens))
	return out, nil
}

func toOpenAIMessages(in []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(in))
	for _, m := range in {
		msg := openai.ChatCompletionMessage{
			Role:    normalizeOpenAIRole(m.Role),
			Content: m.Content,
		}
		if m.Role == RoleTool {
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		for _, tc := range m.ToolCalls {
			args := tc.RawArguments
			if args == "" && tc.Arguments != nil {
				if b, err := json.Marshal(tc.Arguments); err == nil {
					args = string(b)
				}
			}
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: args,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func normalizeOpenAIRole(role string) string {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case openai.ChatMessageRoleSystem,
		openai.ChatMessageRoleUser,
		openai.ChatMessageRoleAssistant,
		openai.ChatMessageRoleTool:
		return role
	default:
		return openai.ChatMessageRoleUser
	}
}

func toOpenAITools(in []ToolDefinition) []openai.Tool {
	if len(in) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(in))
	for _, t := range in {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		schema := t.InputSchema
		if schema == nil {
			schema = map[string]any{"type": "object"}
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: strings.TrimSpace(t.Description),
				Parameters:  schema,
			},
		})
	}
	return out
}
