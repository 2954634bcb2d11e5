package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// LocalProvider talks to an OpenAI-compatible endpoint (llama.cpp, vLLM,
// ollama) that has no native tool-calling support. Tool definitions are
// described in a system prompt and calls are recovered from the generated
// text by a ToolCallExtractor.
type LocalProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
	extractor ToolCallExtractor
	usage     *UsageStats
}

func NewLocalProvider(baseURL, model string, maxTokens int) *LocalProvider {
	cfg := openai.DefaultConfig("")
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &LocalProvider{
		client:    openai.NewClientWithConfig(cfg),
		model:     strings.TrimSpace(model),
		maxTokens: maxTokens,
		extractor: TaggedTextExtractor{},
		usage:     &UsageStats{},
	}
}

func (p *LocalProvider) Name() string {
	if p == nil {
		return "local"
	}
	return p.model
}

func (p *LocalProvider) Usage() *UsageStats {
	if p == nil {
		return nil
	}
	return p.usage
}

func (p *LocalProvider) TokenCount(text string) int {
	return estimateTokens(text)
}

func (p *LocalProvider) GenerateResponse(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error) {
	if p == nil || p.client == nil {
		return nil, errors.New("llm: local: nil client")
	}
	if ctx == nil {
		return nil, errors.New("llm: local: nil context")
	}
	if len(messages) == 0 {
		return nil, errors.New("llm: local: empty messages")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if len(tools) > 0 {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: toolPrompt(tools),
		})
	}
	for _, m := range messages {
		content := m.Content
		if m.Role == RoleTool {
			content = fmt.Sprintf("[tool %s result for %s] %s", m.ToolName, m.ToolCallID, m.Content)
		}
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    localRole(m.Role),
			Content: content,
		})
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  msgs,
		MaxTokens: p.maxTokens,
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("llm: local: empty choices")
	}

	text, calls := p.extractor.Extract(resp.Choices[0].Message.Content)
	out := &Response{
		Content:      text,
		ToolCalls:    calls,
		StopReason:   string(resp.Choices[0].FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		LatencyMs:    latency,
	}

	p.usage.Record(out.InputTokens, out.OutputTokens, 0)
	return out, nil
}

// localRole folds tool results into user turns since the endpoint has no
// tool role.
func localRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleSystem:
		return openai.ChatMessageRoleSystem
	case RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

func toolPrompt(tools []ToolDefinition) string {
	var sb strings.Builder
	sb.WriteString("You can call a tool by replying with ")
	sb.WriteString("<function_call name='tool_name'>{\"arg\": \"value\"}</function_call>. ")
	sb.WriteString("Available tools:\n")
	for _, t := range tools {
		sb.WriteString("- ")
		sb.WriteString(t.Name)
		if d := strings.TrimSpace(t.Description); d != "" {
			sb.WriteString(": ")
			sb.WriteString(d)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
