package llm

import "context"

// Message roles used across providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Provider is the model capability the runner drives. Implementations hold
// immutable configuration only; mutable accounting lives on UsageStats so a
// single provider instance is safe to share across concurrent units.
type Provider interface {
	Name() string
	GenerateResponse(ctx context.Context, messages []Message, tools []ToolDefinition) (*Response, error)
	TokenCount(text string) int
	Usage() *UsageStats
}

type Message struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ToolCallID string    `json:"tool_call_id,omitempty"` // set on tool-role messages
	ToolName   string    `json:"tool_name,omitempty"`
	ToolCalls  []ToolUse `json:"tool_calls,omitempty"` // set on assistant messages that request tools
}

type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolUse is one tool-call request. Arguments is nil with RawArguments set
// when the argument payload could not be parsed; the runner treats that as
// an invalid-arguments resolution error rather than calling the tool.
type ToolUse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	RawArguments string         `json:"raw_arguments,omitempty"`
}

type Response struct {
	Content      string    `json:"content"`
	ToolCalls    []ToolUse `json:"tool_calls,omitempty"`
	StopReason   string    `json:"stop_reason,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	LatencyMs    int64     `json:"latency_ms"`
}
