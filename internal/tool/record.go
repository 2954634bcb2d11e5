package tool

// InvocationRecord is an immutable record of one resolved tool call: what the
// model asked for and what came back. Valid is false when the call never
// reached a tool body (unknown tool or unparseable arguments).
type InvocationRecord struct {
	CallID    string         `json:"call_id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    Result         `json:"result"`
	LatencyMs int64          `json:"latency_ms"`
	Valid     bool           `json:"valid"`
}
