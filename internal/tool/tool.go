package tool

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Tool is the business-tool capability the runner resolves model tool calls
// against. Implementations must be safe for concurrent use; the pipeline
// shares one instance across all units.
type Tool interface {
	Definition() Definition
	Call(args map[string]any) Result
}

type Definition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  map[string]Param `json:"parameters"`
}

type Param struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	ItemType    string `json:"item_type,omitempty"` // for arrays
}

// InputSchema renders the definition as a JSON-schema object for LLM
// function calling.
func (d Definition) InputSchema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	var required []string
	for name, p := range d.Parameters {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Type == "array" {
			itemType := p.ItemType
			if itemType == "" {
				itemType = "string"
			}
			prop["items"] = map[string]any{"type": itemType}
		}
		props[name] = prop
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Result is a tool call outcome: either data or a structured error. Errors
// here are content for the model under test, not system faults.
type Result struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func Success(data any) Result {
	return Result{Status: "success", Data: data}
}

func Failure(code, message string) Result {
	return Result{Status: "error", Error: code, Message: message}
}

func (r Result) IsError() bool {
	return r.Status == "error"
}

// JSON renders the result as the content of a tool-role message.
func (r Result) JSON() string {
	b, err := json.Marshal(r)
	if err != nil {
		return `{"status":"error","error":"SerializationError"}`
	}
	return string(b)
}

// Stats is a snapshot of a tool's call counters.
type Stats struct {
	Name        string  `json:"name"`
	Calls       int64   `json:"calls"`
	Errors      int64   `json:"errors"`
	SuccessRate float64 `json:"success_rate"`
}

// simulated business-level failures rolled by error rate
var simulatedErrors = []Result{
	Failure("ServiceUnavailable", "Service temporarily unavailable. Please try again later."),
	Failure("DatabaseTimeout", "Database query timed out. Please try with more specific parameters."),
	Failure("RateLimitExceeded", "API rate limit exceeded. Please wait before making more requests."),
	Failure("PermissionDenied", "Insufficient permissions to access this resource."),
	Failure("InvalidData", "The provided data is invalid or in an incorrect format."),
}

// SimTool wraps a tool body with required-parameter validation, seeded
// error-rate simulation, and atomic call accounting.
type SimTool struct {
	def       Definition
	errorRate float64
	exec      func(args map[string]any) (any, error)

	mu  sync.Mutex
	rng *rand.Rand

	calls  atomic.Int64
	errors atomic.Int64
}

// NewSimTool builds a simulated tool. A zero seed selects a time-based seed;
// any other value makes the error simulation reproducible.
func NewSimTool(def Definition, errorRate float64, seed int64, exec func(args map[string]any) (any, error)) *SimTool {
	if errorRate < 0 {
		errorRate = 0
	}
	if errorRate > 1 {
		errorRate = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimTool{
		def:       def,
		errorRate: errorRate,
		exec:      exec,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (t *SimTool) Definition() Definition {
	if t == nil {
		return Definition{}
	}
	return t.def
}

func (t *SimTool) Call(args map[string]any) Result {
	if t == nil || t.exec == nil {
		return Failure("ToolUnavailable", "tool has no implementation")
	}
	t.calls.Add(1)

	if missing := t.missingParams(args); len(missing) > 0 {
		t.errors.Add(1)
		return Failure("MissingParameters", fmt.Sprintf("Missing required parameters: %s", strings.Join(missing, ", ")))
	}

	if res, failed := t.rollError(); failed {
		t.errors.Add(1)
		return res
	}

	data, err := t.exec(args)
	if err != nil {
		t.errors.Add(1)
		return Failure("ExecutionError", err.Error())
	}
	return Success(data)
}

func (t *SimTool) missingParams(args map[string]any) []string {
	var missing []string
	for name, p := range t.def.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func (t *SimTool) rollError() (Result, bool) {
	if t.errorRate <= 0 {
		return Result{}, false
	}
	t.mu.Lock()
	roll := t.rng.Float64()
	pick := t.rng.Intn(len(simulatedErrors))
	t.mu.Unlock()
	if roll >= t.errorRate {
		return Result{}, false
	}
	return simulatedErrors[pick], true
}

func (t *SimTool) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	calls := t.calls.Load()
	errs := t.errors.Load()
	s := Stats{Name: t.def.Name, Calls: calls, Errors: errs}
	if calls > 0 {
		s.SuccessRate = float64(calls-errs) / float64(calls)
	}
	return s
}

// ResetStats clears the call counters.
func (t *SimTool) ResetStats() {
	if t == nil {
		return
	}
	t.calls.Store(0)
	t.errors.Store(0)
}
