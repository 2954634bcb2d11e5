package llm

import "sync/atomic"

// UsageStats accumulates API usage for one provider instance. Parallel units
// share a provider, so every field is atomic; cost is stored in microdollars
// to keep the accumulator integral.
type UsageStats struct {
	apiCalls     atomic.Int64
	inputTokens  atomic.Int64
	outputTokens atomic.Int64
	costMicros   atomic.Int64
}

// Usage is a point-in-time snapshot of UsageStats.
type Usage struct {
	APICalls     int64   `json:"api_calls"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens"`
	TotalCost    float64 `json:"total_cost"`
}

// Record adds one API call's token counts and dollar cost.
func (u *UsageStats) Record(inputTokens, outputTokens int, cost float64) {
	if u == nil {
		return
	}
	u.apiCalls.Add(1)
	u.inputTokens.Add(int64(inputTokens))
	u.outputTokens.Add(int64(outputTokens))
	u.costMicros.Add(int64(cost * 1e6))
}

func (u *UsageStats) Snapshot() Usage {
	if u == nil {
		return Usage{}
	}
	in := u.inputTokens.Load()
	out := u.outputTokens.Load()
	return Usage{
		APICalls:     u.apiCalls.Load(),
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
		TotalCost:    float64(u.costMicros.Load()) / 1e6,
	}
}

func (u *UsageStats) Reset() {
	if u == nil {
		return
	}
	u.apiCalls.Store(0)
	u.inputTokens.Store(0)
	u.outputTokens.Store(0)
	u.costMicros.Store(0)
}
