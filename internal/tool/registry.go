package tool

import "sort"

// Default builds the standard business tool set keyed by tool name. Each tool
// gets its own seeded error source so failure injection stays reproducible.
func Default(errorRate float64, seed int64) map[string]Tool {
	build := []func(float64, int64) *SimTool{
		NewKnowledgeBase,
		NewScheduler,
		NewPricingCalculator,
		NewProductCatalog,
		NewCustomerHistory,
		NewSupportTicket,
		NewDocumentRetrieval,
		NewOrderManagement,
	}
	out := make(map[string]Tool, len(build))
	for i, f := range build {
		toolSeed := seed
		if toolSeed != 0 {
			toolSeed += int64(i)
		}
		t := f(errorRate, toolSeed)
		out[t.Definition().Name] = t
	}
	return out
}

// Definitions returns the definitions for a tool map sorted by tool name.
func Definitions(tools map[string]Tool) []Definition {
	defs := make([]Definition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}
