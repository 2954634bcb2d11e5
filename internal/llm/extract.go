package llm

import (
	"fmt"
	"regexp"
	"strings"
)

// ToolCallExtractor recovers tool-call requests from providers that cannot
// emit them as structured fields and instead tag them inline in generated
// text. Extract returns the text with the tagged calls removed plus the
// parsed calls in order of appearance.
type ToolCallExtractor interface {
	Extract(text string) (string, []ToolUse)
}

// TaggedTextExtractor parses calls in the form
//
//	<function_call name='tool_name'>{"arg": "value"}</function_call>
//
// Calls get synthesized ordinal ids so downstream consumers can correlate
// results the same way as with structured calls.
type TaggedTextExtractor struct{}

var taggedCallPattern = regexp.MustCompile(`(?s)<function_call name=['"](.*?)['"]>(.*?)</function_call>`)

func (TaggedTextExtractor) Extract(text string) (string, []ToolUse) {
	matches := taggedCallPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	calls := make([]ToolUse, 0, len(matches))
	for i, m := range matches {
		raw := strings.TrimSpace(m[2])
		calls = append(calls, ToolUse{
			ID:           fmt.Sprintf("call_%d", i+1),
			Name:         strings.TrimSpace(m[1]),
			Arguments:    parseToolArguments(raw),
			RawArguments: raw,
		})
	}

	clean := strings.TrimSpace(taggedCallPattern.ReplaceAllString(text, ""))
	return clean, calls
}
