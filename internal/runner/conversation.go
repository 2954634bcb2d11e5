package runner

import (
	"github.com/stellarlinkco/bizbench/internal/llm"
	"github.com/stellarlinkco/bizbench/internal/tool"
)

// conversationState is the private, append-only transcript of one run. Each
// unit owns exactly one; nothing is shared between concurrent units.
type conversationState struct {
	messages []llm.Message
	records  []tool.InvocationRecord

	// turnStart marks where the current turn's records begin, so evaluators
	// see only the calls made on the turn under assessment.
	turnStart int
}

func newConversationState() *conversationState {
	return &conversationState{}
}

func (c *conversationState) append(m llm.Message) {
	c.messages = append(c.messages, m)
}

func (c *conversationState) record(rec tool.InvocationRecord) {
	c.records = append(c.records, rec)
}

func (c *conversationState) history() []llm.Message {
	return c.messages
}

func (c *conversationState) beginTurn() {
	c.turnStart = len(c.records)
}

func (c *conversationState) turnRecords() []tool.InvocationRecord {
	return c.records[c.turnStart:]
}
