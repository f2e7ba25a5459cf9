package models

// Flow names stored in FlowContext.Name.
const (
	FlowCaseIntake       = "case_intake"
	FlowDocumentDrafting = "draft_document"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation's history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// FlowContext tracks the progress of an active multi-step flow within
// a conversation. Step 0 means no active flow; each flow defines its
// own terminal step. Data accumulates extracted fields across turns
// with last-write-wins merge per field.
type FlowContext struct {
	Name string            `json:"name"`
	Step int               `json:"step"`
	Data map[string]string `json:"data"`
}

// NewFlowContext creates a fresh context for the named flow starting
// at step 1.
func NewFlowContext(name string) *FlowContext {
	return &FlowContext{Name: name, Step: 1, Data: make(map[string]string)}
}

// Merge applies newly extracted fields to the accumulated data,
// last write wins per field. Empty values are ignored.
func (fc *FlowContext) Merge(extracted map[string]string) {
	if fc.Data == nil {
		fc.Data = make(map[string]string)
	}
	for k, v := range extracted {
		if k == "" || v == "" {
			continue
		}
		fc.Data[k] = v
	}
}

// Conversation is the session aggregate persisted between turns:
// the append-only history plus the active flow context, if any.
type Conversation struct {
	ChatID  string       `json:"chat_id"`
	History []Turn       `json:"history"`
	Flow    *FlowContext `json:"flow_context,omitempty"`
}

// Append adds a turn to the history.
func (c *Conversation) Append(role, text string) {
	c.History = append(c.History, Turn{Role: role, Text: text})
}

// RecentHistory returns up to the last n turns, for use as context in
// extraction and generation prompts.
func (c *Conversation) RecentHistory(n int) []Turn {
	if n <= 0 || len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}
