// Package sessions implements the crash-safe, schema-versioned conversation
// log store and its resume validation.
package sessions

import "time"

// CurrentSchemaVersion is the schema version this build writes and accepts.
const CurrentSchemaVersion = 1

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// AssistantToolCall is a tool call an assistant message requested.
type AssistantToolCall struct {
	CallID       string `json:"call_id"`
	FunctionName string `json:"function_name"`
	Arguments    string `json:"arguments"`
}

// Content is either plain text or a tool result, matching the
// Text{text} | ToolResult{call_id, content} union.
type Content struct {
	Text       string `json:"text,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolResult string `json:"tool_result,omitempty"`
}

// Message is one turn participant's contribution.
type Message struct {
	Role      Role                `json:"role"`
	Content   Content             `json:"content"`
	ToolCalls []AssistantToolCall `json:"tool_calls,omitempty"`
}

// Meta is a session's identity and bookkeeping fields.
type Meta struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TurnCount     int       `json:"turn_count"`
	TotalTokens   int       `json:"total_tokens"`
	SystemPrompt  string    `json:"system_prompt,omitempty"`
	Model         string    `json:"model,omitempty"`
	ProviderID    string    `json:"provider_id,omitempty"`
	SchemaVersion int       `json:"schema_version"`
}

// Session is the persisted unit: one session is owned by the store, callers
// receive copies.
type Session struct {
	Meta     Meta      `json:"meta"`
	Messages []Message `json:"messages"`
}

// New creates a fresh session with the given id and optional system prompt.
func New(id string, systemPrompt string, now time.Time) *Session {
	s := &Session{
		Meta: Meta{
			ID:            id,
			CreatedAt:     now,
			UpdatedAt:     now,
			SchemaVersion: CurrentSchemaVersion,
			SystemPrompt:  systemPrompt,
		},
	}
	return s
}

// Touch refreshes UpdatedAt; callers invoke this on any mutation.
func (s *Session) Touch(now time.Time) { s.Meta.UpdatedAt = now }
