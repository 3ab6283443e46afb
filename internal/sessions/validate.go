package sessions

import "fmt"

// Validate checks a loaded session is safe to resume: schema version is
// supported, there is at least one message, system messages only appear at
// the beginning, and every ToolResult's call_id matches a pending
// AssistantToolCall from the immediately preceding assistant message.
func Validate(sess *Session) error {
	if sess.Meta.SchemaVersion > CurrentSchemaVersion {
		return &SchemaMismatchError{
			ID:             sess.Meta.ID,
			SchemaVersion:  sess.Meta.SchemaVersion,
			CurrentVersion: CurrentSchemaVersion,
		}
	}

	if len(sess.Messages) == 0 {
		return fmt.Errorf("sessions: session %s has no messages", sess.Meta.ID)
	}

	seenNonSystem := false
	pending := map[string]bool{}
	for i, msg := range sess.Messages {
		if msg.Role == RoleSystem {
			if seenNonSystem {
				return fmt.Errorf("sessions: session %s: system message at index %d is not at the beginning", sess.Meta.ID, i)
			}
			continue
		}
		seenNonSystem = true

		switch msg.Role {
		case RoleAssistant:
			pending = map[string]bool{}
			for _, tc := range msg.ToolCalls {
				pending[tc.CallID] = true
			}
		case RoleTool:
			if msg.Content.ToolCallID == "" || !pending[msg.Content.ToolCallID] {
				return fmt.Errorf(
					"sessions: session %s: tool message at index %d references unknown or stale call_id %q",
					sess.Meta.ID, i, msg.Content.ToolCallID,
				)
			}
			delete(pending, msg.Content.ToolCallID)
		}
	}

	return nil
}

// ValidateProviderSwitch is non-fatal: it reports (via the returned string)
// when the session's original provider differs from the one about to
// resume it, naming both providers and the session id, so
// scenario 6. An empty string means no switch occurred.
func ValidateProviderSwitch(sess *Session, currentProviderID string) string {
	if sess.Meta.ProviderID == "" || currentProviderID == "" || sess.Meta.ProviderID == currentProviderID {
		return ""
	}
	return fmt.Sprintf(
		"session %s was created with provider %q but is resuming with provider %q",
		sess.Meta.ID, sess.Meta.ProviderID, currentProviderID,
	)
}
