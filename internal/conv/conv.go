// Package conv defines the conversation types shared by the assistant state,
// the durable chat log, and the task handlers.
package conv

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the human user.
	RoleUser Role = "user"

	// RoleAssistant marks a turn authored by the assistant.
	RoleAssistant Role = "assistant"

	// RoleSystem marks a synthesized context turn (clock info, search
	// snippets). System turns are injected per request and never persisted.
	RoleSystem Role = "system"
)

// IsValid reports whether r is a recognised role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is a single message in a conversation transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// User returns a user-authored turn with the given content.
func User(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// Assistant returns an assistant-authored turn with the given content.
func Assistant(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// System returns a synthesized system turn with the given content.
func System(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// CloneTurns returns a deep copy of turns. Turn values contain only value
// types, so a slice copy is sufficient; callers rely on the result being
// independent of the input backing array.
func CloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
