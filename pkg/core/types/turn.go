package types

import (
	"strings"
	"time"
)

// Role attributes a transcript turn to one side of the conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation transcript. Turns are append-only
// and ordered; timestamps are monotonic non-decreasing within a transcript,
// not wall-clock exact.
type Turn struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // ISO-8601 / RFC 3339
}

// NewTurn builds a turn stamped at the given time.
func NewTurn(role Role, content string, at time.Time) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

// WordCount counts whitespace-separated tokens across all turns.
func WordCount(turns []Turn) int {
	total := 0
	for _, turn := range turns {
		total += len(strings.Fields(turn.Content))
	}
	return total
}

// CountByRole returns the number of turns attributed to the given role.
func CountByRole(turns []Turn, role Role) int {
	n := 0
	for _, turn := range turns {
		if turn.Role == role {
			n++
		}
	}
	return n
}

// JoinTranscript renders turns as "User: ..." / "AI: ..." lines, the form
// the study pipeline scans and embeds in provider prompts.
func JoinTranscript(turns []Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		if turn.Role == RoleAssistant {
			b.WriteString("AI: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(turn.Content)
	}
	return b.String()
}
