package types

import (
	"time"
)

// SessionResult is what ending a voice session produces, whether the
// material came from the remote provider, local reconstruction, or the
// unknown-session fallback. The transcript is always non-empty.
type SessionResult struct {
	Transcript []Turn      `json:"transcript"`
	Flashcards []FlashCard `json:"flashcards"`
	Analysis   string      `json:"analysis"`
}

// ConversationRecord is the durable row backing one conversation. It is
// created before any voice session exists and updated exactly once, at
// conversation end. Last write wins; there is no optimistic locking.
type ConversationRecord struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	Topic      string      `json:"topic"`
	Persona    string      `json:"persona"`
	SkillLevel string      `json:"skillLevel"`
	Transcript []Turn      `json:"transcript"`
	Flashcards []FlashCard `json:"flashcards"`
	Analysis   string      `json:"analysis"`
	CreatedAt  time.Time   `json:"createdAt"`
	EndedAt    *time.Time  `json:"endedAt,omitempty"`
}

// Ended reports whether the record has been finalized. A finalized record
// always has a non-empty transcript.
func (r *ConversationRecord) Ended() bool {
	return r.EndedAt != nil
}
