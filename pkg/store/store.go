// Package store persists conversation records. The gateway treats the
// database as a key-value-by-id upsert target; there is no migration logic
// beyond table bootstrap and no optimistic locking (last write wins).
package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// ErrNotFound is returned when a conversation id is unknown.
var ErrNotFound = errors.New("conversation not found")

// CreateConversation is the payload for ConversationStore.Create.
type CreateConversation struct {
	ID         string
	UserID     string
	Topic      string
	Persona    string
	SkillLevel string
}

// ConversationStore is the durable side of the session-to-storage bridge.
type ConversationStore interface {
	Create(ctx context.Context, create *CreateConversation) (*types.ConversationRecord, error)
	Get(ctx context.Context, id string) (*types.ConversationRecord, error)
	// Finalize writes transcript, flashcards, analysis and endedAt in a
	// single update. Calling it again overwrites the previous result.
	Finalize(ctx context.Context, id string, result types.SessionResult) error
	Close() error
}

func scanErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
