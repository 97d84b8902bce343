package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec, err := s.Create(ctx, &CreateConversation{
		ID:         "conv_1",
		UserID:     "user_1",
		Topic:      "negotiation",
		Persona:    "sales director",
		SkillLevel: "B2",
	})
	require.NoError(t, err)
	require.Equal(t, "conv_1", rec.ID)
	require.Equal(t, "negotiation", rec.Topic)
	require.Empty(t, rec.Transcript)
	require.Empty(t, rec.Flashcards)
	require.False(t, rec.Ended())
	require.WithinDuration(t, time.Now(), rec.CreatedAt, time.Minute)

	got, err := s.Get(ctx, "conv_1")
	require.NoError(t, err)
	require.Equal(t, rec.ID, got.ID)
	require.Equal(t, rec.SkillLevel, got.SkillLevel)
}

func TestGetUnknown(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "conv_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &CreateConversation{
		ID: "conv_1", UserID: "user_1", Topic: "interviews", Persona: "recruiter", SkillLevel: "B1",
	})
	require.NoError(t, err)

	result := types.SessionResult{
		Transcript: []types.Turn{
			types.NewTurn(types.RoleUser, "Tell me about the role.", time.Now()),
			types.NewTurn(types.RoleAssistant, "Gladly. It's a client-facing position.", time.Now()),
		},
		Flashcards: []types.FlashCard{
			{Term: "role", Definition: "a position in an organization", ProficiencyLevel: types.LevelB1},
		},
		Analysis: "Short but productive exchange.",
	}
	require.NoError(t, s.Finalize(ctx, "conv_1", result))

	rec, err := s.Get(ctx, "conv_1")
	require.NoError(t, err)
	require.True(t, rec.Ended())
	require.Equal(t, result.Transcript, rec.Transcript)
	require.Equal(t, result.Flashcards, rec.Flashcards)
	require.Equal(t, result.Analysis, rec.Analysis)
}

func TestFinalizeOverwrites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, &CreateConversation{
		ID: "conv_1", UserID: "user_1", Topic: "budgets", Persona: "CFO", SkillLevel: "C1",
	})
	require.NoError(t, err)

	first := types.SessionResult{
		Transcript: []types.Turn{types.NewTurn(types.RoleUser, "first", time.Now())},
		Analysis:   "first",
	}
	second := types.SessionResult{
		Transcript: []types.Turn{types.NewTurn(types.RoleUser, "second", time.Now())},
		Analysis:   "second",
	}
	require.NoError(t, s.Finalize(ctx, "conv_1", first))
	require.NoError(t, s.Finalize(ctx, "conv_1", second))

	rec, err := s.Get(ctx, "conv_1")
	require.NoError(t, err)
	require.Equal(t, "second", rec.Analysis)
	require.Len(t, rec.Transcript, 1)
	require.Equal(t, "second", rec.Transcript[0].Content)
}

func TestFinalizeUnknown(t *testing.T) {
	s := openTestStore(t)
	err := s.Finalize(context.Background(), "conv_missing", types.SessionResult{
		Transcript: []types.Turn{types.NewTurn(types.RoleUser, "hello", time.Now())},
	})
	require.ErrorIs(t, err, ErrNotFound)
}
