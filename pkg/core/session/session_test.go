package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chunkOf(size int, at time.Time) AudioChunk {
	return AudioChunk{Data: make([]byte, size), MimeType: "audio/webm", ReceivedAt: at}
}

func TestAppendEvictsByCount(t *testing.T) {
	s := &Session{ID: "sess_test"}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.Append(chunkOf(10, at.Add(time.Duration(i)*time.Second)), 3, 0)
	}

	require.Len(t, s.Chunks, 3)
	require.Equal(t, 5, s.ChunkCount)
	require.Equal(t, int64(30), s.BufferedBytes)
	require.Equal(t, at.Add(4*time.Second), s.LastActivityAt)
}

func TestAppendEvictsByBytes(t *testing.T) {
	s := &Session{ID: "sess_test"}
	at := time.Now()

	for i := 0; i < 4; i++ {
		s.Append(chunkOf(100, at), 0, 250)
	}

	require.Len(t, s.Chunks, 2)
	require.Equal(t, int64(200), s.BufferedBytes)
	require.Equal(t, 4, s.ChunkCount)
}

func TestAppendOversizedChunkKept(t *testing.T) {
	s := &Session{ID: "sess_test"}

	// A single chunk larger than the byte cap is still held; the cap only
	// evicts down to one chunk.
	s.Append(chunkOf(500, time.Now()), 0, 250)
	require.Len(t, s.Chunks, 1)
	require.Equal(t, int64(500), s.BufferedBytes)
}

func TestAppendUnbounded(t *testing.T) {
	s := &Session{ID: "sess_test"}
	for i := 0; i < 100; i++ {
		s.Append(chunkOf(1, time.Now()), 0, 0)
	}
	require.Len(t, s.Chunks, 100)
	require.Equal(t, 100, s.ChunkCount)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := t.Context()

	_, err := store.Get(ctx, "sess_missing")
	require.ErrorIs(t, err, ErrNotFound)

	s := &Session{ID: "sess_1", AgentID: "agent-1"}
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, "sess_1")
	require.NoError(t, err)
	require.Equal(t, "agent-1", got.AgentID)

	require.NoError(t, store.Delete(ctx, "sess_1"))
	_, err = store.Get(ctx, "sess_1")
	require.ErrorIs(t, err, ErrNotFound)
}
