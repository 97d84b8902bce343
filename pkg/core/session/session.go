package session

import (
	"time"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// AudioChunk is one buffered audio segment with its arrival timestamp.
type AudioChunk struct {
	Data       []byte    `json:"data"`
	MimeType   string    `json:"mime_type"`
	ReceivedAt time.Time `json:"received_at"`
}

// Session tracks one live voice conversation from start to end. It lives in
// the session store under its ID and is removed, unconditionally, when End
// completes. A session lost to a restart is indistinguishable from an
// unknown id; End handles that as a first-class outcome.
type Session struct {
	ID                   string       `json:"id"`
	RemoteConversationID string       `json:"remote_conversation_id,omitempty"`
	AgentID              string       `json:"agent_id"`
	VoiceID              string       `json:"voice_id"`
	// Degraded means remote conversation creation failed at start. The
	// session proceeds on local fallbacks and End never dials the provider.
	Degraded          bool         `json:"degraded"`
	StartedAt         time.Time    `json:"started_at"`
	LastActivityAt    time.Time    `json:"last_activity_at"`
	Chunks            []AudioChunk `json:"chunks"`
	PartialTranscript []types.Turn `json:"partial_transcript,omitempty"`

	// ChunkCount counts every appended chunk, including ones later evicted
	// from the bounded buffer. N stream calls always yield ChunkCount == N.
	ChunkCount int `json:"chunk_count"`
	// BufferedBytes is the total size of Chunks currently held.
	BufferedBytes int64 `json:"buffered_bytes"`
}

// Append adds a chunk and bumps activity, evicting the oldest buffered
// chunks when either the count or byte cap would be exceeded. Caps of zero
// disable the respective bound.
func (s *Session) Append(chunk AudioChunk, maxChunks int, maxBytes int64) {
	s.Chunks = append(s.Chunks, chunk)
	s.ChunkCount++
	s.BufferedBytes += int64(len(chunk.Data))
	s.LastActivityAt = chunk.ReceivedAt

	for (maxChunks > 0 && len(s.Chunks) > maxChunks) ||
		(maxBytes > 0 && s.BufferedBytes > maxBytes && len(s.Chunks) > 1) {
		s.BufferedBytes -= int64(len(s.Chunks[0].Data))
		s.Chunks[0].Data = nil
		s.Chunks = s.Chunks[1:]
	}
}

// Duration reports elapsed time since the session started.
func (s *Session) Duration(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}
