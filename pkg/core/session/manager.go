package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bizenglishai/coach-gateway/pkg/core"
	"github.com/bizenglishai/coach-gateway/pkg/core/study"
	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// AgentProvider is the voice-agent service the manager bridges to. All
// methods must honor context deadlines; the manager never lets a provider
// call run unbounded.
type AgentProvider interface {
	// Configured reports whether a credential is present at all.
	Configured() bool
	// Verify checks the credential against the provider (a cheap whoami).
	Verify(ctx context.Context) error
	// CreateConversation starts a remote conversation for the agent and
	// returns the provider's conversation id.
	CreateConversation(ctx context.Context, agentID, voiceID string) (string, error)
	// Relay forwards one audio chunk to the remote conversation.
	Relay(ctx context.Context, conversationID string, audio []byte, mimeType string) error
	// Transcript fetches the remote transcript for an ended conversation.
	Transcript(ctx context.Context, conversationID string) ([]types.Turn, error)
}

// RelayOutcome tags what happened to a chunk on its way to the provider.
// Buffered means the session has no remote channel (degraded); Dropped means
// the relay was attempted and failed. The chunk is kept locally either way.
type RelayOutcome string

const (
	RelayDelivered RelayOutcome = "delivered"
	RelayBuffered  RelayOutcome = "buffered"
	RelayDropped   RelayOutcome = "dropped"
)

// StreamAck acknowledges one stream call. Success is false only for an
// unknown session; relay failures still ack success so the caller's
// time-sliced recording loop keeps going.
type StreamAck struct {
	Success    bool         `json:"success"`
	Outcome    RelayOutcome `json:"outcome,omitempty"`
	ChunkCount int          `json:"chunk_count,omitempty"`
}

// StartResult is what start returns to the caller.
type StartResult struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

const (
	StatusActive   = "active"
	StatusDegraded = "degraded"
)

// Config bounds the manager's buffering and provider calls.
type Config struct {
	// MaxChunks / MaxChunkBytes cap the per-session audio buffer; overflow
	// evicts the oldest chunks. Zero disables the respective cap.
	MaxChunks     int
	MaxChunkBytes int64
	// VerifyCredential enables the whoami check during start.
	VerifyCredential bool
	// ProviderTimeout bounds create/relay calls.
	ProviderTimeout time.Duration
	// RetrievalTimeout and RetrievalAttempts bound the remote transcript
	// fetch during end.
	RetrievalTimeout  time.Duration
	RetrievalAttempts int
	RetrievalBackoff  time.Duration
	// ObserveDuration, when set, receives the start-to-end duration of each
	// session that actually existed when End was called.
	ObserveDuration func(time.Duration)
}

func (c Config) withDefaults() Config {
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 15 * time.Second
	}
	if c.RetrievalTimeout <= 0 {
		c.RetrievalTimeout = 10 * time.Second
	}
	if c.RetrievalAttempts <= 0 {
		c.RetrievalAttempts = 2
	}
	if c.RetrievalBackoff <= 0 {
		c.RetrievalBackoff = 500 * time.Millisecond
	}
	return c
}

// Manager owns the session lifecycle: start registers, stream buffers and
// relays, end retrieves or reconstructs a transcript, generates study
// material, and unregisters.
type Manager struct {
	store     Store
	provider  AgentProvider
	generator *study.Generator
	logger    *slog.Logger
	cfg       Config

	now func() time.Time
}

func NewManager(store Store, provider AgentProvider, generator *study.Generator, logger *slog.Logger, cfg Config) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:     store,
		provider:  provider,
		generator: generator,
		logger:    logger,
		cfg:       cfg.withDefaults(),
		now:       time.Now,
	}
}

// Start registers a new session. The remote conversation is best-effort: a
// provider failure degrades the session instead of aborting it, because end
// has a local fallback path.
func (m *Manager) Start(ctx context.Context, agentID, voiceID string) (StartResult, error) {
	if m.provider == nil || !m.provider.Configured() {
		return StartResult{}, core.NewConfigurationError("voice provider api key is not configured")
	}
	if m.cfg.VerifyCredential {
		verifyCtx, cancel := context.WithTimeout(ctx, m.cfg.ProviderTimeout)
		err := m.provider.Verify(verifyCtx)
		cancel()
		if err != nil {
			return StartResult{}, core.NewAuthenticationError(fmt.Sprintf("voice provider rejected credential: %v", err))
		}
	}

	s := &Session{
		ID:             m.newSessionID(ctx),
		AgentID:        agentID,
		VoiceID:        voiceID,
		StartedAt:      m.now(),
		LastActivityAt: m.now(),
	}

	createCtx, cancel := context.WithTimeout(ctx, m.cfg.ProviderTimeout)
	remoteID, err := m.provider.CreateConversation(createCtx, agentID, voiceID)
	cancel()
	if err != nil {
		m.logger.Warn("remote conversation creation failed, session degraded",
			"session_id", s.ID, "agent_id", agentID, "error", err)
		s.Degraded = true
	} else {
		s.RemoteConversationID = remoteID
	}

	if err := m.store.Put(ctx, s); err != nil {
		return StartResult{}, core.NewInternalError(fmt.Errorf("register session: %w", err))
	}

	status := StatusActive
	if s.Degraded {
		status = StatusDegraded
	}
	return StartResult{SessionID: s.ID, Status: status}, nil
}

// Stream appends a chunk to the session buffer and relays it best-effort.
// An unknown session acks {success:false}; it never errors, so a client's
// fixed-interval recording loop is never interrupted.
func (m *Manager) Stream(ctx context.Context, sessionID string, audio []byte, mimeType string) StreamAck {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Error("session store get failed", "session_id", sessionID, "error", err)
		}
		return StreamAck{Success: false}
	}

	s.Append(AudioChunk{Data: audio, MimeType: mimeType, ReceivedAt: m.now()}, m.cfg.MaxChunks, m.cfg.MaxChunkBytes)
	if err := m.store.Put(ctx, s); err != nil {
		m.logger.Error("session store put failed", "session_id", sessionID, "error", err)
		return StreamAck{Success: false}
	}

	outcome := RelayBuffered
	if !s.Degraded && s.RemoteConversationID != "" {
		relayCtx, cancel := context.WithTimeout(ctx, m.cfg.ProviderTimeout)
		err := m.provider.Relay(relayCtx, s.RemoteConversationID, audio, mimeType)
		cancel()
		if err != nil {
			// Relay failures are logged and swallowed; the chunk stays buffered.
			m.logger.Warn("chunk relay failed", "session_id", sessionID, "error", err)
			outcome = RelayDropped
		} else {
			outcome = RelayDelivered
		}
	}
	return StreamAck{Success: true, Outcome: outcome, ChunkCount: s.ChunkCount}
}

// End retrieves (or reconstructs) the transcript, generates study material,
// and removes the session. It never fails for missing data: an unknown id,
// a second end on the same id, and a session lost to a restart all take the
// synthesized-fallback path so downstream persistence always has something
// non-empty to write.
func (m *Manager) End(ctx context.Context, sessionID string) types.SessionResult {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Error("session store get failed", "session_id", sessionID, "error", err)
		}
		m.logger.Info("ending unknown session with synthesized material", "session_id", sessionID)
		return m.generator.Result(ctx, placeholderTranscript(m.now()))
	}

	// End-once: remove the registration before any slow work so a concurrent
	// or repeated end takes the unknown-session path.
	if err := m.store.Delete(ctx, sessionID); err != nil {
		m.logger.Error("session store delete failed", "session_id", sessionID, "error", err)
	}

	turns := m.retrieveTranscript(ctx, s)
	if len(turns) == 0 {
		turns = m.reconstructTranscript(s)
	}

	duration := s.Duration(m.now())
	if m.cfg.ObserveDuration != nil {
		m.cfg.ObserveDuration(duration)
	}
	m.logger.Info("session ended",
		"session_id", sessionID,
		"degraded", s.Degraded,
		"turns", len(turns),
		"chunks", s.ChunkCount,
		"duration_ms", duration.Milliseconds(),
	)
	return m.generator.Result(ctx, turns)
}

// retrieveTranscript fetches the remote transcript with bounded retries.
// Degraded sessions have no remote id to query and are skipped outright.
func (m *Manager) retrieveTranscript(ctx context.Context, s *Session) []types.Turn {
	if s.Degraded || s.RemoteConversationID == "" {
		return nil
	}
	for attempt := 1; attempt <= m.cfg.RetrievalAttempts; attempt++ {
		fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.RetrievalTimeout)
		turns, err := m.provider.Transcript(fetchCtx, s.RemoteConversationID)
		cancel()
		if err == nil && len(turns) > 0 {
			return turns
		}
		if err != nil {
			m.logger.Warn("remote transcript retrieval failed",
				"session_id", s.ID, "attempt", attempt, "error", err)
		}
		if attempt < m.cfg.RetrievalAttempts {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(m.cfg.RetrievalBackoff):
			}
		}
	}
	return nil
}

// reconstructTranscript builds a best-effort transcript from locally
// buffered state. Clearly inferior to the remote transcript, but non-empty.
func (m *Manager) reconstructTranscript(s *Session) []types.Turn {
	if len(s.PartialTranscript) > 0 {
		return s.PartialTranscript
	}
	now := m.now()
	if s.ChunkCount > 0 {
		seconds := int(s.Duration(now).Seconds())
		return []types.Turn{
			types.NewTurn(types.RoleUser,
				fmt.Sprintf("(spoken practice session: %d audio segments over %d seconds; automatic transcription was unavailable)", s.ChunkCount, seconds),
				s.StartedAt),
			types.NewTurn(types.RoleAssistant,
				"Thanks for practicing today. Review the vocabulary below to keep building on this session.",
				now),
		}
	}
	return placeholderTranscript(now)
}

func placeholderTranscript(now time.Time) []types.Turn {
	return []types.Turn{
		types.NewTurn(types.RoleUser,
			"I'd like to practice my business English.",
			now.Add(-30*time.Second)),
		types.NewTurn(types.RoleAssistant,
			"Excellent! Practicing regularly is the best way to improve. Let's review some useful business vocabulary from your sessions.",
			now),
	}
}

// newSessionID generates a fresh id, retrying only on an actual collision
// with a registered session. If the store is unreachable or the context has
// expired the candidate id is returned as-is and the subsequent Put surfaces
// the failure; this loop must never spin on store errors.
func (m *Manager) newSessionID(ctx context.Context) string {
	for {
		id := "sess_" + uuid.NewString()
		_, err := m.store.Get(ctx, id)
		if err != nil || ctx.Err() != nil {
			return id
		}
	}
}
