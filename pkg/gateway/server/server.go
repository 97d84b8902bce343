// Package server assembles the gateway: providers, stores, the session
// manager, handlers and the middleware chain.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bizenglishai/coach-gateway/pkg/core/providers/anthropic"
	"github.com/bizenglishai/coach-gateway/pkg/core/providers/elevenlabs"
	"github.com/bizenglishai/coach-gateway/pkg/core/providers/openai"
	"github.com/bizenglishai/coach-gateway/pkg/core/session"
	"github.com/bizenglishai/coach-gateway/pkg/core/study"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/config"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/handlers"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/lifecycle"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/metrics"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/mw"
	"github.com/bizenglishai/coach-gateway/pkg/store"
)

type Server struct {
	cfg       config.Config
	logger    *slog.Logger
	mux       *http.ServeMux
	lifecycle *lifecycle.Lifecycle
	metrics   *metrics.Metrics

	voice         *elevenlabs.Client
	conversations store.ConversationStore
}

// New builds a fully wired Server. The caller owns shutdown: Close releases
// the conversation store and provider connections.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	strategy, err := study.ParseStrategy(cfg.FlashcardStrategy)
	if err != nil {
		return nil, err
	}

	voice := elevenlabs.New(cfg.ElevenLabsAPIKey)
	if cfg.ElevenLabsBaseURL != "" {
		voice = voice.WithBaseURL(cfg.ElevenLabsBaseURL)
	}
	if cfg.ElevenLabsWSBaseURL != "" {
		voice = voice.WithWSBaseURL(cfg.ElevenLabsWSBaseURL)
	}

	chat := openai.New(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		chat = chat.WithBaseURL(cfg.OpenAIBaseURL)
	}

	text := anthropic.New(cfg.AnthropicAPIKey)
	if cfg.AnthropicBaseURL != "" {
		text = text.WithBaseURL(cfg.AnthropicBaseURL)
	}

	m := metrics.New("bizenglish")

	generator := &study.Generator{
		Strategy: strategy,
		Text:     chat,
		Logger:   logger,
		Observe: func(used study.Strategy, cards int) {
			m.FlashcardsGenerated.WithLabelValues(string(used)).Add(float64(cards))
		},
	}

	var sessions session.Store
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		sessions = session.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.SessionTTL)
	default:
		sessions = session.NewMemoryStore()
	}

	manager := session.NewManager(sessions, voice, generator, logger, session.Config{
		MaxChunks:         cfg.MaxSessionChunks,
		MaxChunkBytes:     cfg.MaxSessionChunkBytes,
		VerifyCredential:  cfg.VerifyProviderCredential,
		ProviderTimeout:   cfg.ProviderTimeout,
		RetrievalTimeout:  cfg.RetrievalTimeout,
		RetrievalAttempts: cfg.RetrievalAttempts,
		ObserveDuration: func(d time.Duration) {
			// Runs only when the ended session actually existed, so the
			// gauge cannot drift negative on unknown or repeated ends.
			m.SessionsActive.Dec()
			m.SessionDuration.Observe(d.Seconds())
		},
	})

	conversations, err := store.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:           cfg,
		logger:        logger,
		mux:           http.NewServeMux(),
		lifecycle:     lifecycle.New(),
		metrics:       m,
		voice:         voice,
		conversations: conversations,
	}

	agent := handlers.AgentHandler{
		Config:    cfg,
		Sessions:  manager,
		TTS:       voice,
		Logger:    logger,
		Lifecycle: s.lifecycle,
		Metrics:   s.metrics,
	}
	convs := handlers.ConversationsHandler{Config: cfg, Store: conversations, Logger: logger}
	chatH := handlers.ChatHandler{Config: cfg, Chat: chat, Logger: logger}
	transcriptH := handlers.TranscriptHandler{Config: cfg, Text: text, Logger: logger}

	s.mux.Handle("POST /v1/agent", agent)
	s.mux.HandleFunc("POST /v1/conversations", convs.Create)
	s.mux.HandleFunc("GET /v1/conversations/{id}", convs.Get)
	s.mux.HandleFunc("POST /v1/conversations/{id}/finalize", convs.Finalize)
	s.mux.HandleFunc("GET /v1/conversations/{id}/export", convs.Export)
	s.mux.Handle("POST /v1/chat", chatH)
	s.mux.Handle("POST /v1/transcript", transcriptH)
	s.mux.Handle("GET /healthz", handlers.HealthHandler())
	s.mux.Handle("GET /readyz", handlers.ReadyHandler(cfg, s.lifecycle))
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	return s, nil
}

// Handler returns the mux wrapped in the middleware chain. Order matters:
// request id first so every later layer can log it.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Auth(s.cfg, h)
	h = mw.CORS(s.cfg, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// SetDraining flips readiness ahead of shutdown so load balancers stop
// routing new sessions here while in-flight requests finish.
func (s *Server) SetDraining(draining bool) {
	s.lifecycle.SetDraining(draining)
}

// Close releases provider connections and the conversation store.
func (s *Server) Close() error {
	err := s.conversations.Close()
	if cerr := s.voice.Close(); err == nil {
		err = cerr
	}
	return err
}
