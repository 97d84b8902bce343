package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthModeRequired AuthMode = "required"
	AuthModeOptional AuthMode = "optional"
	AuthModeDisabled AuthMode = "disabled"
)

type SessionStoreKind string

const (
	SessionStoreMemory SessionStoreKind = "memory"
	SessionStoreRedis  SessionStoreKind = "redis"
)

type Config struct {
	Addr string

	AuthMode AuthMode
	APIKeys  map[string]struct{}

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Provider credentials. Absence is not a load error: the first operation
	// that needs a missing credential fails with a configuration error.
	ElevenLabsAPIKey string
	OpenAIAPIKey     string
	AnthropicAPIKey  string

	// Endpoint overrides, primarily for tests.
	ElevenLabsBaseURL   string
	ElevenLabsWSBaseURL string
	OpenAIBaseURL       string
	AnthropicBaseURL    string

	// VerifyProviderCredential enables the whoami check during session start.
	VerifyProviderCredential bool

	// FlashcardStrategy selects keyword or provider generation.
	FlashcardStrategy string

	// Session registry backend.
	SessionStore  SessionStoreKind
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// Per-session audio buffer caps; overflow evicts oldest chunks.
	MaxSessionChunks     int
	MaxSessionChunkBytes int64

	MaxBodyBytes int64

	// Upstream call bounds.
	ProviderTimeout   time.Duration
	RetrievalTimeout  time.Duration
	RetrievalAttempts int

	// Durable conversation store.
	SQLitePath string

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	HandlerTimeout      time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                     envOr("BIZENGLISH_ADDR", ":8080"),
		AuthMode:                 AuthMode(envOr("BIZENGLISH_AUTH_MODE", string(AuthModeDisabled))),
		APIKeys:                  make(map[string]struct{}),
		CORSAllowedOrigins:       make(map[string]struct{}),
		ElevenLabsAPIKey:         strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
		OpenAIAPIKey:             strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		AnthropicAPIKey:          strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		ElevenLabsBaseURL:        envOr("BIZENGLISH_ELEVENLABS_BASE_URL", ""),
		ElevenLabsWSBaseURL:      envOr("BIZENGLISH_ELEVENLABS_WS_BASE_URL", ""),
		OpenAIBaseURL:            envOr("BIZENGLISH_OPENAI_BASE_URL", ""),
		AnthropicBaseURL:         envOr("BIZENGLISH_ANTHROPIC_BASE_URL", ""),
		VerifyProviderCredential: envBoolOr("BIZENGLISH_VERIFY_PROVIDER_CREDENTIAL", false),
		FlashcardStrategy:        envOr("BIZENGLISH_FLASHCARD_STRATEGY", "keyword"),
		SessionStore:             SessionStoreKind(envOr("BIZENGLISH_SESSION_STORE", string(SessionStoreMemory))),
		RedisAddr:                envOr("BIZENGLISH_REDIS_ADDR", "localhost:6379"),
		RedisPassword:            os.Getenv("BIZENGLISH_REDIS_PASSWORD"),
		RedisDB:                  envIntOr("BIZENGLISH_REDIS_DB", 0),
		SessionTTL:               envDurationOr("BIZENGLISH_SESSION_TTL", 30*time.Minute),
		MaxSessionChunks:         envIntOr("BIZENGLISH_MAX_SESSION_CHUNKS", 360),
		MaxSessionChunkBytes:     envInt64Or("BIZENGLISH_MAX_SESSION_CHUNK_BYTES", 32<<20), // 32 MiB
		MaxBodyBytes:             envInt64Or("BIZENGLISH_MAX_BODY_BYTES", 8<<20),           // 8 MiB
		ProviderTimeout:          envDurationOr("BIZENGLISH_PROVIDER_TIMEOUT", 15*time.Second),
		RetrievalTimeout:         envDurationOr("BIZENGLISH_RETRIEVAL_TIMEOUT", 10*time.Second),
		RetrievalAttempts:        envIntOr("BIZENGLISH_RETRIEVAL_ATTEMPTS", 2),
		SQLitePath:               envOr("BIZENGLISH_SQLITE_PATH", "coach-gateway.db"),
		ReadHeaderTimeout:        envDurationOr("BIZENGLISH_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:              envDurationOr("BIZENGLISH_READ_TIMEOUT", 30*time.Second),
		HandlerTimeout:           envDurationOr("BIZENGLISH_TOTAL_REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownGracePeriod:      envDurationOr("BIZENGLISH_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
	}

	switch cfg.AuthMode {
	case AuthModeRequired, AuthModeOptional, AuthModeDisabled:
	default:
		return Config{}, fmt.Errorf("BIZENGLISH_AUTH_MODE must be one of required|optional|disabled")
	}

	switch cfg.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return Config{}, fmt.Errorf("BIZENGLISH_SESSION_STORE must be one of memory|redis")
	}

	switch cfg.FlashcardStrategy {
	case "keyword", "provider":
	default:
		return Config{}, fmt.Errorf("BIZENGLISH_FLASHCARD_STRATEGY must be one of keyword|provider")
	}

	for _, key := range splitCSV(os.Getenv("BIZENGLISH_API_KEYS")) {
		cfg.APIKeys[key] = struct{}{}
	}
	for _, origin := range splitCSV(os.Getenv("BIZENGLISH_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.AuthMode == AuthModeRequired && len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_API_KEYS must be set when BIZENGLISH_AUTH_MODE=required")
	}

	if cfg.SessionStore == SessionStoreRedis && strings.TrimSpace(cfg.RedisAddr) == "" {
		return Config{}, fmt.Errorf("BIZENGLISH_REDIS_ADDR must be set when BIZENGLISH_SESSION_STORE=redis")
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_MAX_BODY_BYTES must be > 0")
	}
	if cfg.MaxSessionChunks < 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_MAX_SESSION_CHUNKS must be >= 0")
	}
	if cfg.MaxSessionChunkBytes < 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_MAX_SESSION_CHUNK_BYTES must be >= 0")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_SESSION_TTL must be > 0")
	}
	if cfg.ProviderTimeout <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_PROVIDER_TIMEOUT must be > 0")
	}
	if cfg.RetrievalTimeout <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_RETRIEVAL_TIMEOUT must be > 0")
	}
	if cfg.RetrievalAttempts <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_RETRIEVAL_ATTEMPTS must be > 0")
	}
	if strings.TrimSpace(cfg.SQLitePath) == "" {
		return Config{}, fmt.Errorf("BIZENGLISH_SQLITE_PATH must not be empty")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_READ_TIMEOUT must be > 0")
	}
	if cfg.HandlerTimeout <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_TOTAL_REQUEST_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("BIZENGLISH_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
