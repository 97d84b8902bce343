package handlers

import (
	"net/http"

	"github.com/bizenglishai/coach-gateway/pkg/gateway/config"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/lifecycle"
)

// HealthHandler reports process liveness. It never checks dependencies.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
}

type readyResponse struct {
	Status        string   `json:"status"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Issues        []string `json:"issues,omitempty"`
}

// ReadyHandler reports whether the gateway should receive traffic. Missing
// provider credentials are reported as issues but do not fail readiness: the
// degraded paths still serve.
func ReadyHandler(cfg config.Config, lc *lifecycle.Lifecycle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(lc.Uptime().Seconds())
		if lc.IsDraining() {
			writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "draining", UptimeSeconds: uptime})
			return
		}
		var issues []string
		if cfg.ElevenLabsAPIKey == "" {
			issues = append(issues, "ELEVENLABS_API_KEY not set; voice sessions will run degraded")
		}
		if cfg.OpenAIAPIKey == "" {
			issues = append(issues, "OPENAI_API_KEY not set; flashcards fall back to keyword matching")
		}
		if cfg.AnthropicAPIKey == "" {
			issues = append(issues, "ANTHROPIC_API_KEY not set; transcript generation uses the static fallback")
		}
		writeJSON(w, http.StatusOK, readyResponse{Status: "ready", UptimeSeconds: uptime, Issues: issues})
	})
}
