package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bizenglishai/coach-gateway/pkg/core"
	"github.com/bizenglishai/coach-gateway/pkg/core/providers/elevenlabs"
	"github.com/bizenglishai/coach-gateway/pkg/core/session"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/config"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/lifecycle"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/metrics"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/mw"
)

// Synthesizer is the slice of the TTS provider the agent handler needs.
type Synthesizer interface {
	Configured() bool
	Synthesize(ctx context.Context, text, voiceID string) (*elevenlabs.Synthesis, error)
}

// AgentHandler serves POST /v1/agent: the voice-session lifecycle
// (start/stream/end) plus the stateless tts action, discriminated by the
// "action" field of the JSON body.
type AgentHandler struct {
	Config    config.Config
	Sessions  *session.Manager
	TTS       Synthesizer
	Logger    *slog.Logger
	Lifecycle *lifecycle.Lifecycle
	Metrics   *metrics.Metrics
}

type agentRequest struct {
	Action    string `json:"action"`
	AgentID   string `json:"agentId"`
	VoiceID   string `json:"voiceId"`
	SessionID string `json:"sessionId"`
	AudioData string `json:"audioData"`
	MimeType  string `json:"mimeType"`
	Text      string `json:"text"`
}

func (h AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	if r.Method != http.MethodPost {
		writeCoreErrorJSON(w, reqID, core.NewInvalidRequestError("method not allowed"), http.StatusMethodNotAllowed)
		return
	}
	if h.Lifecycle != nil && h.Lifecycle.IsDraining() {
		writeCoreErrorJSON(w, reqID, &core.Error{
			Type:    core.ErrProviderUnavailable,
			Message: "gateway is draining",
		}, http.StatusServiceUnavailable)
		return
	}

	var req agentRequest
	if err := decodeBody(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		h.count(req.Action, "invalid")
		writeErr(w, reqID, err)
		return
	}

	ctx := r.Context()
	if h.Config.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Config.HandlerTimeout)
		defer cancel()
	}

	switch strings.TrimSpace(req.Action) {
	case "start":
		h.handleStart(ctx, w, reqID, req)
	case "stream":
		h.handleStream(ctx, w, reqID, req)
	case "end":
		h.handleEnd(ctx, w, reqID, req)
	case "tts":
		h.handleTTS(ctx, w, reqID, req)
	default:
		h.count(req.Action, "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam(
			fmt.Sprintf("unknown action %q", req.Action), "action"))
	}
}

func (h AgentHandler) handleStart(ctx context.Context, w http.ResponseWriter, reqID string, req agentRequest) {
	if strings.TrimSpace(req.AgentID) == "" {
		h.count("start", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("agentId is required", "agentId"))
		return
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		h.count("start", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("voiceId is required", "voiceId"))
		return
	}

	result, err := h.Sessions.Start(ctx, req.AgentID, req.VoiceID)
	if err != nil {
		h.count("start", "error")
		writeErr(w, reqID, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.SessionsActive.Inc()
		h.Metrics.SessionsTotal.WithLabelValues(result.Status).Inc()
	}
	h.count("start", "ok")
	writeJSON(w, http.StatusOK, result)
}

func (h AgentHandler) handleStream(ctx context.Context, w http.ResponseWriter, reqID string, req agentRequest) {
	if strings.TrimSpace(req.SessionID) == "" {
		h.count("stream", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("sessionId is required", "sessionId"))
		return
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		h.count("stream", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("audioData is not valid base64", "audioData"))
		return
	}

	ack := h.Sessions.Stream(ctx, req.SessionID, audio, req.MimeType)
	if h.Metrics != nil && ack.Success {
		h.Metrics.ChunksTotal.WithLabelValues(string(ack.Outcome)).Inc()
		h.Metrics.ChunkBytesTotal.Add(float64(len(audio)))
	}
	h.count("stream", "ok")
	// An unknown session is a soft failure: always HTTP 200 with a boolean
	// ack, never an error that would abort the client's recording loop.
	writeJSON(w, http.StatusOK, ack)
}

func (h AgentHandler) handleEnd(ctx context.Context, w http.ResponseWriter, reqID string, req agentRequest) {
	if strings.TrimSpace(req.SessionID) == "" {
		h.count("end", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("sessionId is required", "sessionId"))
		return
	}

	// The active-sessions gauge is decremented by the manager's duration
	// hook, which fires only when the session actually existed; decrementing
	// here would drift the gauge negative on unknown or repeated ends.
	result := h.Sessions.End(ctx, req.SessionID)
	h.count("end", "ok")
	writeJSON(w, http.StatusOK, result)
}

func (h AgentHandler) handleTTS(ctx context.Context, w http.ResponseWriter, reqID string, req agentRequest) {
	if strings.TrimSpace(req.Text) == "" {
		h.count("tts", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("text is required", "text"))
		return
	}
	if strings.TrimSpace(req.VoiceID) == "" {
		h.count("tts", "invalid")
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("voiceId is required", "voiceId"))
		return
	}
	if h.TTS == nil || !h.TTS.Configured() {
		h.count("tts", "error")
		writeErr(w, reqID, core.NewConfigurationError("tts provider api key is not configured"))
		return
	}

	start := time.Now()
	synth, err := h.TTS.Synthesize(ctx, req.Text, req.VoiceID)
	if h.Metrics != nil {
		h.Metrics.TTSDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		// Distinguishable from success so the UI can fall back to an
		// on-device synthesizer.
		h.count("tts", "error")
		writeErr(w, reqID, core.NewProviderUnavailableError("elevenlabs", err))
		return
	}

	h.count("tts", "ok")
	writeJSON(w, http.StatusOK, map[string]string{
		"audioUrl": fmt.Sprintf("data:%s;base64,%s", synth.ContentType, base64.StdEncoding.EncodeToString(synth.Audio)),
	})
}

func (h AgentHandler) count(action, result string) {
	if h.Metrics == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	h.Metrics.ActionsTotal.WithLabelValues(action, result).Inc()
}
