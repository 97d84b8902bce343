package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bizenglishai/coach-gateway/pkg/core"
	"github.com/bizenglishai/coach-gateway/pkg/core/study"
	"github.com/bizenglishai/coach-gateway/pkg/core/types"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/config"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/mw"
)

// TranscriptCompleter is the slice of the text provider used for transcript
// synthesis.
type TranscriptCompleter interface {
	Configured() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// TranscriptHandler generates a plausible coaching transcript for a topic and
// duration. It backs review screens when no real session audio exists.
type TranscriptHandler struct {
	Config config.Config
	Text   TranscriptCompleter
	Logger *slog.Logger
}

type transcriptRequest struct {
	Topic           string `json:"topic"`
	Persona         string `json:"persona"`
	SkillLevel      string `json:"skillLevel"`
	DurationSeconds int    `json:"durationSeconds"`
}

type transcriptResponse struct {
	Transcript []types.Turn `json:"transcript"`
}

const minExchanges = 3

func (h TranscriptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	var req transcriptRequest
	if err := decodeBody(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		writeErr(w, reqID, err)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("topic is required", "topic"))
		return
	}

	exchanges := minExchanges
	if n := req.DurationSeconds / 30; n > exchanges {
		exchanges = n
	}

	turns, err := h.generate(r.Context(), req, exchanges)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("transcript generation failed, using fallback",
				"error", err, "topic", req.Topic, "request_id", reqID)
		}
		turns = fallbackTranscript(req.Topic)
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Transcript: turns})
}

func (h TranscriptHandler) generate(ctx context.Context, req transcriptRequest, exchanges int) ([]types.Turn, error) {
	if h.Text == nil || !h.Text.Configured() {
		return nil, core.NewConfigurationError("text provider api key is not configured")
	}
	raw, err := h.Text.Complete(ctx, transcriptPrompt(req, exchanges))
	if err != nil {
		return nil, err
	}
	turns, err := study.DecodeTranscript(raw)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, core.NewInvalidRequestError("provider returned an empty transcript")
	}
	return turns, nil
}

func transcriptPrompt(req transcriptRequest, exchanges int) string {
	persona := req.Persona
	if persona == "" {
		persona = "business English coach"
	}
	level := types.NormalizeLevel(req.SkillLevel)
	return fmt.Sprintf(
		`Generate a realistic business English practice conversation between a learner ("user") and a %s ("assistant") about %q. The learner is at CEFR level %s. %s Produce exactly %d user/assistant exchange pairs. Respond with ONLY a JSON array of objects with "role" ("user" or "assistant") and "content" fields, no prose around it.`,
		persona, req.Topic, level, skillLevelInstructions[level], exchanges)
}

func fallbackTranscript(topic string) []types.Turn {
	now := time.Now()
	return []types.Turn{
		types.NewTurn(types.RoleUser,
			fmt.Sprintf("I'd like to discuss %s with you.", topic), now),
		types.NewTurn(types.RoleAssistant,
			fmt.Sprintf("Excellent! I'm happy to discuss %s with you. Let's start with your current experience in this area.", topic), now),
	}
}
