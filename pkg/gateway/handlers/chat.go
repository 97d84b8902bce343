package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bizenglishai/coach-gateway/pkg/core"
	"github.com/bizenglishai/coach-gateway/pkg/core/providers/openai"
	"github.com/bizenglishai/coach-gateway/pkg/core/types"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/config"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/mw"
)

// ChatCompleter is the slice of the chat provider the handler needs.
type ChatCompleter interface {
	Configured() bool
	Chat(ctx context.Context, system string, messages []openai.Message) (string, error)
}

// ChatHandler proxies text-mode coaching turns to the chat provider, with a
// system prompt fitted to the learner's CEFR level.
type ChatHandler struct {
	Config config.Config
	Chat   ChatCompleter
	Logger *slog.Logger
}

// skillLevelInstructions tunes the coach's register per CEFR level.
var skillLevelInstructions = map[types.ProficiencyLevel]string{
	types.LevelA1: "Use very simple vocabulary and short sentences. Speak slowly and clearly. Repeat key phrases.",
	types.LevelA2: "Use simple vocabulary and basic sentence structures. Explain business terms when you use them.",
	types.LevelB1: "Use everyday business vocabulary. Keep sentences moderately complex and offer gentle corrections.",
	types.LevelB2: "Use a broad range of business vocabulary. Challenge the learner with follow-up questions.",
	types.LevelC1: "Use advanced business vocabulary and idiomatic expressions. Discuss nuanced professional topics.",
	types.LevelC2: "Converse as you would with a native-speaking colleague. Use sophisticated vocabulary and complex argumentation.",
}

type chatRequest struct {
	Topic      string           `json:"topic"`
	Persona    string           `json:"persona"`
	SkillLevel string           `json:"skillLevel"`
	Messages   []openai.Message `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	var req chatRequest
	if err := decodeBody(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		writeErr(w, reqID, err)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("topic is required", "topic"))
		return
	}
	if len(req.Messages) == 0 {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("messages must not be empty", "messages"))
		return
	}
	if h.Chat == nil || !h.Chat.Configured() {
		writeErr(w, reqID, core.NewConfigurationError("chat provider api key is not configured"))
		return
	}

	reply, err := h.Chat.Chat(r.Context(), systemPrompt(req.Topic, req.Persona, req.SkillLevel), req.Messages)
	if err != nil {
		writeErr(w, reqID, core.NewProviderUnavailableError("openai", err))
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func systemPrompt(topic, persona, skillLevel string) string {
	if persona == "" {
		persona = "business English coach"
	}
	level := types.NormalizeLevel(skillLevel)
	return fmt.Sprintf(
		"You are a %s in a business setting discussing %q with an English learner at CEFR level %s. %s Stay in character, keep replies under four sentences, and correct significant mistakes briefly before continuing the conversation.",
		persona, topic, level, skillLevelInstructions[level])
}
