package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bizenglishai/coach-gateway/pkg/core"
	"github.com/bizenglishai/coach-gateway/pkg/core/types"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/config"
	"github.com/bizenglishai/coach-gateway/pkg/gateway/mw"
	"github.com/bizenglishai/coach-gateway/pkg/store"
)

// ConversationsHandler exposes the durable conversation records: create,
// fetch, finalize with a session result, and flashcard export.
type ConversationsHandler struct {
	Config config.Config
	Store  store.ConversationStore
	Logger *slog.Logger
}

type createConversationRequest struct {
	UserID     string `json:"userId"`
	Topic      string `json:"topic"`
	Persona    string `json:"persona"`
	SkillLevel string `json:"skillLevel"`
}

// Create handles POST /v1/conversations.
func (h ConversationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	var req createConversationRequest
	if err := decodeBody(w, r, h.Config.MaxBodyBytes, &req); err != nil {
		writeErr(w, reqID, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("userId is required", "userId"))
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("topic is required", "topic"))
		return
	}
	level := req.SkillLevel
	if level == "" {
		level = string(types.DefaultLevel)
	}
	if !types.ValidLevel(level) {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam(
			fmt.Sprintf("skillLevel %q is not a CEFR level", req.SkillLevel), "skillLevel"))
		return
	}

	rec, err := h.Store.Create(r.Context(), &store.CreateConversation{
		ID:         "conv_" + uuid.NewString(),
		UserID:     req.UserID,
		Topic:      req.Topic,
		Persona:    req.Persona,
		SkillLevel: level,
	})
	if err != nil {
		writeErr(w, reqID, core.NewPersistenceError(errors.Wrap(err, "create conversation")))
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Get handles GET /v1/conversations/{id}.
func (h ConversationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	rec, err := h.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, reqID, mapStoreErr("get conversation", err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Finalize handles POST /v1/conversations/{id}/finalize. The body is the
// SessionResult returned by the end action; writing it back closes the loop
// between the in-memory session and the durable record.
func (h ConversationsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	var result types.SessionResult
	if err := decodeBody(w, r, h.Config.MaxBodyBytes, &result); err != nil {
		writeErr(w, reqID, err)
		return
	}
	if len(result.Transcript) == 0 {
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam("transcript must not be empty", "transcript"))
		return
	}
	// Client-supplied cards go through the same level normalization as
	// provider output, so an out-of-set level never reaches the store.
	for i := range result.Flashcards {
		result.Flashcards[i].ProficiencyLevel = types.NormalizeLevel(string(result.Flashcards[i].ProficiencyLevel))
	}

	id := r.PathValue("id")
	if err := h.Store.Finalize(r.Context(), id, result); err != nil {
		writeErr(w, reqID, mapStoreErr("finalize conversation", err))
		return
	}
	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeErr(w, reqID, mapStoreErr("get conversation", err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Export handles GET /v1/conversations/{id}/export?format=csv|tsv and renders
// the record's flashcards for spreadsheet import.
func (h ConversationsHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	var sep rune
	switch format {
	case "csv":
		sep = ','
	case "tsv":
		sep = '\t'
	default:
		writeErr(w, reqID, core.NewInvalidRequestErrorWithParam(
			fmt.Sprintf("unsupported format %q", format), "format"))
		return
	}

	rec, err := h.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeErr(w, reqID, mapStoreErr("get conversation", err))
		return
	}

	w.Header().Set("Content-Type", "text/"+format+"; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", rec.ID+"-flashcards."+format))

	cw := csv.NewWriter(w)
	cw.Comma = sep
	_ = cw.Write([]string{"term", "definition", "example_sentence", "translation", "common_mistake", "correction", "level", "topic"})
	for _, card := range rec.Flashcards {
		_ = cw.Write([]string{
			card.Term,
			card.Definition,
			card.ExampleSentence,
			card.Translation,
			card.CommonMistake,
			card.Correction,
			string(card.ProficiencyLevel),
			card.TopicTag,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil && h.Logger != nil {
		h.Logger.Warn("flashcard export write failed", "error", err, "request_id", reqID)
	}
}

func mapStoreErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return core.NewNotFoundError("conversation not found")
	}
	return core.NewPersistenceError(errors.Wrap(err, op))
}
