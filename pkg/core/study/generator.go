package study

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// Strategy selects how flashcards are produced. It is configuration, not a
// per-call choice.
type Strategy string

const (
	StrategyKeyword  Strategy = "keyword"
	StrategyProvider Strategy = "provider"
)

// TextGenerator is the slice of a chat-completion provider the generator
// needs. Implemented by the openai client.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator turns a finished transcript into study material. The provider
// strategy fails over to the keyword strategy on any provider or decode
// error; Generate never returns an error.
type Generator struct {
	Strategy Strategy
	Text     TextGenerator
	Logger   *slog.Logger
	// Observe, when set, receives the strategy that actually produced the
	// cards (failover may differ from the configured one) and their count.
	Observe func(strategy Strategy, cards int)
}

const flashcardsPrompt = `You create vocabulary flashcards for business English learners.
Given a conversation transcript, pick the most useful vocabulary the learner encountered.
Return ONLY a JSON array of objects with this exact structure:
[{"term": "...", "definition": "...", "example_sentence": "...", "translation": "...", "common_mistake": "...", "correction": "...", "proficiencyLevel": "B2", "topicTag": "..."}]
proficiencyLevel must be one of A1, A2, B1, B2, C1, C2. Produce between 3 and 8 cards.`

const analysisPrompt = `You review business English conversation transcripts.
Write a short, encouraging analysis of the learner's performance: strengths, one or two
areas to improve, and vocabulary worth revisiting. Plain text, no markdown, under 150 words.`

// Flashcards produces the card set for a transcript.
func (g *Generator) Flashcards(ctx context.Context, turns []types.Turn) []types.FlashCard {
	if g.Strategy != StrategyProvider || g.Text == nil {
		return g.observed(StrategyKeyword, KeywordFlashcards(turns))
	}

	raw, err := g.Text.Complete(ctx, flashcardsPrompt, types.JoinTranscript(turns))
	if err != nil {
		g.log("provider flashcards failed, using keyword strategy", err)
		return g.observed(StrategyKeyword, KeywordFlashcards(turns))
	}
	cards, err := DecodeFlashcards(raw)
	if err != nil {
		g.log("provider flashcards undecodable, using keyword strategy", err)
		return g.observed(StrategyKeyword, KeywordFlashcards(turns))
	}
	if len(cards) < MinFlashcards {
		for _, card := range KeywordFlashcards(turns) {
			if len(cards) >= MinFlashcards {
				break
			}
			if !containsTerm(cards, card.Term) {
				cards = append(cards, card)
			}
		}
	}
	return g.observed(StrategyProvider, cards)
}

func (g *Generator) observed(used Strategy, cards []types.FlashCard) []types.FlashCard {
	if g.Observe != nil {
		g.Observe(used, len(cards))
	}
	return cards
}

// Analysis produces the conversation summary. The provider variant fails
// open: on error the deterministic local analysis is returned.
func (g *Generator) Analysis(ctx context.Context, turns []types.Turn) string {
	if g.Strategy != StrategyProvider || g.Text == nil {
		return Analyze(turns)
	}
	raw, err := g.Text.Complete(ctx, analysisPrompt, types.JoinTranscript(turns))
	if err != nil {
		g.log("provider analysis failed, using local analysis", err)
		return Analyze(turns)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Analyze(turns)
	}
	return raw
}

// Result bundles flashcards and analysis for a transcript.
func (g *Generator) Result(ctx context.Context, turns []types.Turn) types.SessionResult {
	return types.SessionResult{
		Transcript: turns,
		Flashcards: g.Flashcards(ctx, turns),
		Analysis:   g.Analysis(ctx, turns),
	}
}

func (g *Generator) log(msg string, err error) {
	if g.Logger == nil {
		return
	}
	g.Logger.Warn(msg, "error", err)
}

func containsTerm(cards []types.FlashCard, term string) bool {
	for _, card := range cards {
		if strings.EqualFold(card.Term, term) {
			return true
		}
	}
	return false
}

// ParseStrategy validates a configured strategy string.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case StrategyKeyword, "":
		return StrategyKeyword, nil
	case StrategyProvider:
		return StrategyProvider, nil
	default:
		return "", fmt.Errorf("flashcard strategy must be one of keyword|provider")
	}
}
