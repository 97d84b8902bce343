package study

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

func turnsOf(contents ...string) []types.Turn {
	turns := make([]types.Turn, 0, len(contents))
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, content := range contents {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		turns = append(turns, types.NewTurn(role, content, at.Add(time.Duration(i)*10*time.Second)))
	}
	return turns
}

func TestAnalyzeDeterministic(t *testing.T) {
	turns := turnsOf(
		"Let's talk about the quarterly review.",
		"Sure, what would you like to cover first?",
		"I want to discuss our KPIs.",
	)
	first := Analyze(turns)
	second := Analyze(turns)
	require.Equal(t, first, second)

	require.Contains(t, first, "Total exchanges: 3")
	require.Contains(t, first, "User messages: 2")
	require.Contains(t, first, "AI responses: 1")
	require.Contains(t, first, "a brief exchange")
}

func TestAnalyzeBuckets(t *testing.T) {
	moderate := make([]string, 8)
	extended := make([]string, 12)
	for i := range moderate {
		moderate[i] = "some words here"
	}
	for i := range extended {
		extended[i] = "some words here"
	}
	require.Contains(t, Analyze(turnsOf(moderate...)), "a moderate exchange")
	require.Contains(t, Analyze(turnsOf(extended...)), "an extended exchange")
}

func TestAnalyzeEmpty(t *testing.T) {
	out := Analyze(nil)
	require.Contains(t, out, "No dialogue was recorded")
}

func TestKeywordFlashcardsMatchesTerms(t *testing.T) {
	turns := turnsOf(
		"We should involve every STAKEHOLDER before the quarterly review.",
		"Agreed, I'll put it on the agenda.",
	)
	cards := KeywordFlashcards(turns)

	terms := make([]string, 0, len(cards))
	for _, card := range cards {
		terms = append(terms, card.Term)
	}
	require.Contains(t, terms, "stakeholder")
	require.Contains(t, terms, "quarterly review")
	require.Contains(t, terms, "agenda")
}

func TestKeywordFlashcardsPadsToMinimum(t *testing.T) {
	turns := turnsOf("Nothing matches here at all.")
	cards := KeywordFlashcards(turns)
	require.Len(t, cards, MinFlashcards)

	seen := make(map[string]struct{})
	for _, card := range cards {
		_, dup := seen[card.Term]
		require.False(t, dup, "duplicate term %q", card.Term)
		seen[card.Term] = struct{}{}
	}
}

func TestKeywordFlashcardsNoDuplicatesWhenMatchedAndPadded(t *testing.T) {
	turns := turnsOf("We discussed synergy briefly.")
	cards := KeywordFlashcards(turns)
	require.GreaterOrEqual(t, len(cards), MinFlashcards)

	seen := make(map[string]struct{})
	for _, card := range cards {
		_, dup := seen[card.Term]
		require.False(t, dup, "duplicate term %q", card.Term)
		seen[card.Term] = struct{}{}
	}
}

func TestDecodeFlashcardsTolerant(t *testing.T) {
	raw := "Here are your cards:\n```json\n" + `[
		{"term": "synergy", "definition": "combined effect", "proficiencyLevel": "C1"},
		{"term": "", "definition": "dropped because termless"},
		{"term": "agenda", "definition": "meeting list", "proficiencyLevel": "Z9"}
	]` + "\n```"
	cards, err := DecodeFlashcards(raw)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.Equal(t, "synergy", cards[0].Term)
	require.Equal(t, types.LevelC1, cards[0].ProficiencyLevel)
	require.Equal(t, types.DefaultLevel, cards[1].ProficiencyLevel)
}

func TestDecodeFlashcardsErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no array", "the model rambled and returned no JSON"},
		{"malformed", "[{broken"},
		{"all termless", `[{"definition": "no term"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFlashcards(tc.raw)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestDecodeTranscriptTolerant(t *testing.T) {
	raw := `Sure! [
		{"role": "user", "content": "Hello"},
		{"role": "assistant", "content": "Hi, shall we begin?"},
		{"role": "narrator", "content": "dropped"},
		{"role": "user", "content": "   "}
	]`
	turns, err := DecodeTranscript(raw)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Equal(t, types.RoleUser, turns[0].Role)
	require.Equal(t, types.RoleAssistant, turns[1].Role)
}

type stubText struct {
	out string
	err error
}

func (s stubText) Complete(ctx context.Context, system, user string) (string, error) {
	return s.out, s.err
}

func TestGeneratorProviderFailover(t *testing.T) {
	turns := turnsOf("We talked about the stakeholder meeting.")

	g := &Generator{Strategy: StrategyProvider, Text: stubText{err: errors.New("upstream down")}}
	cards := g.Flashcards(context.Background(), turns)
	require.GreaterOrEqual(t, len(cards), MinFlashcards)

	analysis := g.Analysis(context.Background(), turns)
	require.Equal(t, Analyze(turns), analysis)
}

func TestGeneratorProviderUndecodableFailover(t *testing.T) {
	g := &Generator{Strategy: StrategyProvider, Text: stubText{out: "no json here"}}
	cards := g.Flashcards(context.Background(), turnsOf("hello"))
	require.GreaterOrEqual(t, len(cards), MinFlashcards)
}

func TestGeneratorProviderSuccess(t *testing.T) {
	g := &Generator{Strategy: StrategyProvider, Text: stubText{
		out: `[{"term": "onboarding", "definition": "bringing new hires up to speed", "proficiencyLevel": "B2"}]`,
	}}
	cards := g.Flashcards(context.Background(), turnsOf("We discussed onboarding."))
	require.GreaterOrEqual(t, len(cards), MinFlashcards)

	found := false
	for _, card := range cards {
		if card.Term == "onboarding" {
			found = true
		}
	}
	require.True(t, found)
}

func TestGeneratorResultNeverEmpty(t *testing.T) {
	g := &Generator{Strategy: StrategyKeyword}
	result := g.Result(context.Background(), turnsOf("short chat"))
	require.NotEmpty(t, result.Transcript)
	require.GreaterOrEqual(t, len(result.Flashcards), MinFlashcards)
	require.NotEmpty(t, result.Analysis)
}

func TestParseStrategy(t *testing.T) {
	for raw, want := range map[string]Strategy{
		"":         StrategyKeyword,
		"keyword":  StrategyKeyword,
		"provider": StrategyProvider,
		"Provider": StrategyProvider,
	} {
		got, err := ParseStrategy(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseStrategy("magic")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "keyword|provider"))
}
