package study

import (
	"strings"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// MinFlashcards is the floor on KeywordFlashcards results. When the keyword
// scan matches fewer entries, the result is padded from the head of the
// vocabulary table.
const MinFlashcards = 3

// KeywordFlashcards scans the concatenated transcript text for vocabulary
// terms, case-insensitively, and returns the matching entries. The result is
// padded from the start of the table until it holds at least MinFlashcards
// cards, so the caller always has something to study.
func KeywordFlashcards(turns []types.Turn) []types.FlashCard {
	text := strings.ToLower(types.JoinTranscript(turns))

	matched := make([]types.FlashCard, 0, MinFlashcards)
	seen := make(map[string]struct{})
	for _, card := range vocabulary {
		if strings.Contains(text, strings.ToLower(card.Term)) {
			matched = append(matched, card)
			seen[card.Term] = struct{}{}
		}
	}

	for _, card := range vocabulary {
		if len(matched) >= MinFlashcards {
			break
		}
		if _, ok := seen[card.Term]; ok {
			continue
		}
		matched = append(matched, card)
		seen[card.Term] = struct{}{}
	}
	return matched
}
