package study

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// ParseError reports that a provider response could not be decoded into
// flashcards. Callers fail over to the keyword strategy on this error.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode provider flashcards: %s", e.Reason)
}

// DecodeFlashcards extracts flashcards from raw model output. The output may
// wrap the JSON array in prose or markdown fences, so decoding starts from
// the first '[' and takes the first well-formed array from there. Proficiency
// levels outside the CEFR set are defaulted; cards without a term are
// dropped. An empty result is a ParseError, not an empty slice.
func DecodeFlashcards(raw string) ([]types.FlashCard, error) {
	start := strings.Index(raw, "[")
	if start < 0 {
		return nil, &ParseError{Reason: "no JSON array in response"}
	}

	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	var decoded []struct {
		Term             string `json:"term"`
		Definition       string `json:"definition"`
		ExampleSentence  string `json:"example_sentence"`
		Translation      string `json:"translation"`
		CommonMistake    string `json:"common_mistake"`
		Correction       string `json:"correction"`
		ProficiencyLevel string `json:"proficiencyLevel"`
		TopicTag         string `json:"topicTag"`
	}
	if err := dec.Decode(&decoded); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	cards := make([]types.FlashCard, 0, len(decoded))
	for _, d := range decoded {
		term := strings.TrimSpace(d.Term)
		if term == "" {
			continue
		}
		cards = append(cards, types.FlashCard{
			Term:             term,
			Definition:       strings.TrimSpace(d.Definition),
			ExampleSentence:  strings.TrimSpace(d.ExampleSentence),
			Translation:      strings.TrimSpace(d.Translation),
			CommonMistake:    strings.TrimSpace(d.CommonMistake),
			Correction:       strings.TrimSpace(d.Correction),
			ProficiencyLevel: types.NormalizeLevel(d.ProficiencyLevel),
			TopicTag:         strings.TrimSpace(d.TopicTag),
		})
	}
	if len(cards) == 0 {
		return nil, &ParseError{Reason: "array held no usable cards"}
	}
	return cards, nil
}

// DecodeTranscript extracts a turn sequence from raw model output, with the
// same prose-tolerant scanning as DecodeFlashcards. Turns missing content or
// carrying an unknown role are dropped.
func DecodeTranscript(raw string) ([]types.Turn, error) {
	start := strings.Index(raw, "[")
	if start < 0 {
		return nil, &ParseError{Reason: "no JSON array in response"}
	}

	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	var decoded []types.Turn
	if err := dec.Decode(&decoded); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}

	turns := make([]types.Turn, 0, len(decoded))
	for _, turn := range decoded {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		if turn.Role != types.RoleUser && turn.Role != types.RoleAssistant {
			continue
		}
		turns = append(turns, turn)
	}
	if len(turns) == 0 {
		return nil, &ParseError{Reason: "array held no usable turns"}
	}
	return turns, nil
}
