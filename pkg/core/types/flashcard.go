package types

import (
	"strings"
)

// ProficiencyLevel is a CEFR level. Values arriving from provider output are
// validated against this closed set before they reach the store.
type ProficiencyLevel string

const (
	LevelA1 ProficiencyLevel = "A1"
	LevelA2 ProficiencyLevel = "A2"
	LevelB1 ProficiencyLevel = "B1"
	LevelB2 ProficiencyLevel = "B2"
	LevelC1 ProficiencyLevel = "C1"
	LevelC2 ProficiencyLevel = "C2"
)

// DefaultLevel is substituted when a provider emits a level outside the set.
const DefaultLevel = LevelB1

// ValidLevel reports whether raw is one of the CEFR levels.
func ValidLevel(raw string) bool {
	switch ProficiencyLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2:
		return true
	default:
		return false
	}
}

// NormalizeLevel uppercases and trims raw, substituting DefaultLevel when the
// value is outside the closed set.
func NormalizeLevel(raw string) ProficiencyLevel {
	level := ProficiencyLevel(strings.ToUpper(strings.TrimSpace(raw)))
	if !ValidLevel(string(level)) {
		return DefaultLevel
	}
	return level
}

// FlashCard is one vocabulary-study unit derived from a transcript.
type FlashCard struct {
	Term             string           `json:"term"`
	Definition       string           `json:"definition"`
	ExampleSentence  string           `json:"example_sentence"`
	Translation      string           `json:"translation"`
	CommonMistake    string           `json:"common_mistake"`
	Correction       string           `json:"correction"`
	ProficiencyLevel ProficiencyLevel `json:"proficiencyLevel"`
	TopicTag         string           `json:"topicTag"`
}
