package study

import (
	"fmt"
	"strings"

	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// Turn-count thresholds for the qualitative exchange buckets.
const (
	briefExchangeMax    = 4
	extendedExchangeMin = 12
)

// Analyze produces a human-readable summary of a conversation. It is a pure
// function of the turn sequence: identical input yields identical output.
func Analyze(turns []types.Turn) string {
	if len(turns) == 0 {
		return "Conversation Summary:\n- No dialogue was recorded for this session.\n\nKey Points:\n- Try a longer conversation to generate a fuller analysis"
	}

	userTurns := types.CountByRole(turns, types.RoleUser)
	assistantTurns := types.CountByRole(turns, types.RoleAssistant)
	totalWords := types.WordCount(turns)
	avgWords := totalWords / len(turns)

	bucket := "moderate"
	switch {
	case len(turns) <= briefExchangeMax:
		bucket = "brief"
	case len(turns) >= extendedExchangeMin:
		bucket = "extended"
	}

	var b strings.Builder
	b.WriteString("Conversation Summary:\n")
	fmt.Fprintf(&b, "- Total exchanges: %d\n", len(turns))
	fmt.Fprintf(&b, "- User messages: %d\n", userTurns)
	fmt.Fprintf(&b, "- AI responses: %d\n", assistantTurns)
	fmt.Fprintf(&b, "- Total words: %d\n", totalWords)
	fmt.Fprintf(&b, "- Average message length: %d words\n", avgWords)
	b.WriteString("\nKey Points:\n")
	fmt.Fprintf(&b, "- This was a %s exchange\n", bucket)
	b.WriteString("- Both parties engaged in meaningful dialogue\n")
	b.WriteString("- Communication was clear and professional")
	return b.String()
}
