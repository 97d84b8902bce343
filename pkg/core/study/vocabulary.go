package study

import (
	"github.com/bizenglishai/coach-gateway/pkg/core/types"
)

// vocabulary is the fixed business-English table the keyword strategy scans
// for. Matching is case-insensitive on the term. The first entries double as
// the padding set that guarantees a non-empty flashcard result.
var vocabulary = []types.FlashCard{
	{
		Term:             "synergy",
		Definition:       "The interaction of two or more agents or forces so that their combined effect is greater than the sum of their individual effects.",
		ExampleSentence:  "The merger created synergy between the two companies' operations.",
		Translation:      "Synergie",
		CommonMistake:    "Using it to mean simple cooperation",
		Correction:       "Use it when referring to combined efforts producing greater results",
		ProficiencyLevel: types.LevelC1,
		TopicTag:         "business_general",
	},
	{
		Term:             "stakeholder",
		Definition:       "A person with an interest or concern in something, especially a business.",
		ExampleSentence:  "We need to consider all stakeholders before making this decision.",
		Translation:      "Interessenvertreter",
		CommonMistake:    "Confusing with shareholder",
		Correction:       "Stakeholder includes anyone affected, not just owners",
		ProficiencyLevel: types.LevelB2,
		TopicTag:         "business_general",
	},
	{
		Term:             "quarterly review",
		Definition:       "A formal assessment of performance or progress conducted every three months.",
		ExampleSentence:  "The quarterly review showed significant improvement in sales.",
		Translation:      "Quartalsüberprüfung",
		CommonMistake:    "Saying 'quarter review'",
		Correction:       "Always use 'quarterly' as the adjective",
		ProficiencyLevel: types.LevelB2,
		TopicTag:         "meetings",
	},
	{
		Term:             "KPI",
		Definition:       "Key Performance Indicator - a metric used to evaluate success against objectives.",
		ExampleSentence:  "Customer retention is our most important KPI this year.",
		Translation:      "Leistungskennzahl",
		CommonMistake:    "Treating every number as a KPI",
		Correction:       "Reserve KPI for the few metrics tied to strategic goals",
		ProficiencyLevel: types.LevelB2,
		TopicTag:         "business_general",
	},
	{
		Term:             "ROI",
		Definition:       "Return on Investment - a measure of the profitability of an expenditure.",
		ExampleSentence:  "The marketing campaign delivered a strong ROI within six months.",
		Translation:      "Kapitalrendite",
		CommonMistake:    "Saying 'return of investment'",
		Correction:       "It is 'return on investment'",
		ProficiencyLevel: types.LevelB2,
		TopicTag:         "finance",
	},
	{
		Term:             "deliverable",
		Definition:       "A tangible or intangible output that must be produced as part of a project.",
		ExampleSentence:  "The final report is the main deliverable for this phase.",
		Translation:      "Liefergegenstand",
		CommonMistake:    "Using it for routine tasks",
		Correction:       "A deliverable is an agreed project output, not any to-do item",
		ProficiencyLevel: types.LevelB2,
		TopicTag:         "projects",
	},
	{
		Term:             "follow up",
		Definition:       "To take further action after an initial contact or meeting.",
		ExampleSentence:  "I'll follow up with the client on Friday about the proposal.",
		Translation:      "nachfassen",
		CommonMistake:    "Writing 'follow up' as one word when used as a verb",
		Correction:       "The verb is 'follow up'; the noun or adjective is 'follow-up'",
		ProficiencyLevel: types.LevelB1,
		TopicTag:         "communication",
	},
	{
		Term:             "agenda",
		Definition:       "A list of items to be discussed at a meeting.",
		ExampleSentence:  "Please add the budget question to the agenda for Monday.",
		Translation:      "Tagesordnung",
		CommonMistake:    "Using the plural 'agendas' for one meeting's items",
		Correction:       "One meeting has one agenda with several items",
		ProficiencyLevel: types.LevelB1,
		TopicTag:         "meetings",
	},
}

// Vocabulary returns a copy of the fixed vocabulary table.
func Vocabulary() []types.FlashCard {
	out := make([]types.FlashCard, len(vocabulary))
	copy(out, vocabulary)
	return out
}
