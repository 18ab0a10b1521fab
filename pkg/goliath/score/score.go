// Package score implements the deterministic weighted rule table that
// ranks candidates and themes. Every evaluation produces a full
// breakdown with every signal category present, so a reader can always
// see why a candidate ranked where it did.
package score

import "strings"

// Signal category names. duplicate_penalty is reserved: when triggered
// it dominates the total and effectively removes the candidate from
// contention without making it unscoreable.
const (
	ToolRequest      = "tool_request"
	ConvertGenCalc   = "convert_generator_calc"
	StructuredOutput = "structured_output"
	SpecificInputs   = "specific_inputs"
	HowToCodeOnly    = "how_to_code_only"
	TooBroad         = "too_broad"
	AdultOrSensitive = "adult_or_sensitive"
	SourceEngagement = "source_engagement"
	DuplicatePenalty = "duplicate_penalty"
)

// DuplicatePenaltyValue is the contribution applied to duplicates.
const DuplicatePenaltyValue = -200

// EngagementCap bounds the source_engagement contribution.
const EngagementCap = 10

// Categories lists every signal category in evaluation order.
func Categories() []string {
	return []string{
		ToolRequest,
		ConvertGenCalc,
		StructuredOutput,
		SpecificInputs,
		HowToCodeOnly,
		TooBroad,
		AdultOrSensitive,
		SourceEngagement,
		DuplicatePenalty,
	}
}

// Breakdown maps signal category to its signed contribution.
type Breakdown map[string]int

// Total sums all contributions.
func (b Breakdown) Total() int {
	total := 0
	for _, v := range b {
		total += v
	}
	return total
}

// rule is one keyword-triggered signal.
type rule struct {
	category string
	value    int
	phrases  []string
}

// The rule table is fixed; the constants are heuristics tuned against
// the original corpus.
var rules = []rule{
	{ToolRequest, 8, []string{"is there a tool", "need a tool", "looking for a tool", "any tool"}},
	{ConvertGenCalc, 7, []string{"convert", "generator", "calculator", "format"}},
	{StructuredOutput, 5, []string{"csv", "json", "markdown", "template", "checklist"}},
	{SpecificInputs, 4, []string{"timezone", "tax", "pricing", "compare"}},
	{HowToCodeOnly, -6, []string{"bug in my code", "stack trace"}},
	{TooBroad, -4, []string{"ultimate", "all-in-one", "all in one"}},
	{AdultOrSensitive, -20, []string{"nsfw", "porn", "adult content", "gambling", "casino", "escort"}},
}

// Evaluate scores a candidate text. engagement is the platform metric
// (capped); duplicate applies the reserved penalty. Every category
// appears in the returned breakdown, triggered or not.
func Evaluate(text string, engagement int, duplicate bool) Breakdown {
	lower := strings.ToLower(text)

	b := make(Breakdown, len(rules)+2)
	for _, cat := range Categories() {
		b[cat] = 0
	}

	for _, r := range rules {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				b[r.category] = r.value
				break
			}
		}
	}

	eng := engagement / 5
	if eng > EngagementCap {
		eng = EngagementCap
	}
	if eng < 0 {
		eng = 0
	}
	b[SourceEngagement] = eng

	if duplicate {
		b[DuplicatePenalty] = DuplicatePenaltyValue
	}

	return b
}
