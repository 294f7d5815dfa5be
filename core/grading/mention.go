package grading

import "github.com/shopspring/decimal"

// Mention is the honors classification of an overall average.
type Mention string

const (
	MentionFailed      Mention = "Ajourné"
	MentionPass        Mention = "Passable"
	MentionFairlyGood  Mention = "Assez Bien"
	MentionGood        Mention = "Bien"
	MentionVeryGood    Mention = "Très Bien"
	MentionExcellent   Mention = "Excellent"
	MentionUnavailable Mention = NotAvailableText
)

// lower bounds, inclusive, highest first
var mentionThresholds = []struct {
	min     decimal.Decimal
	mention Mention
}{
	{decimal.NewFromInt(18), MentionExcellent},
	{decimal.NewFromInt(16), MentionVeryGood},
	{decimal.NewFromInt(14), MentionGood},
	{decimal.NewFromInt(12), MentionFairlyGood},
	{decimal.NewFromInt(10), MentionPass},
}

// MentionFor classifies avg. An unavailable average is MentionUnavailable, never MentionFailed.
func MentionFor(avg Score) Mention {
	value, ok := avg.Decimal()
	if !ok {
		return MentionUnavailable
	}
	for _, th := range mentionThresholds {
		if value.GreaterThanOrEqual(th.min) {
			return th.mention
		}
	}
	return MentionFailed
}
