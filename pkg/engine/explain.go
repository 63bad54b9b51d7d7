package engine

import (
	"unicode/utf8"

	"github.com/securetender/bidguard/pkg/features"
)

// Explanation rule thresholds.
const (
	shortProposalChars = 50
	longProposalChars  = 5000
	minCompanyChars    = 3
	businessHourStart  = 6
	businessHourEnd    = 22
	deviationThreshold = -0.1
)

// Explain produces human-readable rationale strings for a scored bid. It is
// rule-based and deterministic: it reads only the raw record and the already
// computed score, never the model internals. All applicable rules contribute;
// the score-based fallback guarantees the result is never empty.
func Explain(r features.Record, score float64) []string {
	var explanations []string

	if r.BidAmount <= 0 {
		explanations = append(explanations, "Invalid bid amount (zero or negative)")
	}

	switch n := utf8.RuneCountInString(r.Proposal); {
	case n < shortProposalChars:
		explanations = append(explanations, "Very short proposal (less than 50 characters)")
	case n > longProposalChars:
		explanations = append(explanations, "Unusually long proposal (over 5000 characters)")
	}

	if utf8.RuneCountInString(r.CompanyName) < minCompanyChars {
		explanations = append(explanations, "Suspicious company name (too short)")
	}

	if t, ok := r.SubmissionTime(); ok {
		if t.Hour() < businessHourStart || t.Hour() > businessHourEnd {
			explanations = append(explanations, "Unusual submission time (outside business hours)")
		}
	}

	if len(explanations) == 0 {
		if score < deviationThreshold {
			explanations = append(explanations, "Pattern deviates significantly from normal bidding behavior")
		} else {
			explanations = append(explanations, "Mild deviation from typical bid patterns")
		}
	}

	return explanations
}
