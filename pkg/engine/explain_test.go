package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securetender/bidguard/pkg/features"
)

func normalBid() features.Record {
	return features.Record{
		CompanyName: "TechSolutions Corp",
		BidAmount:   98000,
		Proposal: strings.Repeat("A thorough proposal covering scope, staffing, timeline and risk. ", 4) +
			"We commit to the published service levels.",
		SubmittedAt: "2025-05-12 11:00:00",
	}
}

func TestExplainRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*features.Record)
		score   float64
		want    []string
		wantLen int
	}{
		{
			name:   "invalid amount",
			mutate: func(r *features.Record) { r.BidAmount = 0 },
			want:   []string{"invalid bid amount"},
		},
		{
			name:   "very short proposal",
			mutate: func(r *features.Record) { r.Proposal = "cheap" },
			want:   []string{"very short proposal"},
		},
		{
			name:   "unusually long proposal",
			mutate: func(r *features.Record) { r.Proposal = strings.Repeat("x", 5001) },
			want:   []string{"unusually long proposal"},
		},
		{
			name:   "suspicious company name",
			mutate: func(r *features.Record) { r.CompanyName = "QX" },
			want:   []string{"suspicious company name"},
		},
		{
			name:   "submission before business hours",
			mutate: func(r *features.Record) { r.SubmittedAt = "2025-05-12 03:00:00" },
			want:   []string{"unusual submission time"},
		},
		{
			name:   "submission after business hours",
			mutate: func(r *features.Record) { r.SubmittedAt = "2025-05-12 23:30:00" },
			want:   []string{"unusual submission time"},
		},
		{
			name:    "multiple rules fire together",
			mutate:  func(r *features.Record) { r.Proposal = "cheap"; r.SubmittedAt = "2025-05-12 02:00:00" },
			want:    []string{"very short proposal", "unusual submission time"},
			wantLen: 2,
		},
		{
			name:   "clean bid with strong deviation",
			mutate: func(r *features.Record) {},
			score:  -0.25,
			want:   []string{"deviates significantly"},
		},
		{
			name:   "clean bid with mild deviation",
			mutate: func(r *features.Record) {},
			score:  0.05,
			want:   []string{"mild deviation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := normalBid()
			tt.mutate(&r)

			got := Explain(r, tt.score)
			require.NotEmpty(t, got, "explanations are never empty")
			if tt.wantLen > 0 {
				assert.Len(t, got, tt.wantLen)
			}

			joined := strings.ToLower(strings.Join(got, "; "))
			for _, want := range tt.want {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestExplainProposalRulesAreExclusive(t *testing.T) {
	r := normalBid()
	r.Proposal = strings.Repeat("x", 200)

	got := strings.ToLower(strings.Join(Explain(r, 0), "; "))
	assert.NotContains(t, got, "short proposal")
	assert.NotContains(t, got, "long proposal")
}

func TestExplainSkipsTimeRuleOnBadTimestamp(t *testing.T) {
	r := normalBid()
	r.SubmittedAt = "garbage"

	got := strings.ToLower(strings.Join(Explain(r, 0.2), "; "))
	assert.NotContains(t, got, "unusual submission time")
	assert.Contains(t, got, "mild deviation")
}

func TestExplainCountsCharactersNotBytes(t *testing.T) {
	r := normalBid()

	// 49 two-byte characters: short by character count despite 98 bytes
	r.Proposal = strings.Repeat("é", 49)
	got := strings.ToLower(strings.Join(Explain(r, 0), "; "))
	assert.Contains(t, got, "very short proposal")

	r.Proposal = strings.Repeat("é", 60)
	got = strings.ToLower(strings.Join(Explain(r, 0), "; "))
	assert.NotContains(t, got, "very short proposal")

	// Two Greek letters are four bytes but still a two-character name
	r = normalBid()
	r.CompanyName = "ΑΒ"
	got = strings.ToLower(strings.Join(Explain(r, 0), "; "))
	assert.Contains(t, got, "suspicious company name")
}

func TestExplainBoundaryHours(t *testing.T) {
	r := normalBid()

	r.SubmittedAt = "2025-05-12 06:00:00"
	assert.NotContains(t, strings.ToLower(strings.Join(Explain(r, 0), "; ")), "unusual submission time")

	r.SubmittedAt = "2025-05-12 22:59:00"
	assert.NotContains(t, strings.ToLower(strings.Join(Explain(r, 0), "; ")), "unusual submission time")
}
