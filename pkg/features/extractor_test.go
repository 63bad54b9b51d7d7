package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCorpus() []Record {
	return []Record{
		{
			ID:          1,
			CompanyName: "TechSolutions Corp",
			BidAmount:   95000,
			Proposal:    "We propose a comprehensive cloud migration with advanced encryption and monitoring",
			SubmittedAt: "2025-03-03 10:30:00",
		},
		{
			ID:          2,
			CompanyName: "CloudFirst Inc",
			BidAmount:   104000,
			Proposal:    "Our team delivers cloud infrastructure with automated deployment and compliance management",
			SubmittedAt: "2025-03-04 14:00:00",
		},
		{
			ID:          3,
			CompanyName: "DataDrive Technologies",
			BidAmount:   99000,
			Proposal:    "Enterprise grade migration services with proactive monitoring and security hardening",
			SubmittedAt: "2025-03-05 09:15:00",
		},
	}
}

func TestExtractStructuralBlock(t *testing.T) {
	e := NewExtractor(50)
	records := sampleCorpus()

	matrix, err := e.Extract(records, Fit)
	require.NoError(t, err)
	require.Len(t, matrix, len(records))

	r := records[0]
	row := matrix[0]
	require.GreaterOrEqual(t, len(row), StructuralWidth)

	assert.Equal(t, r.BidAmount, row[0])
	assert.Equal(t, float64(len(r.Proposal)), row[1])
	assert.Equal(t, float64(len(r.CompanyName)), row[2])
	assert.Equal(t, 10.0, row[3]) // submission hour
	assert.Equal(t, 0.0, row[4])  // 2025-03-03 is a Monday

	// Every row has the same width
	for _, other := range matrix[1:] {
		assert.Len(t, other, len(row))
	}
}

func TestExtractLengthsCountCharacters(t *testing.T) {
	e := NewExtractor(50)
	// "héllo wörld" is 11 characters in 13 bytes; "Ωmega Corp" is 10 in 11.
	records := []Record{{
		CompanyName: "Ωmega Corp",
		BidAmount:   50000,
		Proposal:    "héllo wörld",
		SubmittedAt: "2025-03-03 10:30:00",
	}}

	matrix, err := e.Extract(records, Fit)
	require.NoError(t, err)

	assert.Equal(t, 11.0, matrix[0][1])
	assert.Equal(t, 10.0, matrix[0][2])
}

func TestExtractEmptyInput(t *testing.T) {
	e := NewExtractor(50)

	matrix, err := e.Extract(nil, Fit)
	require.NoError(t, err)
	assert.Empty(t, matrix)

	matrix, err = e.Extract([]Record{}, Reuse)
	require.NoError(t, err)
	assert.Empty(t, matrix)
}

func TestExtractTimestampFallback(t *testing.T) {
	tests := []struct {
		name        string
		submittedAt string
	}{
		{name: "missing timestamp", submittedAt: ""},
		{name: "unparseable timestamp", submittedAt: "not-a-date"},
	}

	// Reference record pinned to the fallback slot values:
	// 2025-01-01 is a Wednesday (weekday index 2), noon.
	reference := Record{CompanyName: "Acme Corp", BidAmount: 1000, Proposal: "A proposal", SubmittedAt: "2025-01-01 12:00:00"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(50)
			broken := reference
			broken.SubmittedAt = tt.submittedAt

			matrix, err := e.Extract([]Record{reference, broken}, Fit)
			require.NoError(t, err)

			assert.Equal(t, matrix[0], matrix[1],
				"fallback must produce the same feature slots as an explicit noon Wednesday")
			assert.Equal(t, float64(FallbackHour), matrix[1][3])
			assert.Equal(t, float64(FallbackWeekday), matrix[1][4])
		})
	}
}

func TestExtractVocabularyFrozenAfterFit(t *testing.T) {
	e := NewExtractor(50)
	_, err := e.Extract(sampleCorpus(), Fit)
	require.NoError(t, err)

	width := e.Vectorizer.Width()
	require.Greater(t, width, 0)

	// A record made of entirely unseen terms keeps the dimensionality and
	// contributes zero lexical weight.
	unseen := Record{CompanyName: "zzz", BidAmount: 1, Proposal: "qqqq wwww rrrr"}
	matrix, err := e.Extract([]Record{unseen}, Reuse)
	require.NoError(t, err)
	require.Len(t, matrix[0], StructuralWidth+width)

	for _, v := range matrix[0][StructuralWidth:] {
		assert.Zero(t, v)
	}
	assert.Equal(t, width, e.Vectorizer.Width(), "reuse must not refit the vocabulary")
}

func TestExtractReuseBeforeFit(t *testing.T) {
	e := NewExtractor(50)
	_, err := e.Extract(sampleCorpus(), Reuse)
	assert.Error(t, err)
}

func TestSubmissionTimeLayouts(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantOK   bool
		wantHour int
	}{
		{name: "rfc3339", value: "2025-03-03T10:30:00Z", wantOK: true, wantHour: 10},
		{name: "sql datetime", value: "2025-03-03 22:30:00", wantOK: true, wantHour: 22},
		{name: "t separated", value: "2025-03-03T08:30:00", wantOK: true, wantHour: 8},
		{name: "bare date", value: "2025-03-03", wantOK: true, wantHour: 0},
		{name: "garbage", value: "yesterday", wantOK: false},
		{name: "empty", value: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{SubmittedAt: tt.value}
			ts, ok := r.SubmissionTime()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantHour, ts.Hour())
			}
		})
	}
}
