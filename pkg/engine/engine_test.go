package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securetender/bidguard/pkg/features"
)

// trainingCorpus builds n competitive bids around a $100,000 tender estimate
// with substantial proposals submitted during business hours.
func trainingCorpus(n int) []features.Record {
	rng := rand.New(rand.NewSource(3))
	proposals := []string{
		"We propose a comprehensive managed infrastructure solution with dedicated support, proactive monitoring, security hardening and a phased migration plan aligned with the tender requirements and delivery timeline.",
		"Our company offers an enterprise grade implementation covering automated deployment, performance optimization, compliance management and full documentation with guaranteed delivery within the agreed schedule.",
		"We specialize in secure cloud infrastructure with a proven track record, offering real-time monitoring, advanced encryption, staff training and ongoing maintenance support for the complete contract period.",
	}
	companies := []string{
		"TechSolutions Corp", "CloudFirst Inc", "DataDrive Technologies",
		"SecureCloud Systems", "NextGen Systems",
	}

	records := make([]features.Record, n)
	for i := 0; i < n; i++ {
		records[i] = features.Record{
			ID:          int64(i + 1),
			TenderID:    1,
			CompanyName: companies[i%len(companies)],
			BidAmount:   100000 * (0.9 + rng.Float64()*0.2),
			Proposal:    proposals[i%len(proposals)],
			SubmittedAt: fmt.Sprintf("2025-05-%02d %02d:30:00", 1+i%28, 9+rng.Intn(8)),
		}
	}
	return records
}

func suspiciousBid() features.Record {
	return features.Record{
		ID:          99,
		TenderID:    1,
		CompanyName: "QX",
		BidAmount:   30000,
		Proposal:    "Best price",
		SubmittedAt: "2025-05-12 03:00:00",
	}
}

func TestTrainFloor(t *testing.T) {
	t.Run("below the floor fails", func(t *testing.T) {
		m := New()
		assert.False(t, m.Train(trainingCorpus(9)))
		assert.False(t, m.Trained())
	})

	t.Run("at the floor succeeds", func(t *testing.T) {
		m := New()
		assert.True(t, m.Train(trainingCorpus(10)))
		assert.True(t, m.Trained())
	})

	t.Run("failed retrain leaves prior state unchanged", func(t *testing.T) {
		m := New()
		require.True(t, m.Train(trainingCorpus(10)))

		record := suspiciousBid()
		before, beforeFlag := m.ScoreOne(record)

		assert.False(t, m.Train(trainingCorpus(9)))
		assert.True(t, m.Trained())

		after, afterFlag := m.ScoreOne(record)
		assert.Equal(t, before, after)
		assert.Equal(t, beforeFlag, afterFlag)
	})
}

func TestScoreUntrained(t *testing.T) {
	m := New()

	scores, flags := m.Score(trainingCorpus(5))
	assert.Empty(t, scores)
	assert.Empty(t, flags)

	score, flagged := m.ScoreOne(suspiciousBid())
	assert.Zero(t, score)
	assert.False(t, flagged)
}

func TestScoreEmptyInput(t *testing.T) {
	m := New()
	require.True(t, m.Train(trainingCorpus(12)))

	scores, flags := m.Score(nil)
	assert.Empty(t, scores)
	assert.Empty(t, flags)
}

func TestScoreDeterminism(t *testing.T) {
	m := New()
	require.True(t, m.Train(trainingCorpus(15)))

	batch := append(trainingCorpus(5), suspiciousBid())
	first, firstFlags := m.Score(batch)
	second, secondFlags := m.Score(batch)

	assert.Equal(t, first, second)
	assert.Equal(t, firstFlags, secondFlags)
}

func TestBatchSingletonConsistency(t *testing.T) {
	m := New()
	require.True(t, m.Train(trainingCorpus(15)))

	batch := append(trainingCorpus(6), suspiciousBid())
	scores, flags := m.Score(batch)
	require.Len(t, scores, len(batch))

	for i, r := range batch {
		score, flagged := m.ScoreOne(r)
		assert.Equal(t, scores[i], score, "record %d", i)
		assert.Equal(t, flags[i], flagged, "record %d", i)
	}
}

func TestEvaluateMatchesScore(t *testing.T) {
	m := New()

	assert.Empty(t, m.Evaluate(trainingCorpus(3)))

	require.True(t, m.Train(trainingCorpus(15)))
	assert.Empty(t, m.Evaluate(nil))

	batch := append(trainingCorpus(6), suspiciousBid())
	scores, flags := m.Score(batch)
	results := m.Evaluate(batch)
	require.Len(t, results, len(batch))

	for i, res := range results {
		assert.Equal(t, scores[i], res.Score, "record %d", i)
		assert.Equal(t, flags[i], res.IsAnomaly, "record %d", i)
		assert.Len(t, res.Features, features.StructuralWidth+m.extractor.Vectorizer.Width())
	}
}

func TestRetrainReplacesState(t *testing.T) {
	m := New()
	require.True(t, m.Train(trainingCorpus(10)))
	assert.Contains(t, m.extractor.Vectorizer.Vocabulary, "monitoring")

	// Retraining on a different corpus fully replaces scaler, vocabulary and forest
	other := trainingCorpus(20)
	for i := range other {
		other[i].Proposal = fmt.Sprintf("Entirely different wording about logistics and freight handling option %d", i)
	}
	require.True(t, m.Train(other))

	assert.True(t, m.Trained())
	assert.Contains(t, m.extractor.Vectorizer.Vocabulary, "logistics")
	assert.NotContains(t, m.extractor.Vectorizer.Vocabulary, "monitoring")

	scores, flags := m.Score(other)
	assert.Len(t, scores, len(other))
	assert.Len(t, flags, len(other))
}

func TestAnomalousBidIsFlagged(t *testing.T) {
	m := New()
	require.True(t, m.Train(trainingCorpus(10)))

	record := suspiciousBid()
	score, flagged := m.ScoreOne(record)

	assert.True(t, flagged, "low-ball 3 AM bid must be flagged, score=%f", score)
	assert.Negative(t, score)

	explanations := Explain(record, score)
	joined := strings.ToLower(strings.Join(explanations, "; "))
	assert.Contains(t, joined, "very short proposal")
	assert.Contains(t, joined, "unusual submission time")
}

func TestStatus(t *testing.T) {
	m := New(WithContamination(0.2), WithEnsembleSize(50))

	status := m.Status()
	assert.False(t, status.Trained)
	assert.Equal(t, ModelType, status.ModelType)
	assert.Equal(t, 0.2, status.Contamination)
	assert.Equal(t, 50, status.EnsembleSize)
	assert.Equal(t, features.FeatureNames(), status.FeatureNames)

	require.True(t, m.Train(trainingCorpus(10)))
	assert.True(t, m.Status().Trained)
}
