// Package engine ties feature extraction, scaling and the isolation forest
// into a single owned model with an explicit train/score lifecycle.
package engine

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/securetender/bidguard/pkg/detectors"
	"github.com/securetender/bidguard/pkg/detectors/iforest"
	"github.com/securetender/bidguard/pkg/features"
)

// ModelType names the underlying outlier algorithm in status reports.
const ModelType = "Isolation Forest"

// DefaultTrainingFloor is the minimum corpus size accepted by Train. The
// scaler and forest are unreliable below it.
const DefaultTrainingFloor = 10

// Model holds one fitted anomaly model: the forest, the feature scaler and
// the text vectorizer, plus whether training has happened.
//
// A Model performs no locking of its own. Callers must ensure a Train call
// is never concurrent with another Train or Score on the same Model.
type Model struct {
	forest    *iforest.IsolationForest
	scaler    *features.Scaler
	extractor *features.Extractor
	store     *FileStore
	log       zerolog.Logger

	trained       bool
	contamination float64
	ensembleSize  int
	seed          int64
	vocabSize     int
	trainingFloor int
}

// Status is a read-only snapshot of the model for monitoring.
type Status struct {
	Trained       bool     `json:"is_trained"`
	ModelType     string   `json:"model_type"`
	Contamination float64  `json:"contamination_rate"`
	EnsembleSize  int      `json:"n_estimators"`
	FeatureNames  []string `json:"features_used"`
}

// Option configures a Model.
type Option func(*Model)

// WithContamination sets the expected outlier fraction of the training corpus.
func WithContamination(c float64) Option {
	return func(m *Model) {
		m.contamination = c
	}
}

// WithEnsembleSize sets the number of isolation trees.
func WithEnsembleSize(n int) Option {
	return func(m *Model) {
		m.ensembleSize = n
	}
}

// WithSeed sets the random seed used when fitting the forest.
func WithSeed(seed int64) Option {
	return func(m *Model) {
		m.seed = seed
	}
}

// WithVocabularySize bounds the lexical feature block width.
func WithVocabularySize(n int) Option {
	return func(m *Model) {
		m.vocabSize = n
	}
}

// WithTrainingFloor overrides the minimum corpus size accepted by Train.
func WithTrainingFloor(n int) Option {
	return func(m *Model) {
		m.trainingFloor = n
	}
}

// WithStore attaches a persistence adapter. The model is saved after every
// successful Train, and New restores a previously persisted model if all
// artifacts are present and parse cleanly.
func WithStore(s *FileStore) Option {
	return func(m *Model) {
		m.store = s
	}
}

// WithLogger overrides the default component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// New creates a Model with the given options. If a store is attached and a
// complete persisted state exists, it is loaded and the model starts trained;
// a partial or corrupt snapshot leaves the model untrained.
func New(opts ...Option) *Model {
	cfg := detectors.DefaultConfig()
	m := &Model{
		contamination: cfg.Contamination,
		ensembleSize:  cfg.EnsembleSize,
		seed:          cfg.RandomSeed,
		vocabSize:     features.DefaultVocabularySize,
		trainingFloor: DefaultTrainingFloor,
		log:           log.With().Str("component", "engine").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.extractor = features.NewExtractor(m.vocabSize)
	m.scaler = features.NewScaler()
	m.forest = m.newForest(0)

	if m.store != nil {
		if err := m.store.Load(m); err != nil {
			m.log.Debug().Err(err).Msg("no persisted model loaded")
		} else {
			m.log.Info().Msg("restored persisted model")
		}
	}

	return m
}

func (m *Model) newForest(lexWidth int) *iforest.IsolationForest {
	opts := []iforest.Option{
		iforest.WithTrees(m.ensembleSize),
		iforest.WithContamination(m.contamination),
		iforest.WithSeed(m.seed),
	}
	if lexWidth > 0 {
		opts = append(opts, iforest.WithSplitWeights(splitWeights(lexWidth)))
	}
	return iforest.New(opts...)
}

// splitWeights balances split selection between the two feature blocks. The
// lexical block is wide but sparse; under uniform selection it drowns out the
// structural columns, where gross outliers (absurd amounts, empty proposals,
// night-time submissions) actually live. Each structural column carries the
// same selection mass as the whole lexical block.
func splitWeights(lexWidth int) []float64 {
	weights := make([]float64, features.StructuralWidth+lexWidth)
	for i := range weights {
		if i < features.StructuralWidth {
			weights[i] = float64(lexWidth)
		} else {
			weights[i] = 1
		}
	}
	return weights
}

// Trained reports whether a successful training (or restore) has happened.
func (m *Model) Trained() bool {
	return m.trained
}

// Status returns a read-only snapshot for display and monitoring.
func (m *Model) Status() Status {
	return Status{
		Trained:       m.trained,
		ModelType:     ModelType,
		Contamination: m.contamination,
		EnsembleSize:  m.ensembleSize,
		FeatureNames:  features.FeatureNames(),
	}
}

// Train fits the vocabulary, scaler and forest from the corpus. It returns
// false without touching the current state when the corpus is smaller than
// the training floor or feature extraction fails. Each successful call fully
// replaces the previous fitted state and persists it when a store is attached;
// a failed save is logged but does not revert the in-memory state.
func (m *Model) Train(corpus []features.Record) bool {
	if len(corpus) < m.trainingFloor {
		m.log.Warn().
			Int("corpus_size", len(corpus)).
			Int("minimum", m.trainingFloor).
			Msg("not enough bids to train")
		return false
	}

	// Fit into fresh components so a failure leaves the old state intact
	extractor := features.NewExtractor(m.vocabSize)
	scaler := features.NewScaler()

	matrix, err := extractor.Extract(corpus, features.Fit)
	if err != nil {
		m.log.Error().Err(err).Msg("feature extraction failed")
		return false
	}
	scaled, err := scaler.FitTransform(matrix)
	if err != nil {
		m.log.Error().Err(err).Msg("scaler fit failed")
		return false
	}
	forest := m.newForest(extractor.Vectorizer.Width())
	if err := forest.Fit(scaled); err != nil {
		m.log.Error().Err(err).Msg("forest fit failed")
		return false
	}

	m.extractor = extractor
	m.scaler = scaler
	m.forest = forest
	m.trained = true

	m.log.Info().
		Int("corpus_size", len(corpus)).
		Int("vocabulary", extractor.Vectorizer.Width()).
		Msg("model trained")

	if m.store != nil {
		if err := m.store.Save(m); err != nil {
			m.log.Error().Err(err).Msg("model save failed")
		}
	}

	return true
}

// Score runs inference over the records. It fails closed: an untrained model
// or an empty input yields two empty slices, meaning "no opinion". Scores
// follow the decision-function convention: lower = more unusual, and a record
// is flagged exactly when its score is negative.
func (m *Model) Score(records []features.Record) ([]float64, []bool) {
	if !m.trained || len(records) == 0 {
		return []float64{}, []bool{}
	}

	matrix, err := m.extractor.Extract(records, features.Reuse)
	if err != nil {
		m.log.Error().Err(err).Msg("feature extraction failed")
		return []float64{}, []bool{}
	}
	scaled, err := m.scaler.Transform(matrix)
	if err != nil {
		m.log.Error().Err(err).Msg("scaling failed")
		return []float64{}, []bool{}
	}
	scores, err := m.forest.DecisionFunction(scaled)
	if err != nil {
		m.log.Error().Err(err).Msg("prediction failed")
		return []float64{}, []bool{}
	}

	flags := make([]bool, len(scores))
	for i, s := range scores {
		flags[i] = s < 0
	}
	return scores, flags
}

// ScoreOne scores a single record. It is defined as the batch case of one:
// the result is identical to that record's slot in any batch containing it.
func (m *Model) ScoreOne(r features.Record) (float64, bool) {
	scores, flags := m.Score([]features.Record{r})
	if len(scores) == 0 {
		return 0, false
	}
	return scores[0], flags[0]
}

// Evaluate scores the records and pairs each score with its flag and the
// scaled feature vector that produced it. Like Score, it fails closed to an
// empty slice on an untrained model or empty input.
func (m *Model) Evaluate(records []features.Record) []detectors.Result {
	if !m.trained || len(records) == 0 {
		return []detectors.Result{}
	}

	matrix, err := m.extractor.Extract(records, features.Reuse)
	if err != nil {
		m.log.Error().Err(err).Msg("feature extraction failed")
		return []detectors.Result{}
	}
	scaled, err := m.scaler.Transform(matrix)
	if err != nil {
		m.log.Error().Err(err).Msg("scaling failed")
		return []detectors.Result{}
	}
	scores, err := m.forest.DecisionFunction(scaled)
	if err != nil {
		m.log.Error().Err(err).Msg("prediction failed")
		return []detectors.Result{}
	}

	results := make([]detectors.Result, len(scores))
	for i, s := range scores {
		results[i] = detectors.Result{
			Score:     s,
			IsAnomaly: s < 0,
			Features:  scaled[i],
		}
	}
	return results
}
