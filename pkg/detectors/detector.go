// Package detectors provides unsupervised anomaly detection algorithms.
package detectors

// Detector is the common interface for all anomaly detection algorithms.
type Detector interface {
	// Fit trains the detector on historical data.
	// data is a 2D slice where each row is a sample and each column is a feature.
	Fit(data [][]float64) error

	// Score returns raw anomaly scores for the given samples.
	// Scores are normalized to [0, 1] where higher values indicate anomalies.
	Score(data [][]float64) ([]float64, error)

	// DecisionFunction returns signed scores for the given samples.
	// Negative values indicate anomalies; lower means more unusual.
	DecisionFunction(data [][]float64) ([]float64, error)

	// Save serializes the trained model to bytes.
	Save() ([]byte, error)

	// Load deserializes a trained model from bytes.
	Load(data []byte) error
}

// Result represents an anomaly detection outcome for one sample.
type Result struct {
	// Score is the signed decision-function value. Lower = more anomalous.
	Score float64
	// IsAnomaly indicates the model's outlier predicate fired.
	IsAnomaly bool
	// Features contains the input feature vector.
	Features []float64
}

// Config holds common configuration for detectors.
type Config struct {
	// Contamination is the expected proportion of anomalies in training data.
	Contamination float64
	// EnsembleSize is the number of ensemble members (trees) to fit.
	EnsembleSize int
	// RandomSeed for reproducibility.
	RandomSeed int64
}

// DefaultConfig returns sensible defaults for detector configuration.
func DefaultConfig() Config {
	return Config{
		Contamination: 0.1,
		EnsembleSize:  100,
		RandomSeed:    42,
	}
}
