package features

import (
	"errors"
	"math"
)

// Scaler standardizes feature columns to zero mean and unit variance.
// Mean and Scale are exported for gob encoding.
type Scaler struct {
	Mean   []float64
	Scale  []float64
	Fitted bool
}

// NewScaler creates an unfitted Scaler.
func NewScaler() *Scaler {
	return &Scaler{}
}

// Fit learns per-column mean and standard deviation from data.
func (s *Scaler) Fit(data [][]float64) error {
	if len(data) == 0 {
		return errors.New("empty data")
	}

	nFeatures := len(data[0])
	s.Mean = make([]float64, nFeatures)
	s.Scale = make([]float64, nFeatures)

	n := float64(len(data))
	for _, row := range data {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range data {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Scale[j] += d * d
		}
	}
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.Scale[j] / n)
		// Constant columns pass through unscaled
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}

	s.Fitted = true
	return nil
}

// Transform standardizes data using the fitted parameters.
func (s *Scaler) Transform(data [][]float64) ([][]float64, error) {
	if !s.Fitted {
		return nil, errors.New("scaler not fitted")
	}

	out := make([][]float64, len(data))
	for i, row := range data {
		if len(row) != len(s.Mean) {
			return nil, errors.New("feature dimension mismatch")
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform fits the scaler and returns the standardized data.
func (s *Scaler) FitTransform(data [][]float64) ([][]float64, error) {
	if err := s.Fit(data); err != nil {
		return nil, err
	}
	return s.Transform(data)
}
