package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalerFitTransform(t *testing.T) {
	s := NewScaler()
	data := [][]float64{
		{1, 100, 7},
		{2, 200, 7},
		{3, 300, 7},
		{4, 400, 7},
	}

	scaled, err := s.FitTransform(data)
	require.NoError(t, err)
	require.Len(t, scaled, len(data))

	// Each non-constant column has zero mean and unit variance
	for j := 0; j < 2; j++ {
		var mean, variance float64
		for _, row := range scaled {
			mean += row[j]
		}
		mean /= float64(len(scaled))
		for _, row := range scaled {
			variance += (row[j] - mean) * (row[j] - mean)
		}
		variance /= float64(len(scaled))

		assert.InDelta(t, 0, mean, 1e-9)
		assert.InDelta(t, 1, variance, 1e-9)
	}

	// Constant columns become zero instead of dividing by zero
	for _, row := range scaled {
		assert.Zero(t, row[2])
		assert.False(t, math.IsNaN(row[2]))
	}
}

func TestScalerTransformBeforeFit(t *testing.T) {
	s := NewScaler()
	_, err := s.Transform([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestScalerDimensionMismatch(t *testing.T) {
	s := NewScaler()
	_, err := s.FitTransform([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	_, err = s.Transform([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestScalerEmptyData(t *testing.T) {
	s := NewScaler()
	assert.Error(t, s.Fit(nil))
}

func TestScalerReusesFrozenParameters(t *testing.T) {
	s := NewScaler()
	_, err := s.FitTransform([][]float64{{0}, {10}})
	require.NoError(t, err)

	// mean 5, stddev 5
	out, err := s.Transform([][]float64{{5}, {15}})
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0][0], 1e-9)
	assert.InDelta(t, 2, out[1][0], 1e-9)
}
