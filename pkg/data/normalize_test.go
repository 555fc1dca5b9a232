package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitMinMax(t *testing.T) {
	s, err := FitMinMax([]float64{10, 2, 8, 4})
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 10.0, s.Max)

	assert.Equal(t, 0.0, s.Transform(2))
	assert.Equal(t, 1.0, s.Transform(10))
	assert.InDelta(t, 0.75, s.Transform(8), 1e-9)
}

func TestFitMinMax_Empty(t *testing.T) {
	_, err := FitMinMax(nil)
	assert.Error(t, err)
}

func TestFitMinMax_NonFinite(t *testing.T) {
	_, err := FitMinMax([]float64{1, math.NaN(), 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataIntegrity)

	_, err = FitMinMax([]float64{1, math.Inf(1)})
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestMinMax_ConstantColumn(t *testing.T) {
	s, err := FitMinMax([]float64{5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Transform(5))
	assert.Equal(t, 0.0, s.Transform(99))
}

func TestMinMax_TransformAll(t *testing.T) {
	s, err := FitMinMax([]float64{0, 10})
	require.NoError(t, err)
	out := s.TransformAll([]float64{0, 5, 10})
	assert.Equal(t, []float64{0, 0.5, 1}, out)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.1235, Round(0.12345, 4))
	assert.Equal(t, 0.12, Round(0.12345, 2))
	assert.Equal(t, 12.0, Round(11.9999, 2))
	assert.Equal(t, 11.9999, Round(11.99994, 4))
	assert.Equal(t, 0.0, Round(0, 4))
}
