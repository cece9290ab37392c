package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/model"
)

func TestFit(t *testing.T) {
	r := Fit([]float64{30, 10, 120, 50})
	assert.Equal(t, model.Range{Min: 10, Max: 120}, r)

	assert.Equal(t, model.Range{}, Fit(nil))
}

func TestForwardBounds(t *testing.T) {
	s := FitScaler([]float64{10, 20, 30, 40, 50})
	assert.Equal(t, -1.0, s.Forward(10))
	assert.Equal(t, 1.0, s.Forward(50))
	assert.Equal(t, 0.0, s.Forward(30))
}

func TestRoundTrip(t *testing.T) {
	window := []float64{0, 0, 3.5, 120, 17, 99.25, 1e7, 4, 4, 800, 0.001, 12}
	s := FitScaler(window)
	require.False(t, s.Range().IsDegenerate())

	for _, v := range window {
		assert.InDelta(t, v, s.Inverse(s.Forward(v)), 1e-6)
	}
}

func TestDegenerateRange(t *testing.T) {
	s := FitScaler([]float64{5, 5, 5, 5})
	require.True(t, s.Range().IsDegenerate())

	assert.Equal(t, 0.0, s.Forward(5))
	assert.Equal(t, 0.0, s.Forward(1000))
	for _, x := range []float64{-1, 0, 0.7, 3} {
		got := s.Inverse(x)
		assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		assert.Equal(t, 5.0, got)
	}
}

func TestTransformReusesBuffer(t *testing.T) {
	s := FitScaler([]float64{0, 10})
	buf := make([]float64, 0, 4)
	out := s.Transform(buf, []float64{0, 5, 10})
	assert.Equal(t, []float64{-1, 0, 1}, out)
	assert.Equal(t, 4, cap(out))
}

func TestOutOfRangeValues(t *testing.T) {
	// Values outside the fitted range scale beyond [-1, 1] and still round-trip.
	s := NewScaler(model.Range{Min: 10, Max: 120})
	assert.InDelta(t, 130.0, s.Inverse(s.Forward(130)), 1e-9)
	assert.Greater(t, s.Forward(130), 1.0)
}
