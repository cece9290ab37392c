package scale

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tunogya/salescast/pkg/model"
)

// Fit computes the min/max range of a lookback window.
// An empty window yields the zero range.
func Fit(window []float64) model.Range {
	if len(window) == 0 {
		return model.Range{}
	}
	return model.Range{
		Min: floats.Min(window),
		Max: floats.Max(window),
	}
}

// Scaler maps sales values to [-1, 1] and back using a fixed range.
// A degenerate range (Max == Min) maps every value to 0 and every
// model output back to Min, so no NaN or Inf can leave the scaler.
type Scaler struct {
	r model.Range
}

// NewScaler creates a scaler for the given range
func NewScaler(r model.Range) *Scaler {
	return &Scaler{r: r}
}

// FitScaler fits a range on the window and returns its scaler
func FitScaler(window []float64) *Scaler {
	return NewScaler(Fit(window))
}

// Range returns the fixed range
func (s *Scaler) Range() model.Range {
	return s.r
}

// Forward maps v to ((v-min)/(max-min))*2-1
func (s *Scaler) Forward(v float64) float64 {
	if s.r.IsDegenerate() {
		return 0
	}
	return (v-s.r.Min)/s.r.Span()*2 - 1
}

// Inverse maps a scaled value back to sales units: ((x+1)/2)*(max-min)+min
func (s *Scaler) Inverse(x float64) float64 {
	return (x+1)/2*s.r.Span() + s.r.Min
}

// Transform scales every value of the window into dst and returns it.
// dst is reallocated if it is too short.
func (s *Scaler) Transform(dst, window []float64) []float64 {
	if cap(dst) < len(window) {
		dst = make([]float64, len(window))
	}
	dst = dst[:len(window)]
	for i, v := range window {
		dst[i] = s.Forward(v)
	}
	return dst
}

// InverseAll maps every scaled value back to sales units
func (s *Scaler) InverseAll(values []float64) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		result[i] = s.Inverse(v)
	}
	return result
}
