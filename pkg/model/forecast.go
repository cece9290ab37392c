package model

import (
	"time"

	"github.com/google/uuid"
)

// Defaults for the forecasting pipeline
const (
	DefaultWindowSize = 12 // weekly totals in the lookback window
	DefaultHorizon    = 7  // autoregressive steps per forecast
	DaysPerBucket     = 7  // records per weekly bucket
)

// Range is the min/max pair used to scale a lookback window
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// IsDegenerate reports whether the range has zero width
func (r Range) IsDegenerate() bool {
	return r.Max == r.Min
}

// ForecastResult holds the predictions produced for one tier in one run
type ForecastResult struct {
	RunID       string    `json:"run_id"`
	Tier        Tier      `json:"tier"`
	Window      []float64 `json:"window"`      // initial lookback window, in sales units
	Range       Range     `json:"range"`       // fixed for every step of the horizon
	Predictions []float64 `json:"predictions"` // step order
	Records     int       `json:"records"`     // input records in this tier
	CreatedAt   time.Time `json:"created_at"`
}

// Total returns the sum of all predictions
func (f *ForecastResult) Total() float64 {
	sum := 0.0
	for _, p := range f.Predictions {
		sum += p
	}
	return sum
}

// PlotPoint is one point of a tier's chart series
type PlotPoint struct {
	Date     time.Time `json:"date"`
	Sales    float64   `json:"sales"`
	Forecast bool      `json:"forecast,omitempty"` // true for the synthetic next-week point
}

// NewRunID returns a fresh identifier for a forecast run
func NewRunID() string {
	return uuid.NewString()
}
