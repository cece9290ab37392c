package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/scale"
	"github.com/tunogya/salescast/pkg/window"
)

// ErrPrediction marks a failed or invalid model invocation
var ErrPrediction = errors.New("prediction failed")

// Predictor maps a scaled lookback window to one scaled prediction
type Predictor interface {
	Predict(ctx context.Context, window []float64) (float64, error)
}

// Forecaster produces multi-step forecasts by feeding each prediction back into the window
type Forecaster struct {
	predictor Predictor
	horizon   int
}

// NewForecaster creates a forecaster running horizon steps (defaults to 7)
func NewForecaster(p Predictor, horizon int) *Forecaster {
	if horizon <= 0 {
		horizon = model.DefaultHorizon
	}
	return &Forecaster{predictor: p, horizon: horizon}
}

// Horizon returns the number of steps per forecast
func (f *Forecaster) Horizon() int {
	return f.horizon
}

// Forecast runs the autoregressive loop over an initial lookback window.
//
// The min/max range is fitted once on the initial window and reused at every
// step, even after predicted values have replaced part of the history.
// Predictions may therefore scale outside [-1, 1].
func (f *Forecaster) Forecast(ctx context.Context, lookback []float64) ([]float64, model.Range, error) {
	if len(lookback) == 0 {
		return nil, model.Range{}, fmt.Errorf("empty lookback window")
	}

	scaler := scale.FitScaler(lookback)
	buf := window.NewRingBufferFrom(lookback)
	scaled := make([]float64, 0, len(lookback))

	predictions := make([]float64, 0, f.horizon)
	for step := 0; step < f.horizon; step++ {
		if err := ctx.Err(); err != nil {
			return nil, scaler.Range(), err
		}

		scaled = scaler.Transform(scaled, buf.ToSlice())
		out, err := f.predictor.Predict(ctx, scaled)
		if err != nil {
			return nil, scaler.Range(), fmt.Errorf("%w at step %d: %w", ErrPrediction, step+1, err)
		}
		if math.IsNaN(out) || math.IsInf(out, 0) {
			return nil, scaler.Range(), fmt.Errorf("%w at step %d: non-finite output %v", ErrPrediction, step+1, out)
		}

		actual := scaler.Inverse(out)
		predictions = append(predictions, actual)
		buf.Push(actual)
	}

	return predictions, scaler.Range(), nil
}
