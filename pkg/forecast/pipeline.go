package forecast

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/window"
)

// Config holds pipeline configuration
type Config struct {
	WindowSize  int // weekly buckets per lookback window
	Horizon     int // forecast steps
	Parallelism int // tiers forecast concurrently (1 = sequential)
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		WindowSize:  model.DefaultWindowSize,
		Horizon:     model.DefaultHorizon,
		Parallelism: len(model.Tiers),
	}
}

// TierResult is the outcome of one tier's run: a forecast or an error, never both
type TierResult struct {
	Tier     model.Tier
	Records  []model.SalesRecord
	Forecast *model.ForecastResult
	Err      error
}

// OK reports whether the tier produced a forecast
func (r TierResult) OK() bool {
	return r.Err == nil && r.Forecast != nil
}

// Run groups the per-tier results of a pipeline invocation
type Run struct {
	ID      string
	Results map[model.Tier]*TierResult
}

// Result returns the result for a tier
func (r *Run) Result(t model.Tier) *TierResult {
	return r.Results[t]
}

// Failed returns the tiers that did not produce a forecast, in display order
func (r *Run) Failed() []model.Tier {
	var failed []model.Tier
	for _, t := range model.Tiers {
		if res := r.Results[t]; res == nil || !res.OK() {
			failed = append(failed, t)
		}
	}
	return failed
}

// Pipeline routes records to their tier and forecasts each tier with its own predictor
type Pipeline struct {
	predictors map[model.Tier]Predictor
	builder    *window.Builder
	cfg        Config
}

// NewPipeline creates a pipeline. predictors must hold one entry per tier;
// a missing predictor fails only that tier.
func NewPipeline(predictors map[model.Tier]Predictor, cfg Config) *Pipeline {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return &Pipeline{
		predictors: predictors,
		builder:    window.NewBuilder(window.Config{Size: cfg.WindowSize}),
		cfg:        cfg,
	}
}

// Run classifies records, forecasts every tier and returns one result per tier.
// A tier failure is recorded in its TierResult and does not stop the others.
// The returned error is non-nil only when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, records []model.SalesRecord) (*Run, error) {
	parts := model.Partition(records)
	run := &Run{
		ID:      model.NewRunID(),
		Results: make(map[model.Tier]*TierResult, len(model.Tiers)),
	}
	for _, t := range model.Tiers {
		run.Results[t] = &TierResult{Tier: t, Records: parts[t]}
	}

	var g errgroup.Group
	g.SetLimit(p.cfg.Parallelism)
	for _, t := range model.Tiers {
		t := t // per-iteration copy; go 1.21 loop semantics
		res := run.Results[t]
		g.Go(func() error {
			res.Forecast, res.Err = p.ForecastTier(ctx, run.ID, t, res.Records)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return run, err
	}
	return run, nil
}

// ForecastTier runs the full chain for one tier:
// weekly aggregation, lookback window, fixed-range scaling and the autoregressive loop.
func (p *Pipeline) ForecastTier(ctx context.Context, runID string, t model.Tier, records []model.SalesRecord) (*model.ForecastResult, error) {
	predictor, ok := p.predictors[t]
	if !ok || predictor == nil {
		return nil, fmt.Errorf("no model for tier %s", t)
	}

	lookback := p.builder.Build(records)
	predictions, r, err := NewForecaster(predictor, p.cfg.Horizon).Forecast(ctx, lookback)
	if err != nil {
		return nil, fmt.Errorf("tier %s: %w", t, err)
	}

	return &model.ForecastResult{
		RunID:       runID,
		Tier:        t,
		Window:      lookback,
		Range:       r,
		Predictions: predictions,
		Records:     len(records),
		CreatedAt:   time.Now().UTC(),
	}, nil
}
