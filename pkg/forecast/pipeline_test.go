package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/model"
)

type constPredictor float64

func (c constPredictor) Predict(context.Context, []float64) (float64, error) {
	return float64(c), nil
}

type failingPredictor struct{}

func (failingPredictor) Predict(context.Context, []float64) (float64, error) {
	return 0, errors.New("boom")
}

type countingPredictor struct {
	mu    sync.Mutex
	calls int
}

func (c *countingPredictor) Predict(context.Context, []float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 0, nil
}

func dailyRecords(n int, price float64) []model.SalesRecord {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.SalesRecord, n)
	for i := range records {
		records[i] = model.SalesRecord{Date: day.AddDate(0, 0, i), Sales: float64(i%7 + 1), Price: price}
	}
	return records
}

func TestPipelineRunsEveryTier(t *testing.T) {
	records := append(dailyRecords(100, 1_000_000), dailyRecords(30, 20_000_000)...)
	p := NewPipeline(map[model.Tier]Predictor{
		model.TierLow:  constPredictor(0),
		model.TierMid:  constPredictor(0.5),
		model.TierHigh: constPredictor(1),
	}, DefaultConfig())

	run, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Empty(t, run.Failed())

	low := run.Result(model.TierLow)
	require.True(t, low.OK())
	assert.Equal(t, 100, low.Forecast.Records)
	assert.Len(t, low.Forecast.Predictions, 7)
	assert.Len(t, low.Forecast.Window, 12)
	assert.Equal(t, run.ID, low.Forecast.RunID)

	// mid has no records: all-zero window, zero forecast
	mid := run.Result(model.TierMid)
	require.True(t, mid.OK())
	assert.Equal(t, 0, mid.Forecast.Records)
	assert.Equal(t, make([]float64, 7), mid.Forecast.Predictions)

	// high: 30 records, 5 buckets padded with 7 zeros, min 0
	high := run.Result(model.TierHigh)
	require.True(t, high.OK())
	assert.Equal(t, 0.0, high.Forecast.Window[0])
	assert.Equal(t, 0.0, high.Forecast.Range.Min)
	for _, v := range high.Forecast.Predictions {
		assert.Equal(t, high.Forecast.Range.Max, v)
	}
}

func TestPipelineIsolatesTierFailures(t *testing.T) {
	records := append(dailyRecords(20, 1_000), dailyRecords(20, 10_000_000)...)
	p := NewPipeline(map[model.Tier]Predictor{
		model.TierLow:  constPredictor(0),
		model.TierMid:  failingPredictor{},
		model.TierHigh: constPredictor(0),
	}, DefaultConfig())

	run, err := p.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, []model.Tier{model.TierMid}, run.Failed())

	mid := run.Result(model.TierMid)
	assert.Nil(t, mid.Forecast)
	assert.ErrorIs(t, mid.Err, ErrPrediction)
	assert.Len(t, mid.Records, 20)

	assert.True(t, run.Result(model.TierLow).OK())
	assert.True(t, run.Result(model.TierHigh).OK())
}

func TestPipelineMissingPredictor(t *testing.T) {
	p := NewPipeline(map[model.Tier]Predictor{model.TierLow: constPredictor(0)}, DefaultConfig())
	run, err := p.Run(context.Background(), dailyRecords(10, 1))
	require.NoError(t, err)
	assert.Equal(t, []model.Tier{model.TierMid, model.TierHigh}, run.Failed())
	assert.Contains(t, run.Result(model.TierHigh).Err.Error(), "no model")
}

func TestPipelineSequential(t *testing.T) {
	c := &countingPredictor{}
	cfg := DefaultConfig()
	cfg.Parallelism = 1
	cfg.Horizon = 3
	p := NewPipeline(map[model.Tier]Predictor{
		model.TierLow: c, model.TierMid: c, model.TierHigh: c,
	}, cfg)

	run, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, run.Failed())
	assert.Equal(t, 9, c.calls)
	assert.Len(t, run.Result(model.TierLow).Forecast.Predictions, 3)
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPipeline(map[model.Tier]Predictor{
		model.TierLow: constPredictor(0), model.TierMid: constPredictor(0), model.TierHigh: constPredictor(0),
	}, DefaultConfig())

	run, err := p.Run(ctx, dailyRecords(10, 1))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Len(t, run.Failed(), 3)
}
