package outcome

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/rerank"
	"github.com/tunogya/salescast/pkg/store/duckdb"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

type fakeRuns map[string]*model.ForecastResult

func (f fakeRuns) GetByID(_ context.Context, runID string, tier model.Tier) (*duckdb.RunRow, *model.ForecastResult, error) {
	if runID == "broken" {
		return nil, nil, errors.New("disk error")
	}
	res, ok := f[runID]
	if !ok {
		return nil, nil, sql.ErrNoRows
	}
	row := &duckdb.RunRow{RunID: runID, Tier: tier, Status: duckdb.StatusOK}
	if res == nil {
		row.Status = duckdb.StatusFailed
	}
	return row, res, nil
}

func ranked(ids ...string) []rerank.RankedResult {
	out := make([]rerank.RankedResult, len(ids))
	for i, id := range ids {
		out[i] = rerank.RankedResult{SearchResult: milvus.SearchResult{RunID: id}, FinalScore: 1}
	}
	return out
}

func TestCalculateSkipsMissingAndFailed(t *testing.T) {
	e := NewEngine(fakeRuns{
		"a":      {Predictions: []float64{1, 2}},
		"failed": nil,
	})

	results, err := e.Calculate(context.Background(), model.TierLow, ranked("a", "gone", "failed"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].RunID)
	assert.Equal(t, 3.0, results[0].Total)
	assert.Equal(t, 1.0, results[0].Weight)

	_, err = e.Calculate(context.Background(), model.TierLow, ranked("broken"))
	assert.Error(t, err)
}

func TestAggregate(t *testing.T) {
	agg := Aggregate([]Result{
		{Total: 10, Weight: 3, Predictions: []float64{4, 6}},
		{Total: 20, Weight: 1, Predictions: []float64{8, 12}},
		{Total: 30, Weight: 0, Predictions: []float64{10}},
	})

	assert.Equal(t, 3, agg.SampleCount)
	assert.InDelta(t, 12.5, agg.MeanTotal, 1e-9)
	assert.InDelta(t, 12, agg.P10, 1e-9)
	assert.InDelta(t, 20, agg.P50, 1e-9)
	assert.InDelta(t, 28, agg.P90, 1e-9)
	require.Len(t, agg.StepMeans, 2)
	assert.InDelta(t, 5, agg.StepMeans[0], 1e-9)
	assert.InDelta(t, 7.5, agg.StepMeans[1], 1e-9)
}

func TestAggregateUnweighted(t *testing.T) {
	agg := Aggregate([]Result{{Total: 2}, {Total: 4}})
	assert.InDelta(t, 3, agg.MeanTotal, 1e-9)
	assert.Empty(t, agg.StepMeans)
}

func TestAggregateEmpty(t *testing.T) {
	agg := Aggregate(nil)
	assert.Equal(t, 0, agg.SampleCount)
	assert.Contains(t, agg.String(), "Samples: 0")
}
