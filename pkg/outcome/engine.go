package outcome

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/rerank"
	"github.com/tunogya/salescast/pkg/store/duckdb"
)

// RunLoader fetches one tier of an archived run
type RunLoader interface {
	GetByID(ctx context.Context, runID string, tier model.Tier) (*duckdb.RunRow, *model.ForecastResult, error)
}

// Engine summarizes what similar archived histories forecast next
type Engine struct {
	runs RunLoader
}

// NewEngine creates a new outcome engine
func NewEngine(runs RunLoader) *Engine {
	return &Engine{runs: runs}
}

// Result is the forecast of one similar run
type Result struct {
	RunID       string
	Weight      float64 // reranked score
	Predictions []float64
	Total       float64
}

// Calculate loads the forecasts of ranked neighbours for one tier.
// Neighbours missing from the archive or whose forecast failed are skipped.
func (e *Engine) Calculate(ctx context.Context, tier model.Tier, ranked []rerank.RankedResult) ([]Result, error) {
	var results []Result

	for _, r := range ranked {
		_, f, err := e.runs.GetByID(ctx, r.RunID, tier)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", r.RunID, err)
		}
		if f == nil {
			continue
		}

		results = append(results, Result{
			RunID:       r.RunID,
			Weight:      r.FinalScore,
			Predictions: f.Predictions,
			Total:       f.Total(),
		})
	}

	return results, nil
}

// AggregatedOutcome represents statistics across the forecasts of similar runs
type AggregatedOutcome struct {
	SampleCount int
	MeanTotal   float64 // weighted by reranked score
	P10         float64
	P50         float64
	P90         float64
	StepMeans   []float64 // weighted mean per horizon step
}

// Aggregate summarizes neighbour forecasts. Non-positive weights count as zero;
// when every weight is zero the mean is unweighted.
func Aggregate(results []Result) AggregatedOutcome {
	agg := AggregatedOutcome{SampleCount: len(results)}
	if len(results) == 0 {
		return agg
	}

	totals := make([]float64, len(results))
	weights := make([]float64, len(results))
	positive := false
	steps := 0
	for i, r := range results {
		totals[i] = r.Total
		if r.Weight > 0 {
			weights[i] = r.Weight
			positive = true
		}
		if len(r.Predictions) > steps {
			steps = len(r.Predictions)
		}
	}
	if !positive {
		weights = nil
	}

	agg.MeanTotal = stat.Mean(totals, weights)

	sorted := append([]float64(nil), totals...)
	sort.Float64s(sorted)
	agg.P10 = percentile(sorted, 10)
	agg.P50 = percentile(sorted, 50)
	agg.P90 = percentile(sorted, 90)

	agg.StepMeans = make([]float64, steps)
	for s := 0; s < steps; s++ {
		var values, w []float64
		for i, r := range results {
			if s >= len(r.Predictions) {
				continue
			}
			values = append(values, r.Predictions[s])
			if weights != nil {
				w = append(w, weights[i])
			}
		}
		if weights != nil && floats.Sum(w) == 0 {
			w = nil
		}
		agg.StepMeans[s] = stat.Mean(values, w)
	}

	return agg
}

// percentile calculates the p-th percentile (p in 0-100) with linear interpolation
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	fraction := rank - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

// String returns a formatted string representation
func (a AggregatedOutcome) String() string {
	return fmt.Sprintf(
		"Samples: %d | Mean: %.2f | P10: %.2f | P50: %.2f | P90: %.2f",
		a.SampleCount, a.MeanTotal, a.P10, a.P50, a.P90,
	)
}
