package api

import (
	"github.com/tunogya/salescast/pkg/data"
	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/plot"
)

// TierResponse is one tier of a forecast response. Predictions and Error are exclusive.
type TierResponse struct {
	Tier        model.Tier        `json:"tier"`
	Title       string            `json:"title"`
	Records     int               `json:"records"`
	Predictions []float64         `json:"predictions,omitempty"`
	Range       *model.Range      `json:"range,omitempty"`
	Series      []model.PlotPoint `json:"series,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// ForecastResponse is the body returned by POST /api/v1/forecast
type ForecastResponse struct {
	RunID    string         `json:"run_id"`
	Stats    data.LoadStats `json:"stats"`
	Tiers    []TierResponse `json:"tiers"`
	Archived bool           `json:"archived"`
}

// NewForecastResponse flattens a run into display order with chart series per tier.
// A tier without history still reports its forecast, just without a series.
func NewForecastResponse(run *forecast.Run, stats data.LoadStats, weeks int) *ForecastResponse {
	resp := &ForecastResponse{
		RunID: run.ID,
		Stats: stats,
		Tiers: make([]TierResponse, 0, len(model.Tiers)),
	}

	for _, t := range model.Tiers {
		tr := TierResponse{Tier: t, Title: t.Title()}
		res := run.Result(t)
		if res == nil {
			tr.Error = "tier was not run"
			resp.Tiers = append(resp.Tiers, tr)
			continue
		}

		tr.Records = len(res.Records)
		if !res.OK() {
			tr.Error = errorText(res.Err)
			resp.Tiers = append(resp.Tiers, tr)
			continue
		}

		f := res.Forecast
		r := f.Range
		tr.Predictions = f.Predictions
		tr.Range = &r
		if series, err := plot.Prepare(res.Records, f.Predictions, weeks); err == nil {
			tr.Series = series
		}
		resp.Tiers = append(resp.Tiers, tr)
	}

	return resp
}

func errorText(err error) string {
	if err == nil {
		return "no forecast"
	}
	return err.Error()
}
