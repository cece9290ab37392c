// Package plot prepares the per-tier chart series: recent calendar-week
// history plus one synthetic point for the forecast week.
package plot

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/tunogya/salescast/pkg/model"
)

// DefaultWeeks is the number of historical weeks kept on a chart (about six months)
const DefaultWeeks = 24

// ErrNoHistory is returned when a tier has no records to anchor the chart
var ErrNoHistory = errors.New("no sales history to plot")

// WeeklyHistory resamples records into Sunday-start calendar weeks (UTC),
// sorted by week. Unlike the forecasting buckets these are calendar aligned.
func WeeklyHistory(records []model.SalesRecord) []model.PlotPoint {
	totals := make(map[int64]*model.PlotPoint)
	for _, r := range records {
		week := r.WeekStart()
		p, ok := totals[week.Unix()]
		if !ok {
			p = &model.PlotPoint{Date: week}
			totals[week.Unix()] = p
		}
		p.Sales += r.Sales
	}

	points := make([]model.PlotPoint, 0, len(totals))
	for _, p := range totals {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// ForecastTotal sums the predictions after truncating each toward zero
func ForecastTotal(predictions []float64) float64 {
	truncated := make([]float64, len(predictions))
	for i, p := range predictions {
		truncated[i] = math.Trunc(p)
	}
	return floats.Sum(truncated)
}

// Prepare returns the last weeks of history followed by the forecast point,
// dated 7 days after the last historical week.
func Prepare(records []model.SalesRecord, predictions []float64, weeks int) ([]model.PlotPoint, error) {
	if weeks <= 0 {
		weeks = DefaultWeeks
	}

	history := WeeklyHistory(records)
	if len(history) == 0 {
		return nil, ErrNoHistory
	}
	if len(history) > weeks {
		history = history[len(history)-weeks:]
	}

	last := history[len(history)-1].Date
	return append(history, model.PlotPoint{
		Date:     last.AddDate(0, 0, 7),
		Sales:    ForecastTotal(predictions),
		Forecast: true,
	}), nil
}
