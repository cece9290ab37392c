package plot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeeklyHistory(t *testing.T) {
	records := []model.SalesRecord{
		{Date: day(2024, 1, 10), Sales: 5}, // week of Sun 2024-01-07
		{Date: day(2024, 1, 1), Sales: 2},  // week of Sun 2023-12-31
		{Date: day(2024, 1, 6), Sales: 3},  // Saturday, same week
		{Date: day(2024, 1, 7), Sales: 1},  // Sunday starts a new week
	}

	got := WeeklyHistory(records)
	require.Len(t, got, 2)
	assert.Equal(t, day(2023, 12, 31), got[0].Date)
	assert.Equal(t, 5.0, got[0].Sales)
	assert.Equal(t, day(2024, 1, 7), got[1].Date)
	assert.Equal(t, 6.0, got[1].Sales)
}

func TestForecastTotalTruncates(t *testing.T) {
	assert.Equal(t, 7.0, ForecastTotal([]float64{1.9, 2.5, 3.99, 1.2, 0.4}))
	assert.Equal(t, -1.0, ForecastTotal([]float64{-1.7, 0.9}))
	assert.Equal(t, 0.0, ForecastTotal(nil))
}

func TestPrepareKeepsLastWeeks(t *testing.T) {
	start := day(2023, 1, 1) // a Sunday
	var records []model.SalesRecord
	for i := 0; i < 30*7; i++ {
		records = append(records, model.SalesRecord{Date: start.AddDate(0, 0, i), Sales: 1})
	}

	points, err := Prepare(records, []float64{1, 1, 1, 1, 1, 1, 1.5}, 0)
	require.NoError(t, err)
	require.Len(t, points, DefaultWeeks+1)

	lastHistory := points[len(points)-2]
	assert.Equal(t, start.AddDate(0, 0, 29*7), lastHistory.Date)
	assert.Equal(t, 7.0, lastHistory.Sales)
	assert.False(t, lastHistory.Forecast)

	next := points[len(points)-1]
	assert.True(t, next.Forecast)
	assert.Equal(t, lastHistory.Date.AddDate(0, 0, 7), next.Date)
	assert.Equal(t, 7.0, next.Sales)

	assert.Equal(t, start.AddDate(0, 0, 6*7), points[0].Date)
}

func TestPrepareNoHistory(t *testing.T) {
	_, err := Prepare(nil, []float64{1, 2, 3}, 24)
	assert.ErrorIs(t, err, ErrNoHistory)
}
