package nats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
)

func TestNewForecastResultMsg(t *testing.T) {
	run := &forecast.Run{
		ID: "run-9",
		Results: map[model.Tier]*forecast.TierResult{
			model.TierLow: {
				Tier:    model.TierLow,
				Records: make([]model.SalesRecord, 3),
				Forecast: &model.ForecastResult{
					Predictions: []float64{1, 2, 3, 4, 5, 6, 7},
					Range:       model.Range{Min: 1, Max: 9},
				},
			},
			model.TierMid:  {Tier: model.TierMid, Err: errors.New("model down")},
			model.TierHigh: {Tier: model.TierHigh},
		},
	}

	msg := NewForecastResultMsg("req-1", run)
	assert.Equal(t, "run-9", msg.RunID)
	require.Len(t, msg.Tiers, 3)

	assert.Equal(t, model.TierLow, msg.Tiers[0].Tier)
	assert.Equal(t, 3, msg.Tiers[0].Records)
	assert.Len(t, msg.Tiers[0].Predictions, 7)
	assert.Empty(t, msg.Tiers[0].Error)

	assert.Equal(t, "model down", msg.Tiers[1].Error)
	assert.Equal(t, "no forecast", msg.Tiers[2].Error)

	data, err := Encode(msg)
	require.NoError(t, err)
	decoded, err := DecodeForecastResult(data)
	require.NoError(t, err)
	assert.Equal(t, msg.Tiers, decoded.Tiers)
}

func TestDecodeForecastRequest(t *testing.T) {
	msg, err := DecodeForecastRequest([]byte(`{"request_id":"r1","records":[{"date":"2024-01-01T00:00:00Z","sales":2,"price":9000000}]}`))
	require.NoError(t, err)
	require.Len(t, msg.Records, 1)
	assert.Equal(t, 9_000_000.0, msg.Records[0].Price)

	_, err = DecodeForecastRequest([]byte(`{"records":[]}`))
	assert.Error(t, err)

	_, err = DecodeForecastRequest([]byte(`not json`))
	assert.Error(t, err)
}
