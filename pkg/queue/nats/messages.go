package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
)

// Subject constants
const (
	SubjectForecastRequest = "salescast.forecast.request"
	SubjectForecastResult  = "salescast.forecast.result"
)

// Subjects lists every subject carried by the stream
var Subjects = []string{SubjectForecastRequest, SubjectForecastResult}

// ForecastRequestMsg asks a worker to forecast a batch of records
type ForecastRequestMsg struct {
	RequestID string              `json:"request_id"`
	Records   []model.SalesRecord `json:"records"`
}

// TierResultMsg is one tier of a forecast result
type TierResultMsg struct {
	Tier        model.Tier  `json:"tier"`
	Records     int         `json:"records"`
	Predictions []float64   `json:"predictions,omitempty"`
	Range       model.Range `json:"range"`
	Error       string      `json:"error,omitempty"`
}

// ForecastResultMsg carries a finished run back to the requester
type ForecastResultMsg struct {
	RequestID string          `json:"request_id"`
	RunID     string          `json:"run_id"`
	Tiers     []TierResultMsg `json:"tiers"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewForecastResultMsg converts a pipeline run into a result message
func NewForecastResultMsg(requestID string, run *forecast.Run) *ForecastResultMsg {
	msg := &ForecastResultMsg{
		RequestID: requestID,
		RunID:     run.ID,
		CreatedAt: time.Now().UTC(),
	}
	for _, t := range model.Tiers {
		res := run.Result(t)
		if res == nil {
			continue
		}
		tm := TierResultMsg{Tier: t, Records: len(res.Records)}
		switch {
		case res.OK():
			tm.Predictions = res.Forecast.Predictions
			tm.Range = res.Forecast.Range
		case res.Err != nil:
			tm.Error = res.Err.Error()
		default:
			tm.Error = "no forecast"
		}
		msg.Tiers = append(msg.Tiers, tm)
	}
	return msg
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeForecastRequest deserializes a ForecastRequestMsg from JSON bytes
func DecodeForecastRequest(data []byte) (*ForecastRequestMsg, error) {
	var msg ForecastRequestMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RequestID == "" {
		return nil, fmt.Errorf("forecast request without request_id")
	}
	return &msg, nil
}

// DecodeForecastResult deserializes a ForecastResultMsg from JSON bytes
func DecodeForecastResult(data []byte) (*ForecastResultMsg, error) {
	var msg ForecastResultMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
