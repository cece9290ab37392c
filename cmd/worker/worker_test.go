package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/predict"
	"github.com/tunogya/salescast/pkg/queue/nats"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

type capture struct {
	subject string
	msg     *nats.ForecastResultMsg
	err     error
}

func (c *capture) PublishJSON(_ context.Context, subject string, v interface{}) error {
	c.subject = subject
	c.msg = v.(*nats.ForecastResultMsg)
	return c.err
}

type indexCapture struct {
	collection string
	windows    []*milvus.WindowData
}

func (i *indexCapture) InsertBatch(_ context.Context, collection string, data []*milvus.WindowData) error {
	i.collection = collection
	i.windows = append(i.windows, data...)
	return nil
}

func newWorker(pub publisher) *worker {
	p := predict.Func(func(context.Context, []float64) (float64, error) { return 0, nil })
	preds := map[model.Tier]forecast.Predictor{model.TierLow: p, model.TierMid: p, model.TierHigh: p}
	return &worker{
		runner:     forecast.NewPipeline(preds, forecast.DefaultConfig()),
		pub:        pub,
		collection: milvus.DefaultCollectionName,
		windowSize: model.DefaultWindowSize,
	}
}

func request(t *testing.T) []byte {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var records []model.SalesRecord
	for i := 0; i < 14; i++ {
		records = append(records, model.SalesRecord{Date: start.AddDate(0, 0, i), Sales: float64(i), Price: 20_000_000})
	}
	data, err := json.Marshal(nats.ForecastRequestMsg{RequestID: "req-1", Records: records})
	require.NoError(t, err)
	return data
}

func TestWorkerPublishesResult(t *testing.T) {
	pub := &capture{}
	idx := &indexCapture{}
	w := newWorker(pub)
	w.index = idx

	require.NoError(t, w.handle(context.Background(), request(t)))
	assert.Equal(t, nats.SubjectForecastResult, pub.subject)
	require.NotNil(t, pub.msg)
	assert.Equal(t, "req-1", pub.msg.RequestID)
	require.Len(t, pub.msg.Tiers, 3)

	high := pub.msg.Tiers[2]
	assert.Equal(t, model.TierHigh, high.Tier)
	assert.Equal(t, 14, high.Records)
	assert.Len(t, high.Predictions, model.DefaultHorizon)

	// low and mid have flat all-zero windows, only high is indexed
	require.Len(t, idx.windows, 1)
	assert.Equal(t, model.TierHigh, idx.windows[0].Tier)
	assert.Equal(t, pub.msg.RunID, idx.windows[0].RunID)
	assert.Equal(t, milvus.DefaultCollectionName, idx.collection)
}

func TestWorkerAcksMalformedRequests(t *testing.T) {
	pub := &capture{}
	w := newWorker(pub)
	assert.NoError(t, w.handle(context.Background(), []byte("{")))
	assert.NoError(t, w.handle(context.Background(), []byte(`{"records":[]}`)))
	assert.Nil(t, pub.msg)
}

func TestWorkerRetriesPublishFailures(t *testing.T) {
	w := newWorker(&capture{err: errors.New("nats down")})
	err := w.handle(context.Background(), request(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "req-1")
}
