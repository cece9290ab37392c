package main

import (
	"context"
	"fmt"
	"log"

	"github.com/tunogya/salescast/pkg/api"
	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/queue/nats"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

// publisher is the part of the NATS client the worker needs
type publisher interface {
	PublishJSON(ctx context.Context, subject string, v interface{}) error
}

// windowIndexer stores lookback windows for similarity search
type windowIndexer interface {
	InsertBatch(ctx context.Context, collectionName string, dataList []*milvus.WindowData) error
}

type worker struct {
	runner     api.Runner
	pub        publisher
	saver      api.RunSaver  // optional
	index      windowIndexer // optional
	collection string
	windowSize int
}

// handle forecasts one request and publishes the result.
// Undecodable payloads are logged and acknowledged so they are not redelivered.
func (w *worker) handle(ctx context.Context, payload []byte) error {
	req, err := nats.DecodeForecastRequest(payload)
	if err != nil {
		log.Printf("Dropping malformed forecast request: %v", err)
		return nil
	}

	run, err := w.runner.Run(ctx, req.Records)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.RequestID, err)
	}
	if failed := run.Failed(); len(failed) > 0 {
		log.Printf("Request %s: run %s failed tiers %v", req.RequestID, run.ID, failed)
	}

	if w.saver != nil {
		if err := w.saver.SaveRun(ctx, run, w.windowSize); err != nil {
			log.Printf("Request %s: failed to archive run %s: %v", req.RequestID, run.ID, err)
		}
	}
	if w.index != nil {
		if err := w.index.InsertBatch(ctx, w.collection, milvus.WindowsFromRun(run)); err != nil {
			log.Printf("Request %s: failed to index run %s: %v", req.RequestID, run.ID, err)
		}
	}

	if err := w.pub.PublishJSON(ctx, nats.SubjectForecastResult, nats.NewForecastResultMsg(req.RequestID, run)); err != nil {
		return fmt.Errorf("request %s: %w", req.RequestID, err)
	}
	log.Printf("Request %s: published run %s (%d records)", req.RequestID, run.ID, len(req.Records))
	return nil
}

var _ api.Runner = (*forecast.Pipeline)(nil)
