package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/salescast/pkg/forecast"
	"github.com/tunogya/salescast/pkg/model"
)

// Archive stores complete pipeline runs: input records plus one row per tier
type Archive struct {
	Records *RecordRepo
	Runs    *RunRepo
}

// NewArchive creates an archive over a client
func NewArchive(client *Client) *Archive {
	return &Archive{
		Records: NewRecordRepo(client),
		Runs:    NewRunRepo(client),
	}
}

// SaveRun persists every tier of a run. Failed tiers are stored with their error.
func (a *Archive) SaveRun(ctx context.Context, run *forecast.Run, windowSize int) error {
	var records []model.SalesRecord
	for _, t := range model.Tiers {
		if res := run.Result(t); res != nil {
			records = append(records, res.Records...)
		}
	}
	if err := a.Records.InsertBatch(ctx, run.ID, records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}

	for _, t := range model.Tiers {
		res := run.Result(t)
		if res == nil {
			continue
		}
		if res.OK() {
			if err := a.Runs.Insert(ctx, res.Forecast); err != nil {
				return fmt.Errorf("failed to store %s forecast: %w", t, err)
			}
			continue
		}
		cause := res.Err
		if cause == nil {
			cause = fmt.Errorf("no forecast")
		}
		if err := a.Runs.InsertFailure(ctx, run.ID, t, len(res.Records), windowSize, cause); err != nil {
			return fmt.Errorf("failed to store %s failure: %w", t, err)
		}
	}
	return nil
}
