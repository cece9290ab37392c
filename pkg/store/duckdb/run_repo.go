package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tunogya/salescast/pkg/model"
)

// Run statuses
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunRow is one tier of a stored run
type RunRow struct {
	RunID      string
	Tier       model.Tier
	Status     string
	Error      string
	Records    int
	WindowSize int
	Range      model.Range
	CreatedAt  time.Time
}

// RunRepo handles forecast run persistence
type RunRepo struct {
	client *Client
}

// NewRunRepo creates a new run repository
func NewRunRepo(client *Client) *RunRepo {
	return &RunRepo{client: client}
}

// Insert stores a successful tier forecast with its window and predictions
func (r *RunRepo) Insert(ctx context.Context, f *model.ForecastResult) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO forecast_runs (run_id, tier, status, error, records, window_size, range_min, range_max, created_at)
		VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, tier) DO NOTHING
	`, f.RunID, string(f.Tier), StatusOK, f.Records, len(f.Window), f.Range.Min, f.Range.Max, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertSeries(ctx, tx, "window_values", "pos", f.RunID, f.Tier, f.Window); err != nil {
		return err
	}
	if err := insertSeries(ctx, tx, "forecast_values", "step", f.RunID, f.Tier, f.Predictions); err != nil {
		return err
	}

	return tx.Commit()
}

// InsertFailure records a tier that failed to forecast
func (r *RunRepo) InsertFailure(ctx context.Context, runID string, tier model.Tier, records, windowSize int, cause error) error {
	query := `
		INSERT INTO forecast_runs (run_id, tier, status, error, records, window_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, tier) DO NOTHING
	`
	return r.client.Exec(ctx, query, runID, string(tier), StatusFailed, cause.Error(), records, windowSize, time.Now().UTC())
}

// GetByID retrieves one tier of a run together with its window and predictions.
// Failed tiers come back with a nil forecast.
func (r *RunRepo) GetByID(ctx context.Context, runID string, tier model.Tier) (*RunRow, *model.ForecastResult, error) {
	query := `
		SELECT run_id, tier, status, error, records, window_size, range_min, range_max, created_at
		FROM forecast_runs
		WHERE run_id = ? AND tier = ?
	`
	row, err := scanRun(r.client.QueryRow(ctx, query, runID, string(tier)))
	if err != nil {
		return nil, nil, err
	}
	if row.Status != StatusOK {
		return row, nil, nil
	}

	window, err := r.series(ctx, "window_values", "pos", runID, tier)
	if err != nil {
		return nil, nil, err
	}
	predictions, err := r.series(ctx, "forecast_values", "step", runID, tier)
	if err != nil {
		return nil, nil, err
	}

	return row, &model.ForecastResult{
		RunID:       row.RunID,
		Tier:        row.Tier,
		Window:      window,
		Range:       row.Range,
		Predictions: predictions,
		Records:     row.Records,
		CreatedAt:   row.CreatedAt,
	}, nil
}

// Latest retrieves the most recent runs for a tier, newest first
func (r *RunRepo) Latest(ctx context.Context, tier model.Tier, limit int) ([]*RunRow, error) {
	query := `
		SELECT run_id, tier, status, error, records, window_size, range_min, range_max, created_at
		FROM forecast_runs
		WHERE tier = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.client.Query(ctx, query, string(tier), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRow
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Count returns the number of stored tier runs
func (r *RunRepo) Count(ctx context.Context, tier model.Tier) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM forecast_runs WHERE tier = ?", string(tier))
	err := row.Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*RunRow, error) {
	var row RunRow
	var tier string
	var errText sql.NullString
	var rmin, rmax sql.NullFloat64
	err := s.Scan(&row.RunID, &tier, &row.Status, &errText, &row.Records, &row.WindowSize, &rmin, &rmax, &row.CreatedAt)
	if err != nil {
		return nil, err
	}
	row.Tier = model.Tier(tier)
	row.Error = errText.String
	row.Range = model.Range{Min: rmin.Float64, Max: rmax.Float64}
	row.CreatedAt = row.CreatedAt.UTC()
	return &row, nil
}

func insertSeries(ctx context.Context, tx *sql.Tx, table, col, runID string, tier model.Tier, values []float64) error {
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (run_id, tier, %s, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, table, col))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, v := range values {
		if _, err := stmt.ExecContext(ctx, runID, string(tier), i, v); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

func (r *RunRepo) series(ctx context.Context, table, col, runID string, tier model.Tier) ([]float64, error) {
	rows, err := r.client.Query(ctx, fmt.Sprintf(
		"SELECT value FROM %s WHERE run_id = ? AND tier = ? ORDER BY %s ASC", table, col,
	), runID, string(tier))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
