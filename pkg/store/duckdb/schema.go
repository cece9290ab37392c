package duckdb

import (
	"context"
	"fmt"
)

// Schema contains table creation statements for all required tables

// CreateSalesRecordsTable creates the raw records table, one row per input record of a run
const CreateSalesRecordsTable = `
CREATE TABLE IF NOT EXISTS sales_records (
    run_id VARCHAR NOT NULL,
    seq INTEGER NOT NULL,
    tier VARCHAR NOT NULL,
    date DATE NOT NULL,
    sales DOUBLE NOT NULL,
    price DOUBLE NOT NULL,
    PRIMARY KEY (run_id, seq)
);
`

// CreateForecastRunsTable creates the per-tier run table
const CreateForecastRunsTable = `
CREATE TABLE IF NOT EXISTS forecast_runs (
    run_id VARCHAR NOT NULL,
    tier VARCHAR NOT NULL,
    status VARCHAR NOT NULL,
    error VARCHAR,
    records INTEGER NOT NULL,
    window_size INTEGER NOT NULL,
    range_min DOUBLE,
    range_max DOUBLE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (run_id, tier)
);

CREATE INDEX IF NOT EXISTS idx_forecast_runs_tier ON forecast_runs(tier);
CREATE INDEX IF NOT EXISTS idx_forecast_runs_created ON forecast_runs(created_at);
`

// CreateWindowValuesTable creates the table holding each run's initial lookback window
const CreateWindowValuesTable = `
CREATE TABLE IF NOT EXISTS window_values (
    run_id VARCHAR NOT NULL,
    tier VARCHAR NOT NULL,
    pos INTEGER NOT NULL,
    value DOUBLE NOT NULL,
    PRIMARY KEY (run_id, tier, pos)
);
`

// CreateForecastValuesTable creates the per-step prediction table
const CreateForecastValuesTable = `
CREATE TABLE IF NOT EXISTS forecast_values (
    run_id VARCHAR NOT NULL,
    tier VARCHAR NOT NULL,
    step INTEGER NOT NULL,
    value DOUBLE NOT NULL,
    PRIMARY KEY (run_id, tier, step)
);
`

// InitializeSchema creates all required tables
func InitializeSchema(ctx context.Context, c *Client) error {
	schemas := []string{
		CreateSalesRecordsTable,
		CreateForecastRunsTable,
		CreateWindowValuesTable,
		CreateForecastValuesTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(ctx context.Context, c *Client) error {
	tables := []string{"forecast_values", "window_values", "forecast_runs", "sales_records"}
	for _, table := range tables {
		if err := c.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
