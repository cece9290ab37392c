package duckdb

import (
	"context"
	"fmt"

	"github.com/tunogya/salescast/pkg/model"
)

// RecordRepo handles sales record persistence
type RecordRepo struct {
	client *Client
}

// NewRecordRepo creates a new record repository
func NewRecordRepo(client *Client) *RecordRepo {
	return &RecordRepo{client: client}
}

// InsertBatch stores a run's input records in a transaction, keeping their order
func (r *RecordRepo) InsertBatch(ctx context.Context, runID string, records []model.SalesRecord) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records (run_id, seq, tier, date, sales, price)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, seq) DO UPDATE SET
			tier = EXCLUDED.tier,
			date = EXCLUDED.date,
			sales = EXCLUDED.sales,
			price = EXCLUDED.price
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		rec = rec.Categorized()
		if _, err := stmt.ExecContext(ctx, runID, i, string(rec.Tier), rec.Date, rec.Sales, rec.Price); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return tx.Commit()
}

// GetByRun retrieves a run's records for one tier in input order.
// An empty tier returns all tiers.
func (r *RecordRepo) GetByRun(ctx context.Context, runID string, tier model.Tier) ([]model.SalesRecord, error) {
	query := `
		SELECT date, sales, price, tier
		FROM sales_records
		WHERE run_id = ? AND (? = '' OR tier = ?)
		ORDER BY seq ASC
	`

	rows, err := r.client.Query(ctx, query, runID, string(tier), string(tier))
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []model.SalesRecord
	for rows.Next() {
		var rec model.SalesRecord
		var t string
		if err := rows.Scan(&rec.Date, &rec.Sales, &rec.Price, &t); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.Date = rec.Date.UTC()
		rec.Tier = model.Tier(t)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns the number of records stored for a run
func (r *RecordRepo) Count(ctx context.Context, runID string) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM sales_records WHERE run_id = ?", runID)
	err := row.Scan(&count)
	return count, err
}
