package data

import (
	"context"
	"time"

	"github.com/tunogya/salescast/pkg/model"
)

// SalesProvider defines the interface for fetching daily sales records
type SalesProvider interface {
	// FetchRecords retrieves records dated within [start, end], in input order.
	// A zero start or end leaves that side unbounded.
	FetchRecords(ctx context.Context, start, end time.Time) ([]model.SalesRecord, error)

	// FetchLatestRecords retrieves the most recent N records
	FetchLatestRecords(ctx context.Context, limit int) ([]model.SalesRecord, error)
}

// LoadStats reports how many rows a provider kept and dropped
type LoadStats struct {
	Rows         int `json:"rows"`
	Kept         int `json:"kept"`
	DroppedDate  int `json:"dropped_date"`  // unparseable or empty date
	DroppedValue int `json:"dropped_value"` // missing, malformed or negative sales/price
}

// Dropped returns the total number of rows dropped
func (s LoadStats) Dropped() int {
	return s.DroppedDate + s.DroppedValue
}

// MemoryProvider implements SalesProvider with in-memory storage
type MemoryProvider struct {
	records []model.SalesRecord
}

// NewMemoryProvider creates a new in-memory sales provider
func NewMemoryProvider(records []model.SalesRecord) *MemoryProvider {
	return &MemoryProvider{
		records: records,
	}
}

// AddRecords adds records to the provider
func (p *MemoryProvider) AddRecords(records []model.SalesRecord) {
	p.records = append(p.records, records...)
}

// FetchRecords retrieves records within the specified date range
func (p *MemoryProvider) FetchRecords(ctx context.Context, start, end time.Time) ([]model.SalesRecord, error) {
	return filterRange(p.records, start, end), nil
}

// FetchLatestRecords retrieves the most recent N records
func (p *MemoryProvider) FetchLatestRecords(ctx context.Context, limit int) ([]model.SalesRecord, error) {
	return latest(p.records, limit), nil
}

func filterRange(records []model.SalesRecord, start, end time.Time) []model.SalesRecord {
	var result []model.SalesRecord
	for _, r := range records {
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		result = append(result, r)
	}
	return result
}

func latest(records []model.SalesRecord, limit int) []model.SalesRecord {
	if limit <= 0 || len(records) <= limit {
		return records
	}
	return records[len(records)-limit:]
}
