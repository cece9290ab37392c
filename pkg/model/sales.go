package model

import "time"

// SalesRecord is one parsed row of daily sales
type SalesRecord struct {
	Date  time.Time `json:"date"`
	Sales float64   `json:"sales"`
	Price float64   `json:"price"`
	Tier  Tier      `json:"tier,omitempty"` // derived from Price by Categorize
}

// Categorized returns a copy of the record with Tier set from its price
func (r SalesRecord) Categorized() SalesRecord {
	r.Tier = ClassifyPrice(r.Price)
	return r
}

// WeekStart returns the Sunday that starts the calendar week containing the record date (UTC)
func (r SalesRecord) WeekStart() time.Time {
	d := r.Date.UTC()
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// Categorize assigns a tier to every record and returns the classified copy
func Categorize(records []SalesRecord) []SalesRecord {
	result := make([]SalesRecord, len(records))
	for i, r := range records {
		result[i] = r.Categorized()
	}
	return result
}

// Partition splits records into per-tier subsequences preserving input order.
// Records are classified by price, so an unset or stale Tier field is ignored.
// Every tier is present in the result, empty tiers map to a nil slice.
func Partition(records []SalesRecord) map[Tier][]SalesRecord {
	parts := make(map[Tier][]SalesRecord, len(Tiers))
	for _, t := range Tiers {
		parts[t] = nil
	}
	for _, r := range records {
		r = r.Categorized()
		parts[r.Tier] = append(parts[r.Tier], r)
	}
	return parts
}
