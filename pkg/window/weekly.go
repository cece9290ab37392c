package window

import (
	"github.com/tunogya/salescast/pkg/model"
)

// Aggregator groups consecutive records into fixed-size buckets and sums their sales.
// Buckets follow arrival order, not calendar weeks.
type Aggregator struct {
	GroupSize int // records per bucket (defaults to 7)

	totals []float64
	sum    float64
	count  int
}

// NewAggregator creates an aggregator closing a bucket every groupSize records
func NewAggregator(groupSize int) *Aggregator {
	if groupSize <= 0 {
		groupSize = model.DaysPerBucket
	}
	return &Aggregator{GroupSize: groupSize}
}

// Push accumulates one record, closing the bucket when it reaches GroupSize
func (a *Aggregator) Push(r model.SalesRecord) {
	a.sum += r.Sales
	a.count++
	if a.count == a.GroupSize {
		a.totals = append(a.totals, a.sum)
		a.sum = 0
		a.count = 0
	}
}

// Flush closes any partial bucket and returns all bucket totals.
// The aggregator is reset afterwards.
func (a *Aggregator) Flush() []float64 {
	if a.count > 0 {
		a.totals = append(a.totals, a.sum)
	}
	totals := a.totals
	a.Reset()
	return totals
}

// Reset clears the aggregator state
func (a *Aggregator) Reset() {
	a.totals = nil
	a.sum = 0
	a.count = 0
}

// AggregateWeekly sums sales in groups of 7 records.
// Returns ceil(n/7) totals, the last one covering a partial group if n is not a multiple of 7.
func AggregateWeekly(records []model.SalesRecord) []float64 {
	a := NewAggregator(model.DaysPerBucket)
	for _, r := range records {
		a.Push(r)
	}
	return a.Flush()
}
