package window

import (
	"github.com/tunogya/salescast/pkg/model"
)

// BuildLookback returns exactly size values: the last size weekly totals,
// or all of them left-padded with zeros when history is shorter.
func BuildLookback(weekly []float64, size int) []float64 {
	if size <= 0 {
		size = model.DefaultWindowSize
	}

	result := make([]float64, size)
	if len(weekly) >= size {
		copy(result, weekly[len(weekly)-size:])
		return result
	}

	copy(result[size-len(weekly):], weekly)
	return result
}

// Builder turns one tier's records into its lookback window
type Builder struct {
	Size      int // window length in weekly buckets
	GroupSize int // records per bucket
}

// Config holds configuration for the window builder
type Config struct {
	Size      int // Window length (defaults to 12)
	GroupSize int // Records per bucket (defaults to 7)
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Size:      model.DefaultWindowSize,
		GroupSize: model.DaysPerBucket,
	}
}

// NewBuilder creates a new window builder with the given configuration
func NewBuilder(cfg Config) *Builder {
	if cfg.Size <= 0 {
		cfg.Size = model.DefaultWindowSize
	}
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = model.DaysPerBucket
	}
	return &Builder{
		Size:      cfg.Size,
		GroupSize: cfg.GroupSize,
	}
}

// Weekly aggregates records into bucket totals
func (b *Builder) Weekly(records []model.SalesRecord) []float64 {
	a := NewAggregator(b.GroupSize)
	for _, r := range records {
		a.Push(r)
	}
	return a.Flush()
}

// Build aggregates records and returns the lookback window
func (b *Builder) Build(records []model.SalesRecord) []float64 {
	return BuildLookback(b.Weekly(records), b.Size)
}
