package rerank

import (
	"math"
	"sort"
	"time"

	"github.com/tunogya/salescast/pkg/store/milvus"
)

// TimeDecayConfig holds configuration for time decay reranking.
// Ages are measured from a window's last sales date.
type TimeDecayConfig struct {
	Lambda float64 // Exponential decay rate per day
	// Segment weights, used when UseSegments is true
	UseSegments  bool
	RecentDays   float64 // Days considered "recent" (one quarter)
	MediumDays   float64 // Days considered "medium" (one year)
	RecentWeight float64
	MediumWeight float64
	OldWeight    float64
}

// DefaultTimeDecayConfig returns a default configuration
func DefaultTimeDecayConfig() TimeDecayConfig {
	return TimeDecayConfig{
		Lambda:       0.005, // half weight after roughly 20 weeks
		UseSegments:  false,
		RecentDays:   91,
		MediumDays:   365,
		RecentWeight: 1.0,
		MediumWeight: 0.7,
		OldWeight:    0.4,
	}
}

// SegmentConfig returns a configuration using segment-based weights
func SegmentConfig() TimeDecayConfig {
	cfg := DefaultTimeDecayConfig()
	cfg.UseSegments = true
	cfg.Lambda = 0
	return cfg
}

// RankedResult extends SearchResult with reranked score
type RankedResult struct {
	milvus.SearchResult
	OriginalScore float32
	TimeWeight    float64
	FinalScore    float64
}

// Reranker performs time-based reranking of search results
type Reranker struct {
	config TimeDecayConfig
}

// NewReranker creates a new reranker with the given configuration
func NewReranker(config TimeDecayConfig) *Reranker {
	return &Reranker{config: config}
}

// Weight returns the time weight for an archived window ending at tEnd
func (r *Reranker) Weight(tEnd, now time.Time) float64 {
	ageDays := now.Sub(tEnd).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	if r.config.UseSegments {
		return r.segmentWeight(ageDays)
	}
	return math.Exp(-r.config.Lambda * ageDays)
}

// Rerank reranks search results based on time decay. Ties keep search order.
func (r *Reranker) Rerank(results []milvus.SearchResult, now time.Time) []RankedResult {
	ranked := make([]RankedResult, len(results))

	for i, result := range results {
		weight := r.Weight(result.TEnd, now)
		ranked[i] = RankedResult{
			SearchResult:  result,
			OriginalScore: result.Score,
			TimeWeight:    weight,
			FinalScore:    float64(result.Score) * weight,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	return ranked
}

func (r *Reranker) segmentWeight(ageDays float64) float64 {
	switch {
	case ageDays <= r.config.RecentDays:
		return r.config.RecentWeight
	case ageDays <= r.config.MediumDays:
		return r.config.MediumWeight
	default:
		return r.config.OldWeight
	}
}

// TopN returns the top N results after reranking
func (r *Reranker) TopN(results []milvus.SearchResult, now time.Time, n int) []RankedResult {
	ranked := r.Rerank(results, now)
	if n < 0 || len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}

// ExcludeRun drops results belonging to the given run, typically the query itself
func ExcludeRun(results []milvus.SearchResult, runID string) []milvus.SearchResult {
	out := results[:0:0]
	for _, r := range results {
		if r.RunID != runID {
			out = append(out, r)
		}
	}
	return out
}

// FilterByMinScore filters results by minimum final score
func FilterByMinScore(results []RankedResult, minScore float64) []RankedResult {
	var filtered []RankedResult
	for _, r := range results {
		if r.FinalScore >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
