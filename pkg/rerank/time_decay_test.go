package rerank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/model"
	"github.com/tunogya/salescast/pkg/store/milvus"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return now.AddDate(0, 0, -d)
}

func TestRerankPrefersRecentWindows(t *testing.T) {
	r := NewReranker(DefaultTimeDecayConfig())
	ranked := r.Rerank([]milvus.SearchResult{
		{RunID: "old", Tier: model.TierLow, Score: 0.95, TEnd: daysAgo(400)},
		{RunID: "new", Tier: model.TierLow, Score: 0.90, TEnd: daysAgo(7)},
	}, now)

	require.Len(t, ranked, 2)
	assert.Equal(t, "new", ranked[0].RunID)
	assert.Equal(t, float32(0.90), ranked[0].OriginalScore)
	assert.Less(t, ranked[1].TimeWeight, ranked[0].TimeWeight)
}

func TestWeightFutureIsClamped(t *testing.T) {
	r := NewReranker(DefaultTimeDecayConfig())
	assert.Equal(t, 1.0, r.Weight(now.AddDate(0, 0, 3), now))
}

func TestSegmentWeights(t *testing.T) {
	r := NewReranker(SegmentConfig())
	assert.Equal(t, 1.0, r.Weight(daysAgo(30), now))
	assert.Equal(t, 0.7, r.Weight(daysAgo(200), now))
	assert.Equal(t, 0.4, r.Weight(daysAgo(800), now))
}

func TestTopNAndFilters(t *testing.T) {
	results := []milvus.SearchResult{
		{RunID: "a", Score: 0.1, TEnd: now},
		{RunID: "b", Score: 0.9, TEnd: now},
		{RunID: "c", Score: 0.5, TEnd: now},
	}
	r := NewReranker(SegmentConfig())

	top := r.TopN(results, now, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].RunID)
	assert.Equal(t, "c", top[1].RunID)

	assert.Len(t, r.TopN(results, now, 10), 3)

	filtered := FilterByMinScore(r.Rerank(results, now), 0.4)
	assert.Len(t, filtered, 2)

	rest := ExcludeRun(results, "b")
	assert.Len(t, rest, 2)
	assert.Len(t, results, 3)
}
