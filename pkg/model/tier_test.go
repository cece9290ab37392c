package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPriceBoundaries(t *testing.T) {
	cases := []struct {
		price float64
		want  Tier
	}{
		{0, TierLow},
		{7_999_999, TierLow},
		{8_000_000, TierLow},
		{8_000_000.01, TierMid},
		{12_500_000, TierMid},
		{16_000_000, TierMid},
		{16_000_001, TierHigh},
		{1e12, TierHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyPrice(tc.price), "price %v", tc.price)
	}
}

func TestClassifyPriceTotal(t *testing.T) {
	for p := 0.0; p <= 40_000_000; p += 250_000 {
		got := ClassifyPrice(p)
		assert.Contains(t, Tiers, got)
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []SalesRecord{
		{Date: day, Sales: 1, Price: 20_000_000},
		{Date: day.AddDate(0, 0, 1), Sales: 2, Price: 5_000_000},
		{Date: day.AddDate(0, 0, 2), Sales: 3, Price: 9_000_000},
		{Date: day.AddDate(0, 0, 3), Sales: 4, Price: 1_000},
		{Date: day.AddDate(0, 0, 4), Sales: 5, Price: 16_000_001, Tier: TierLow},
	}

	parts := Partition(records)
	require.Len(t, parts, 3)

	require.Len(t, parts[TierLow], 2)
	assert.Equal(t, 2.0, parts[TierLow][0].Sales)
	assert.Equal(t, 4.0, parts[TierLow][1].Sales)

	require.Len(t, parts[TierMid], 1)
	assert.Equal(t, TierMid, parts[TierMid][0].Tier)

	require.Len(t, parts[TierHigh], 2)
	assert.Equal(t, 1.0, parts[TierHigh][0].Sales)
	assert.Equal(t, 5.0, parts[TierHigh][1].Sales)
	assert.Equal(t, TierHigh, parts[TierHigh][1].Tier)

	// input untouched
	assert.Equal(t, Tier(""), records[0].Tier)
}

func TestPartitionEmpty(t *testing.T) {
	parts := Partition(nil)
	for _, tier := range Tiers {
		v, ok := parts[tier]
		assert.True(t, ok)
		assert.Empty(t, v)
	}
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("mid")
	require.NoError(t, err)
	assert.Equal(t, TierMid, tier)

	_, err = ParseTier("premium")
	assert.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	// 2024-01-03 is a Wednesday; its week starts Sunday 2023-12-31.
	r := SalesRecord{Date: time.Date(2024, 1, 3, 15, 4, 5, 0, time.UTC)}
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), r.WeekStart())

	sunday := SalesRecord{Date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, sunday.Date, sunday.WeekStart())
}
