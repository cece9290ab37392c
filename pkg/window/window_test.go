package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunogya/salescast/pkg/model"
)

func makeRecords(sales ...float64) []model.SalesRecord {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.SalesRecord, len(sales))
	for i, s := range sales {
		records[i] = model.SalesRecord{Date: day.AddDate(0, 0, i), Sales: s, Price: 1000}
	}
	return records
}

func TestAggregateWeeklyLength(t *testing.T) {
	for n := 0; n <= 30; n++ {
		sales := make([]float64, n)
		for i := range sales {
			sales[i] = 1
		}
		got := AggregateWeekly(makeRecords(sales...))
		assert.Len(t, got, (n+6)/7, "n=%d", n)
	}
}

func TestAggregateWeeklySums(t *testing.T) {
	got := AggregateWeekly(makeRecords(1, 2, 3, 4, 5, 6, 7, 10, 20, 30))
	assert.Equal(t, []float64{28, 60}, got)
}

func TestAggregateWeeklyEmpty(t *testing.T) {
	assert.Empty(t, AggregateWeekly(nil))
}

func TestAggregatorReuse(t *testing.T) {
	a := NewAggregator(2)
	for _, r := range makeRecords(1, 2, 3) {
		a.Push(r)
	}
	assert.Equal(t, []float64{3, 3}, a.Flush())

	// state is reset after flush
	a.Push(model.SalesRecord{Sales: 9})
	assert.Equal(t, []float64{9}, a.Flush())
}

func TestBuildLookbackLength(t *testing.T) {
	for _, n := range []int{0, 1, 5, 11, 12, 13, 40} {
		weekly := make([]float64, n)
		for i := range weekly {
			weekly[i] = float64(i + 1)
		}
		assert.Len(t, BuildLookback(weekly, 12), 12, "n=%d", n)
	}
}

func TestBuildLookbackPadding(t *testing.T) {
	got := BuildLookback([]float64{7, 8, 9}, 6)
	assert.Equal(t, []float64{0, 0, 0, 7, 8, 9}, got)
}

func TestBuildLookbackTruncates(t *testing.T) {
	got := BuildLookback([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []float64{3, 4, 5}, got)
}

func TestBuildLookbackDoesNotAlias(t *testing.T) {
	weekly := []float64{1, 2, 3}
	got := BuildLookback(weekly, 3)
	got[0] = 100
	assert.Equal(t, 1.0, weekly[0])
}

func TestBuildLookbackDefaultSize(t *testing.T) {
	assert.Len(t, BuildLookback(nil, 0), model.DefaultWindowSize)
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	require.Equal(t, 12, b.Size)

	sales := make([]float64, 0, 100)
	for i := 0; i < 100; i++ {
		sales = append(sales, 1)
	}
	w := b.Build(makeRecords(sales...))
	require.Len(t, w, 12)
	// 100 records = 14 full weeks + 2 days; the window ends on the partial bucket.
	assert.Equal(t, 2.0, w[11])
	assert.Equal(t, 7.0, w[0])
}

func TestRingBufferSlides(t *testing.T) {
	rb := NewRingBufferFrom([]float64{1, 2, 3})
	require.True(t, rb.IsFull())

	rb.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, rb.ToSlice())

	rb.Push(5)
	last, ok := rb.Last()
	require.True(t, ok)
	assert.Equal(t, 5.0, last)
	assert.Equal(t, []float64{3, 4, 5}, rb.ToSlice())

	rb.Clear()
	assert.Equal(t, 0, rb.Size())
	_, ok = rb.Last()
	assert.False(t, ok)
}

func TestRingBufferPartial(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Push(1)
	rb.Push(2)
	assert.False(t, rb.IsFull())
	assert.Equal(t, []float64{1, 2}, rb.ToSlice())
	assert.Equal(t, 4, rb.Capacity())
}
