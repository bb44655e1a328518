package queue

import (
	"math"
	"testing"

	"github.com/hupe1980/geoknn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nb(d float64) model.Neighbor {
	return model.Neighbor{Point: model.Point{d, 0}, Distance: d}
}

func TestMaxHeapOrder(t *testing.T) {
	pq := NewMax(8)
	for _, d := range []float64{3, 1, 4, 1, 5, 9, 2, 6} {
		pq.PushItem(nb(d))
	}

	var got []float64
	for pq.Len() > 0 {
		item, ok := pq.PopItem()
		require.True(t, ok)
		got = append(got, item.Distance)
	}
	assert.Equal(t, []float64{9, 6, 5, 4, 3, 2, 1, 1}, got)

	_, ok := pq.PopItem()
	assert.False(t, ok)
}

func TestMinHeapOrder(t *testing.T) {
	pq := NewMin(4)
	for _, d := range []float64{3, 1, 2} {
		pq.PushItem(nb(d))
	}
	top, ok := pq.TopItem()
	require.True(t, ok)
	assert.Equal(t, 1.0, top.Distance)
}

func TestPushBoundedEvictsFarthest(t *testing.T) {
	pq := NewMax(3)
	for _, d := range []float64{5, 1, 7, 3, 2, 8} {
		pq.PushBounded(nb(d), 3)
	}

	require.Equal(t, 3, pq.Len())
	top, _ := pq.TopItem()
	assert.Equal(t, 3.0, top.Distance)
	assert.Equal(t, []float64{1, 2, 3}, distances(pq.Sorted()))
}

func TestPushBoundedTieKeepsEarlier(t *testing.T) {
	pq := NewMax(1)
	first := model.Neighbor{Point: model.Point{1, 0}, Distance: 1}
	second := model.Neighbor{Point: model.Point{0, 1}, Distance: 1}

	assert.True(t, pq.PushBounded(first, 1))
	assert.False(t, pq.PushBounded(second, 1))

	top, _ := pq.TopItem()
	assert.Equal(t, first, top)
}

func TestPushBoundedMinHeap(t *testing.T) {
	pq := NewMin(2)
	for _, d := range []float64{1, 5, 3, 4} {
		pq.PushBounded(nb(d), 2)
	}
	assert.Equal(t, []float64{4, 5}, distances(pq.Sorted()))
}

func TestPushBoundedZeroCapacity(t *testing.T) {
	pq := NewMax(0)
	assert.False(t, pq.PushBounded(nb(1), 0))
	assert.Equal(t, 0, pq.Len())
}

func TestNaNOrdersFarthest(t *testing.T) {
	pq := NewMax(2)
	pq.PushBounded(nb(math.NaN()), 2)
	pq.PushBounded(nb(4), 2)
	assert.True(t, pq.PushBounded(nb(1), 2))

	sorted := pq.Sorted()
	assert.Equal(t, []float64{1, 4}, distances(sorted))

	// A NaN never evicts a finite candidate.
	assert.False(t, pq.PushBounded(nb(math.NaN()), 2))
}

func TestPopItemOrder(t *testing.T) {
	pq := NewMin(4)
	pq.PushItem(nb(3))
	pq.PushItem(nb(1))
	pq.PushItem(nb(2))

	var got []float64
	for {
		n, ok := pq.PopItem()
		if !ok {
			break
		}
		got = append(got, n.Distance)
	}
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestReset(t *testing.T) {
	pq := NewMax(2)
	pq.PushItem(nb(1))
	pq.Reset()
	assert.Equal(t, 0, pq.Len())
	_, ok := pq.TopItem()
	assert.False(t, ok)
}

func TestSortAscendingStable(t *testing.T) {
	ns := []model.Neighbor{
		{Point: model.Point{0, 2}, Distance: 2},
		{Point: model.Point{1, 1}, Distance: 1},
		{Point: model.Point{2, 2}, Distance: 2},
		{Point: model.Point{9, 9}, Distance: math.NaN()},
		{Point: model.Point{0, 0}, Distance: 0},
	}
	SortAscending(ns)
	assert.Equal(t, model.Point{0, 0}, ns[0].Point)
	assert.Equal(t, model.Point{1, 1}, ns[1].Point)
	assert.Equal(t, model.Point{0, 2}, ns[2].Point)
	assert.Equal(t, model.Point{2, 2}, ns[3].Point)
	assert.Equal(t, model.Point{9, 9}, ns[4].Point)
}

func distances(ns []model.Neighbor) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Distance
	}
	return out
}
