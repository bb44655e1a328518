package queue

import (
	"slices"

	"github.com/hupe1980/geoknn/model"
)

// PriorityQueue is a binary heap of neighbors held by value.
// Ordering uses model.Neighbor.Key, so NaN distances sort as +Inf.
type PriorityQueue struct {
	isMaxHeap bool // true = max heap, false = min heap
	items     []model.Neighbor
}

// NewMin initializes a new priority queue with minimum priority.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: false,
		items:     make([]model.Neighbor, 0, max(capacity, 0)),
	}
}

// NewMax initializes a new priority queue with maximum priority.
func NewMax(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: true,
		items:     make([]model.Neighbor, 0, max(capacity, 0)),
	}
}

// IsMaxHeap reports whether the root holds the largest distance.
func (pq *PriorityQueue) IsMaxHeap() bool { return pq.isMaxHeap }

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (model.Neighbor, bool) {
	if len(pq.items) == 0 {
		return model.Neighbor{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item model.Neighbor) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushBounded inserts an item into a heap bounded by capacity and reports
// whether the item was retained.
//
// While the heap holds fewer than capacity items the item is inserted
// unconditionally. Once full, the root (the worst retained candidate) is
// replaced only if the item is strictly better: strictly closer for a max
// heap, strictly farther for a min heap. Ties keep the earlier item.
func (pq *PriorityQueue) PushBounded(item model.Neighbor, capacity int) bool {
	if capacity <= 0 {
		return false
	}
	if len(pq.items) < capacity {
		pq.PushItem(item)
		return true
	}

	top := pq.items[0]
	if pq.isMaxHeap {
		if item.Key() >= top.Key() {
			return false
		}
	} else if item.Key() <= top.Key() {
		return false
	}
	pq.items[0] = item
	pq.siftDown(0)
	return true
}

// PopItem removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue) PopItem() (model.Neighbor, bool) {
	n := len(pq.items)
	if n == 0 {
		return model.Neighbor{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = model.Neighbor{}
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// Items returns the heap contents in heap order. The slice is owned by the
// queue and is only valid until the next mutation.
func (pq *PriorityQueue) Items() []model.Neighbor {
	return pq.items
}

// Sorted returns a copy of the contents ordered ascending by distance.
// The queue is left unchanged.
func (pq *PriorityQueue) Sorted() []model.Neighbor {
	out := slices.Clone(pq.items)
	SortAscending(out)
	return out
}

// Reset clears the priority queue.
func (pq *PriorityQueue) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Key() > pq.items[j].Key()
	}
	return pq.items[i].Key() < pq.items[j].Key()
}

func (pq *PriorityQueue) swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.swap(i, p)
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.swap(i, best)
		i = best
	}
}

// SortAscending sorts ns by distance, NaN last. The sort is stable so equal
// distances keep their input order.
func SortAscending(ns []model.Neighbor) {
	slices.SortStableFunc(ns, func(a, b model.Neighbor) int {
		ka, kb := a.Key(), b.Key()
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	})
}
