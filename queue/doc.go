// Package queue provides a value-based binary heap of search neighbors.
//
// A max-heap keeps the farthest retained neighbor at the root, which makes
// it the natural structure for bounded nearest-neighbor selection: once the
// heap holds K items, a new neighbor replaces the root only if it is
// strictly closer.
//
//	pq := queue.NewMax(k)
//	for _, n := range neighbors {
//	    pq.PushBounded(n, k)
//	}
//	nearest := pq.Sorted() // ascending by distance
package queue
