package engine

import (
	"context"
	"iter"
	"slices"

	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/queue"
)

const (
	// ctxCheckInterval is the number of points scanned between context checks.
	ctxCheckInterval = 4096

	// maxInitialHeap caps the up-front heap allocation for large K.
	maxInitialHeap = 1024
)

// LocalTopK runs phase 1 over a stream of points: it returns the (at most)
// k points nearest to query, unordered, and the number of points read.
//
// The stream is consumed through a bounded max-heap of capacity k. Until
// the heap is full every point is inserted; afterwards a point replaces the
// current farthest candidate only if it is strictly closer. A nil dist
// uses Euclidean distance.
func LocalTopK(ctx context.Context, query model.Point, k int, points iter.Seq2[model.Point, error], dist distance.Func) (CandidateSet, int, error) {
	if k <= 0 {
		return nil, 0, ErrInvalidK
	}
	if dist == nil {
		dist = distance.Euclidean
	}

	pq := queue.NewMax(min(k, maxInitialHeap))
	scanned := 0

	for p, err := range points {
		if err != nil {
			return nil, scanned, err
		}

		pq.PushBounded(model.Neighbor{Point: p, Distance: dist(query, p)}, k)
		scanned++

		if scanned%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, scanned, err
			}
		}
	}

	return CandidateSet(slices.Clone(pq.Items())), scanned, nil
}

// SelectTopK is LocalTopK over an in-memory slice.
func SelectTopK(query model.Point, k int, points []model.Point, dist distance.Func) (CandidateSet, error) {
	set, _, err := LocalTopK(context.Background(), query, k, SliceSeq(points), dist)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Merge runs phase 2: it returns the k nearest neighbors across all
// candidate sets in ascending distance order. The result holds
// min(k, total candidates) entries and is never nil.
//
// Equal distances keep the order in which the sets (and the candidates
// within them) were passed.
func Merge(k int, sets ...CandidateSet) []model.Neighbor {
	if k <= 0 {
		return []model.Neighbor{}
	}

	total := 0
	for _, s := range sets {
		total += len(s)
	}

	all := make([]model.Neighbor, 0, total)
	for _, s := range sets {
		all = append(all, s...)
	}

	queue.SortAscending(all)
	if len(all) > k {
		clear(all[k:])
		all = all[:k]
	}
	return all
}
