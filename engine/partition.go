package engine

import (
	"context"
	"iter"
	"time"

	"github.com/hupe1980/geoknn/model"
)

// Partition is an independent slice of the dataset.
//
// Points must yield the partition's points in a stable order every time it
// is called, so a failed scan can be recomputed from the original input. A
// non-nil error aborts the scan of that partition.
type Partition interface {
	Name() string
	Points(ctx context.Context) iter.Seq2[model.Point, error]
}

// CandidateSet is the phase-1 result of one partition: at most K neighbors
// in no particular order.
type CandidateSet []model.Neighbor

// PartitionStats describes one phase-1 scan.
type PartitionStats struct {
	Index    int
	Name     string
	Attempt  int
	Scanned  int // Points read from the partition
	Kept     int // Candidates retained
	Duration time.Duration
	Err      error
}

// SliceSeq adapts an in-memory slice to a point stream.
func SliceSeq(points []model.Point) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		for _, p := range points {
			if !yield(p, nil) {
				return
			}
		}
	}
}
