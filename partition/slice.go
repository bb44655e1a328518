package partition

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/model"
)

// Slice is a partition held in memory.
type Slice struct {
	ID  string
	Pts []model.Point
}

var _ engine.Partition = (*Slice)(nil)

// NewSlice returns a Slice partition.
func NewSlice(id string, pts []model.Point) *Slice {
	return &Slice{ID: id, Pts: pts}
}

// Name returns the partition ID.
func (s *Slice) Name() string { return s.ID }

// Points yields the slice in order.
func (s *Slice) Points(context.Context) iter.Seq2[model.Point, error] {
	return engine.SliceSeq(s.Pts)
}

// Split distributes points round-robin over n slices named "slice-0000",
// "slice-0001", ... Point i goes to slice i mod n. n < 1 is treated as 1.
func Split(points []model.Point, n int) []*Slice {
	n = max(n, 1)
	out := make([]*Slice, n)
	for i := range out {
		out[i] = &Slice{
			ID:  fmt.Sprintf("slice-%04d", i),
			Pts: make([]model.Point, 0, len(points)/n+1),
		}
	}
	for i, p := range points {
		s := out[i%n]
		s.Pts = append(s.Pts, p)
	}
	return out
}

// Partitions converts typed partitions to the engine interface.
func Partitions[P engine.Partition](ps []P) []engine.Partition {
	out := make([]engine.Partition, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}
