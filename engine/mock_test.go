package engine

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"
	"time"

	"github.com/hupe1980/geoknn/model"
)

// mockPartition is a test double for Partition that can simulate slow and
// failing scans.
type mockPartition struct {
	name     string
	points   []model.Point
	delay    time.Duration
	failures int32 // number of initial scans that fail with err
	err      error
	scans    atomic.Int32
}

func (m *mockPartition) Name() string { return m.name }

func (m *mockPartition) Points(ctx context.Context) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		n := m.scans.Add(1)

		if m.delay > 0 {
			timer := time.NewTimer(m.delay)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
				yield(model.Point{}, ctx.Err())
				return
			}
		}

		if n <= m.failures {
			yield(model.Point{}, m.err)
			return
		}

		for _, p := range m.points {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func partitionsOf(sets ...[]model.Point) []Partition {
	parts := make([]Partition, len(sets))
	for i, pts := range sets {
		parts[i] = &mockPartition{name: fmt.Sprintf("p%d", i), points: pts}
	}
	return parts
}

// recordingObserver collects observer callbacks.
type recordingObserver struct {
	scans   atomic.Int32
	failed  atomic.Int32
	rounds  atomic.Int32
	merges  atomic.Int32
	results atomic.Int32
}

func (o *recordingObserver) OnPartitionScan(stats PartitionStats) {
	o.scans.Add(1)
	if stats.Err != nil {
		o.failed.Add(1)
	}
}

func (o *recordingObserver) OnRetryRound(round int, pending int) { o.rounds.Add(1) }

func (o *recordingObserver) OnMerge(duration time.Duration, candidates int, results int) {
	o.merges.Add(1)
	o.results.Store(int32(results))
}

type panicPartition struct {
	scans atomic.Int32
}

func (p *panicPartition) Name() string { return "panicky" }

func (p *panicPartition) Points(ctx context.Context) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		p.scans.Add(1)
		panic("corrupt state")
	}
}
