package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/resource"
)

const neighborSize = int64(unsafe.Sizeof(model.Neighbor{}))

// candidateBytes is the memory reserved for a k-candidate heap, saturating
// at math.MaxInt64.
func candidateBytes(k int) int64 {
	if int64(k) > math.MaxInt64/neighborSize {
		return math.MaxInt64
	}
	return int64(k) * neighborSize
}

// Selector computes the global K nearest points over a set of partitions.
// It is safe for concurrent use.
type Selector struct {
	exec     Executor
	retry    RetryPolicy
	rc       *resource.Controller
	logger   *slog.Logger
	observer MetricsObserver
	dist     distance.Func
	closed   atomic.Bool
}

// NewSelector creates a Selector. By default phase 1 runs on a
// GroupExecutor sized to GOMAXPROCS with DefaultRetryPolicy.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		retry:    DefaultRetryPolicy(),
		logger:   slog.New(slog.DiscardHandler),
		observer: &NoopMetricsObserver{},
		dist:     distance.Euclidean,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exec == nil {
		s.exec = NewGroupExecutor(0)
	}
	return s
}

// scanState is the per-partition bookkeeping of one NearestK call. Each
// element is written only by the task scanning that partition.
type scanState struct {
	set      CandidateSet
	attempts int
	err      error
}

// NearestK returns the k points nearest to query across partitions, in
// ascending distance order. The result holds min(k, total points) entries;
// an empty dataset yields an empty result and no error.
//
// K <= 0 fails with ErrInvalidK before any partition is touched. A
// partition that cannot be scanned within the retry policy fails the
// search with a *PartitionError.
func (s *Selector) NearestK(ctx context.Context, query model.Point, k int, partitions []Partition) ([]model.Neighbor, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if len(partitions) == 0 {
		return []model.Neighbor{}, nil
	}

	states := make([]scanState, len(partitions))
	pending := roaring.New()
	pending.AddRange(0, uint64(len(partitions)))

	for round := 0; ; round++ {
		if round > 0 {
			s.observer.OnRetryRound(round, int(pending.GetCardinality()))
			s.logger.WarnContext(ctx, "retrying partitions",
				slog.Int("round", round),
				slog.Uint64("pending", pending.GetCardinality()),
			)
			if err := s.retry.wait(ctx, round); err != nil {
				return nil, err
			}
		}

		idx := pending.ToArray()
		err := s.exec.Execute(ctx, len(idx), func(ctx context.Context, i int) error {
			p := int(idx[i])
			s.scan(ctx, query, k, p, partitions[p], &states[p])
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("search cancelled: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("search cancelled: %w", err)
		}

		next := roaring.New()
		var failed []error
		for _, i := range idx {
			st := &states[i]
			if st.err == nil {
				continue
			}
			if st.attempts >= s.retry.attempts() || !s.retry.retryable(st.err) {
				failed = append(failed, &PartitionError{
					Index:    int(i),
					Name:     partitions[i].Name(),
					Attempts: st.attempts,
					Err:      st.err,
				})
				continue
			}
			next.Add(i)
		}

		if len(failed) > 0 {
			return nil, errors.Join(failed...)
		}
		if next.IsEmpty() {
			break
		}
		pending = next
	}

	start := time.Now()
	sets := make([]CandidateSet, len(states))
	candidates := 0
	for i := range states {
		sets[i] = states[i].set
		candidates += len(states[i].set)
	}
	results := Merge(k, sets...)
	s.observer.OnMerge(time.Since(start), candidates, len(results))

	return results, nil
}

// scan runs one phase-1 attempt for partition p and records the outcome in st.
func (s *Selector) scan(ctx context.Context, query model.Point, k, p int, part Partition, st *scanState) {
	st.attempts++
	start := time.Now()

	set, scanned, err := safeScan(func() (CandidateSet, int, error) {
		return s.scanPartition(ctx, query, k, part)
	})
	st.set, st.err = set, err

	stats := PartitionStats{
		Index:    p,
		Name:     part.Name(),
		Attempt:  st.attempts,
		Scanned:  scanned,
		Kept:     len(set),
		Duration: time.Since(start),
		Err:      err,
	}
	s.observer.OnPartitionScan(stats)

	if err != nil {
		if pe := (*PanicError)(nil); errors.As(err, &pe) {
			s.logger.ErrorContext(ctx, "partition scan panicked",
				slog.Int("partition", p),
				slog.String("name", stats.Name),
				slog.Any("panic", pe.Value),
				slog.String("stack", string(pe.Stack)),
			)
			return
		}
		s.logger.DebugContext(ctx, "partition scan failed",
			slog.Int("partition", p),
			slog.String("name", stats.Name),
			slog.Int("attempt", stats.Attempt),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.DebugContext(ctx, "partition scanned",
		slog.Int("partition", p),
		slog.String("name", stats.Name),
		slog.Int("scanned", scanned),
		slog.Int("kept", len(set)),
		slog.Duration("duration", stats.Duration),
	)
}

func (s *Selector) scanPartition(ctx context.Context, query model.Point, k int, part Partition) (CandidateSet, int, error) {
	if err := s.rc.AcquireScan(ctx); err != nil {
		return nil, 0, err
	}
	defer s.rc.ReleaseScan()

	reserve := candidateBytes(k)
	if err := s.rc.AcquireMemory(ctx, reserve); err != nil {
		return nil, 0, err
	}
	defer s.rc.ReleaseMemory(reserve)

	return LocalTopK(ctx, query, k, part.Points(ctx), s.dist)
}

// Close releases the executor. Subsequent searches fail with ErrClosed.
func (s *Selector) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.exec.Close()
}
