package engine

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs submitted functions on a fixed set of goroutines, so
// scans of many partitions share a bounded number of goroutines.
//
// A panicking function is recovered and counted; the worker keeps serving.
type WorkerPool struct {
	size   int
	workCh chan func()
	wg     sync.WaitGroup

	mu     sync.RWMutex // held for reading by senders, for writing by Close
	closed bool

	active    atomic.Int64
	completed atomic.Int64
	panics    atomic.Int64
}

// PoolStats is a snapshot of a WorkerPool.
type PoolStats struct {
	Workers   int   // Number of worker goroutines
	Queued    int   // Functions waiting for a worker
	Active    int64 // Functions currently running
	Completed int64 // Functions finished, including panicked ones
	Panics    int64 // Functions that panicked
}

// NewWorkerPool starts numWorkers goroutines (GOMAXPROCS if numWorkers <= 0).
//
// For partitions in memory GOMAXPROCS is enough; partitions read from object
// storage spend most of their time waiting and benefit from 2-4x that.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	wp := &WorkerPool{
		size:   numWorkers,
		workCh: make(chan func(), numWorkers*2),
	}

	wp.wg.Add(numWorkers)
	for range numWorkers {
		go wp.worker()
	}
	return wp
}

// Size returns the number of worker goroutines.
func (wp *WorkerPool) Size() int { return wp.size }

// Stats returns current counters.
func (wp *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:   wp.size,
		Queued:    len(wp.workCh),
		Active:    wp.active.Load(),
		Completed: wp.completed.Load(),
		Panics:    wp.panics.Load(),
	}
}

// worker runs functions until Close closes the channel and it is drained.
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for fn := range wp.workCh {
		wp.run(fn)
	}
}

func (wp *WorkerPool) run(fn func()) {
	wp.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			wp.panics.Add(1)
		}
		wp.active.Add(-1)
		wp.completed.Add(1)
	}()
	fn()
}

// Submit queues fn and returns without waiting for it to run. It blocks
// while the queue is full.
//
// It fails with ErrClosed once the pool is closed and with ctx.Err() if ctx
// ends before fn is queued.
func (wp *WorkerPool) Submit(ctx context.Context, fn func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrClosed
	}
	select {
	case wp.workCh <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, runs what is already queued and waits for the
// workers to exit. It is safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.workCh)
	wp.mu.Unlock()

	wp.wg.Wait()
}
