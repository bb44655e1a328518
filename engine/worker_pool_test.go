package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/geoknn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testScanResult struct {
	idx int
	set CandidateSet
	err error
}

func scanMock(ctx context.Context, p *mockPartition, k int) (CandidateSet, error) {
	set, _, err := LocalTopK(ctx, model.Point{0, 0}, k, p.Points(ctx), nil)
	return set, err
}

// TestWorkerPoolBasic verifies basic worker pool functionality.
func TestWorkerPoolBasic(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	part := &mockPartition{points: []model.Point{{1, 0}, {2, 0}, {3, 0}}}
	resultsCh := make(chan testScanResult, 1)

	ctx := context.Background()
	err := pool.Submit(ctx, func() {
		set, err := scanMock(ctx, part, 2)
		resultsCh <- testScanResult{idx: 0, set: set, err: err}
	})
	require.NoError(t, err)

	select {
	case result := <-resultsCh:
		require.NoError(t, result.err)
		assert.Len(t, result.set, 2)
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for result")
	}

	assert.Equal(t, int32(1), part.scans.Load())
}

// TestWorkerPoolConcurrency verifies concurrent work submission.
func TestWorkerPoolConcurrency(t *testing.T) {
	const numWorkers = 4
	const numRequests = 100

	pool := NewWorkerPool(numWorkers)
	defer pool.Close()
	assert.Equal(t, numWorkers, pool.Size())

	part := &mockPartition{points: []model.Point{{1, 1}}, delay: time.Millisecond}
	resultsCh := make(chan testScanResult, numRequests)

	var wg sync.WaitGroup
	wg.Add(numRequests)

	for i := 0; i < numRequests; i++ {
		go func(idx int) {
			defer wg.Done()

			ctx := context.Background()
			if err := pool.Submit(ctx, func() {
				set, err := scanMock(ctx, part, 1)
				resultsCh <- testScanResult{idx: idx, set: set, err: err}
			}); err != nil {
				t.Errorf("Submit %d failed: %v", idx, err)
			}
		}(i)
	}

	wg.Wait()

	successCount := 0
	for i := 0; i < numRequests; i++ {
		select {
		case result := <-resultsCh:
			if result.err == nil {
				successCount++
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Timeout waiting for results")
		}
	}

	assert.Equal(t, numRequests, successCount)
	assert.Equal(t, int32(numRequests), part.scans.Load())
}

// TestWorkerPoolContextCancellation verifies context cancellation handling.
func TestWorkerPoolContextCancellation(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	part := &mockPartition{points: []model.Point{{1, 1}}, delay: 100 * time.Millisecond}
	resultsCh := make(chan testScanResult, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := pool.Submit(ctx, func() {
		set, err := scanMock(ctx, part, 1)
		resultsCh <- testScanResult{set: set, err: err}
	})
	require.NoError(t, err)

	select {
	case result := <-resultsCh:
		assert.True(t, errors.Is(result.err, context.DeadlineExceeded), "got %v", result.err)
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for cancelled scan")
	}
}

// TestWorkerPoolShutdown verifies graceful shutdown.
func TestWorkerPoolShutdown(t *testing.T) {
	pool := NewWorkerPool(2)

	part := &mockPartition{points: []model.Point{{1, 1}}, delay: 10 * time.Millisecond}
	resultsCh := make(chan testScanResult, 10)

	for i := 0; i < 5; i++ {
		idx := i
		ctx := context.Background()
		require.NoError(t, pool.Submit(ctx, func() {
			set, err := scanMock(ctx, part, 1)
			resultsCh <- testScanResult{idx: idx, set: set, err: err}
		}))
	}

	// Close should wait for in-flight work to complete
	start := time.Now()
	pool.Close()
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Len(t, resultsCh, 5)

	err := pool.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrClosed)

	// Close is idempotent.
	pool.Close()
}

// TestWorkerPoolBackpressure verifies backpressure when the work channel is full.
func TestWorkerPoolBackpressure(t *testing.T) {
	const numWorkers = 2
	pool := NewWorkerPool(numWorkers)
	defer pool.Close()

	block := make(chan struct{})
	defer close(block)

	// Occupy every worker and fill the buffer (2*numWorkers).
	for i := 0; i < numWorkers*3; i++ {
		require.NoError(t, pool.Submit(context.Background(), func() { <-block }))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPoolSurvivesPanic(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	require.NoError(t, pool.Submit(context.Background(), func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}

	require.Eventually(t, func() bool {
		return pool.Stats().Completed == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), pool.Stats().Panics)
}

func TestWorkerPoolStats(t *testing.T) {
	pool := NewWorkerPool(2)

	block := make(chan struct{})
	started := make(chan struct{}, 2)
	for range 2 {
		require.NoError(t, pool.Submit(context.Background(), func() {
			started <- struct{}{}
			<-block
		}))
	}
	<-started
	<-started
	require.NoError(t, pool.Submit(context.Background(), func() {}))

	stats := pool.Stats()
	assert.Equal(t, 2, stats.Workers)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, 1, stats.Queued)
	assert.Equal(t, int64(0), stats.Completed)

	close(block)
	pool.Close()

	stats = pool.Stats()
	assert.Equal(t, int64(0), stats.Active)
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(0), stats.Panics)
}
