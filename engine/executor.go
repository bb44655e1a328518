package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of fan-out work. i is the task index in [0, n).
type Task func(ctx context.Context, i int) error

// Executor runs n independent tasks and waits for all of them.
//
// Execute returns only after every started task has finished or ctx is
// done. Task errors are joined; ctx cancellation is returned as ctx.Err().
// A panicking task yields a *PanicError for its index.
type Executor interface {
	Execute(ctx context.Context, n int, task Task) error
	Close() error
}

// PoolExecutor runs tasks on a fixed WorkerPool.
type PoolExecutor struct {
	pool *WorkerPool
}

// NewPoolExecutor creates an executor backed by a pool of numWorkers
// goroutines (GOMAXPROCS if numWorkers <= 0).
func NewPoolExecutor(numWorkers int) *PoolExecutor {
	return &PoolExecutor{pool: NewWorkerPool(numWorkers)}
}

type taskResult struct {
	idx int
	err error
}

// Execute submits every task to the pool and collects the results.
func (e *PoolExecutor) Execute(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return nil
	}

	resultsCh := make(chan taskResult, n)

	for i := 0; i < n; i++ {
		idx := i
		err := e.pool.Submit(ctx, func() {
			resultsCh <- taskResult{idx: idx, err: safeTask(ctx, task, idx)}
		})
		if err != nil {
			return fmt.Errorf("worker pool submit failed: %w", err)
		}
	}

	var errs []error
	for i := 0; i < n; i++ {
		select {
		case res := <-resultsCh:
			if res.err != nil {
				errs = append(errs, fmt.Errorf("task %d: %w", res.idx, res.err))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return errors.Join(errs...)
}

// Close stops the worker pool.
func (e *PoolExecutor) Close() error {
	e.pool.Close()
	return nil
}

// GroupExecutor runs each task in its own goroutine, bounded by an
// errgroup limit.
type GroupExecutor struct {
	limit int
}

// NewGroupExecutor creates an executor running at most limit tasks at once
// (GOMAXPROCS if limit <= 0).
func NewGroupExecutor(limit int) *GroupExecutor {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &GroupExecutor{limit: limit}
}

// Execute runs all tasks and returns the first task error. A task error
// cancels the context passed to the remaining tasks.
func (e *GroupExecutor) Execute(ctx context.Context, n int, task Task) error {
	if n <= 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		idx := i
		g.Go(func() error {
			if err := safeTask(gctx, task, idx); err != nil {
				return fmt.Errorf("task %d: %w", idx, err)
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close is a no-op.
func (e *GroupExecutor) Close() error { return nil }
