package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorsRunAllTasks(t *testing.T) {
	for name, newExec := range executors() {
		t.Run(name, func(t *testing.T) {
			exec := newExec()
			defer exec.Close()

			const n = 50
			var seen [n]atomic.Bool
			err := exec.Execute(context.Background(), n, func(ctx context.Context, i int) error {
				seen[i].Store(true)
				return nil
			})
			require.NoError(t, err)
			for i := range seen {
				assert.True(t, seen[i].Load(), "task %d did not run", i)
			}
		})
	}
}

func TestExecutorsZeroTasks(t *testing.T) {
	for name, newExec := range executors() {
		t.Run(name, func(t *testing.T) {
			exec := newExec()
			defer exec.Close()
			require.NoError(t, exec.Execute(context.Background(), 0, nil))
		})
	}
}

func TestExecutorsReportTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	for name, newExec := range executors() {
		t.Run(name, func(t *testing.T) {
			exec := newExec()
			defer exec.Close()

			err := exec.Execute(context.Background(), 4, func(ctx context.Context, i int) error {
				if i == 2 {
					return boom
				}
				return nil
			})
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestExecutorsCancelled(t *testing.T) {
	for name, newExec := range executors() {
		t.Run(name, func(t *testing.T) {
			exec := newExec()
			defer exec.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			err := exec.Execute(ctx, 2, func(ctx context.Context, i int) error {
				<-ctx.Done()
				return ctx.Err()
			})
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestPoolExecutorClosed(t *testing.T) {
	exec := NewPoolExecutor(1)
	require.NoError(t, exec.Close())

	err := exec.Execute(context.Background(), 1, func(ctx context.Context, i int) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
}

func TestExecutorsRecoverTaskPanics(t *testing.T) {
	for name, newExec := range executors() {
		t.Run(name, func(t *testing.T) {
			exec := newExec()
			defer exec.Close()

			err := exec.Execute(context.Background(), 3, func(ctx context.Context, i int) error {
				if i == 1 {
					panic("bad task")
				}
				return nil
			})
			require.ErrorIs(t, err, ErrPanic)

			var pe *PanicError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "bad task", pe.Value)

			// The executor stays usable.
			require.NoError(t, exec.Execute(context.Background(), 2, func(ctx context.Context, i int) error {
				return nil
			}))
		})
	}
}
