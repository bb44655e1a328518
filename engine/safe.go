package engine

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicError is a panic recovered from a partition scan or an executor task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("engine: panic: %v", e.Value)
}

// Is reports whether target is ErrPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}

// safeScan runs fn and converts a panic into a *PanicError.
func safeScan(fn func() (CandidateSet, int, error)) (set CandidateSet, scanned int, err error) {
	defer func() {
		if r := recover(); r != nil {
			set, scanned, err = nil, 0, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// safeTask runs task(ctx, i), converting a panic into a *PanicError so the
// executor still receives a result for index i.
func safeTask(ctx context.Context, task Task, i int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return task(ctx, i)
}
