package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/geoknn/resource"
	"github.com/hupe1980/geoknn/shp"
)

var (
	// ErrInvalidK is returned when K is not positive.
	ErrInvalidK = errors.New("engine: k must be positive")

	// ErrClosed is returned when work is submitted to a closed executor.
	ErrClosed = errors.New("engine: executor closed")

	// ErrPanic matches a *PanicError.
	ErrPanic = errors.New("engine: partition scan panicked")
)

// PartitionError reports a partition whose phase-1 scan failed after all
// permitted attempts.
type PartitionError struct {
	Index    int    // Position in the partition list
	Name     string // Partition name
	Attempts int    // Number of scans attempted
	Err      error  // Last failure
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d (%s) failed after %d attempt(s): %v", e.Index, e.Name, e.Attempts, e.Err)
}

// Unwrap returns the underlying error.
func (e *PartitionError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a phase-1 failure may succeed when the
// partition is scanned again. Malformed input and cancellation are final.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrInvalidK), errors.Is(err, ErrClosed), errors.Is(err, ErrPanic), errors.Is(err, resource.ErrMemoryLimit):
		return false
	case errors.Is(err, shp.ErrDecode), errors.Is(err, shp.ErrInvalidHeader), errors.Is(err, shp.ErrUnsupportedShape):
		return false
	default:
		return true
	}
}
