package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hupe1980/geoknn/shp"
	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond, Multiplier: 2}

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 10*time.Millisecond, p.Delay(1))
	assert.Equal(t, 20*time.Millisecond, p.Delay(2))
	assert.Equal(t, 40*time.Millisecond, p.Delay(3))
	assert.Equal(t, 50*time.Millisecond, p.Delay(4))
}

func TestRetryPolicyAttempts(t *testing.T) {
	assert.Equal(t, 1, RetryPolicy{}.attempts())
	assert.Equal(t, 1, NoRetry().attempts())
	assert.Equal(t, 3, DefaultRetryPolicy().attempts())
}

func TestRetryPolicyWaitCancelled(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.wait(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Nil", nil, false},
		{"Transient", errors.New("connection reset"), true},
		{"Canceled", context.Canceled, false},
		{"Deadline", fmt.Errorf("scan: %w", context.DeadlineExceeded), false},
		{"InvalidK", ErrInvalidK, false},
		{"Decode", &shp.DecodeError{Need: 16, Have: 3}, false},
		{"UnsupportedShape", fmt.Errorf("%w: Polygon", shp.ErrUnsupportedShape), false},
		{"Panic", &PanicError{Value: "boom"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestPartitionErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := &PartitionError{Index: 3, Name: "p3", Attempts: 2, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "partition 3 (p3) failed after 2 attempt(s)")
}
