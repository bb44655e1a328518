package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimit is returned when a single reservation exceeds the hard limit.
var ErrMemoryLimit = errors.New("resource: reservation exceeds memory limit")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for candidate buffers held by
	// in-flight partition scans. If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentScans caps partition scans running at once across all
	// searches sharing the controller. If 0, unlimited.
	MaxConcurrentScans int64

	// IOLimitBytesPerSec is the maximum read throughput from blob storage.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages resources shared by concurrent searches.
// A nil *Controller is valid and imposes no limits.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	scanSem *semaphore.Weighted // nil if unlimited
	scans   atomic.Int64

	// IO
	ioLimiter *rate.Limiter
	ioBytes   atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.MaxConcurrentScans > 0 {
		c.scanSem = semaphore.NewWeighted(cfg.MaxConcurrentScans)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the limits the controller was created with.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves memory.
// If a hard limit is configured and usage would exceed it,
// this blocks until memory is available or ctx is canceled.
// A reservation larger than the limit itself fails with ErrMemoryLimit.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			return fmt.Errorf("%w: %d > %d bytes", ErrMemoryLimit, bytes, c.cfg.MemoryLimitBytes)
		}
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireScan reserves a partition scan slot.
// Blocks if all slots are busy.
func (c *Controller) AcquireScan(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.scanSem != nil {
		if err := c.scanSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.scans.Add(1)
	return nil
}

// TryAcquireScan attempts to reserve a scan slot without blocking.
func (c *Controller) TryAcquireScan() bool {
	if c == nil {
		return true
	}
	if c.scanSem != nil && !c.scanSem.TryAcquire(1) {
		return false
	}
	c.scans.Add(1)
	return true
}

// ReleaseScan releases a scan slot.
func (c *Controller) ReleaseScan() {
	if c == nil {
		return
	}
	if c.scanSem != nil {
		c.scanSem.Release(1)
	}
	c.scans.Add(-1)
}

// ActiveScans returns the number of scan slots currently held.
func (c *Controller) ActiveScans() int64 {
	if c == nil {
		return 0
	}
	return c.scans.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	c.ioBytes.Add(int64(bytes))
	if c.ioLimiter == nil {
		return nil
	}
	// WaitN rejects requests above the burst size; split them.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// IOBytes returns the total number of bytes accounted through AcquireIO.
func (c *Controller) IOBytes() int64 {
	if c == nil {
		return 0
	}
	return c.ioBytes.Load()
}
