package geoknn

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/geoknn/engine"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus (see package metrics/prometheus).
type MetricsCollector interface {
	// RecordSearch is called after each search.
	// err is nil if successful.
	RecordSearch(k, partitions, results int, duration time.Duration, err error)

	// RecordPartition is called after each phase-1 scan attempt.
	RecordPartition(name string, scanned int, duration time.Duration, err error)

	// RecordRetry is called before every retry round.
	RecordRetry(round, pending int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordPartition(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRetry(int, int)                              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	ResultCount      atomic.Int64
	PartitionScans   atomic.Int64
	PartitionErrors  atomic.Int64
	PointsScanned    atomic.Int64
	RetryRounds      atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k, partitions, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.ResultCount.Add(int64(results))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(name string, scanned int, duration time.Duration, err error) {
	b.PartitionScans.Add(1)
	b.PointsScanned.Add(int64(scanned))
	if err != nil {
		b.PartitionErrors.Add(1)
	}
}

// RecordRetry implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRetry(round, pending int) {
	b.RetryRounds.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		ResultCount:     b.ResultCount.Load(),
		PartitionScans:  b.PartitionScans.Load(),
		PartitionErrors: b.PartitionErrors.Load(),
		PointsScanned:   b.PointsScanned.Load(),
		RetryRounds:     b.RetryRounds.Load(),
	}
	if s.SearchCount > 0 {
		s.SearchAvgNanos = b.SearchTotalNanos.Load() / s.SearchCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount     int64
	SearchErrors    int64
	SearchAvgNanos  int64
	ResultCount     int64
	PartitionScans  int64
	PartitionErrors int64
	PointsScanned   int64
	RetryRounds     int64
}

// observer forwards selector events to a MetricsCollector.
type observer struct {
	mc MetricsCollector
}

var _ engine.MetricsObserver = observer{}

func (o observer) OnPartitionScan(s engine.PartitionStats) {
	o.mc.RecordPartition(s.Name, s.Scanned, s.Duration, s.Err)
}

func (o observer) OnRetryRound(round, pending int) {
	o.mc.RecordRetry(round, pending)
}

func (o observer) OnMerge(time.Duration, int, int) {}
