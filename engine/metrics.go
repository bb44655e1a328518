package engine

import "time"

// MetricsObserver defines the interface for observing selector events.
type MetricsObserver interface {
	// OnPartitionScan is called after every phase-1 scan attempt.
	OnPartitionScan(stats PartitionStats)

	// OnRetryRound is called before a retry round re-scans pending partitions.
	OnRetryRound(round int, pending int)

	// OnMerge is called when phase 2 completes.
	OnMerge(duration time.Duration, candidates int, results int)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnPartitionScan(stats PartitionStats)                        {}
func (o *NoopMetricsObserver) OnRetryRound(round int, pending int)                         {}
func (o *NoopMetricsObserver) OnMerge(duration time.Duration, candidates int, results int) {}
