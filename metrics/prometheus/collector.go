// Package prometheus exports geoknn metrics to Prometheus.
package prometheus

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/geoknn"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/shp"
)

// Collector implements geoknn.MetricsCollector with Prometheus metrics.
type Collector struct {
	searchesTotal      *prometheus.CounterVec
	searchDuration     prometheus.Histogram
	searchResults      prometheus.Histogram
	partitionScans     *prometheus.CounterVec
	partitionDuration  prometheus.Histogram
	pointsScannedTotal prometheus.Counter
	retryRoundsTotal   prometheus.Counter
	retryPending       prometheus.Histogram
}

var _ geoknn.MetricsCollector = (*Collector)(nil)

// NewCollector registers the geoknn metrics with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		searchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoknn_searches_total",
				Help: "Total number of nearest-neighbor searches by outcome",
			},
			[]string{"status"}, // "ok", "invalid_k", "error"
		),
		searchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geoknn_search_duration_seconds",
				Help:    "Latency of nearest-neighbor searches, both phases included",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
			},
		),
		searchResults: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geoknn_search_results",
				Help:    "Number of neighbors returned per search",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		partitionScans: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoknn_partition_scans_total",
				Help: "Total number of phase-1 partition scan attempts by outcome",
			},
			[]string{"status"}, // "ok", "decode_error", "cancelled", "error"
		),
		partitionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geoknn_partition_scan_duration_seconds",
				Help:    "Latency of single partition scans",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 18),
			},
		),
		pointsScannedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "geoknn_points_scanned_total",
				Help: "Total number of points read by partition scans",
			},
		),
		retryRoundsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "geoknn_retry_rounds_total",
				Help: "Total number of retry rounds",
			},
		),
		retryPending: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geoknn_retry_pending_partitions",
				Help:    "Number of partitions re-scanned per retry round",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

// RecordSearch implements geoknn.MetricsCollector.
func (c *Collector) RecordSearch(k, partitions, results int, duration time.Duration, err error) {
	status := "ok"
	switch {
	case err == nil:
		c.searchResults.Observe(float64(results))
	case errors.Is(err, engine.ErrInvalidK):
		status = "invalid_k"
	default:
		status = "error"
	}
	c.searchesTotal.WithLabelValues(status).Inc()
	c.searchDuration.Observe(duration.Seconds())
}

// RecordPartition implements geoknn.MetricsCollector.
func (c *Collector) RecordPartition(_ string, scanned int, duration time.Duration, err error) {
	c.partitionScans.WithLabelValues(scanStatus(err)).Inc()
	c.partitionDuration.Observe(duration.Seconds())
	c.pointsScannedTotal.Add(float64(scanned))
}

// RecordRetry implements geoknn.MetricsCollector.
func (c *Collector) RecordRetry(_ int, pending int) {
	c.retryRoundsTotal.Inc()
	c.retryPending.Observe(float64(pending))
}

func scanStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shp.ErrDecode), errors.Is(err, shp.ErrInvalidHeader), errors.Is(err, shp.ErrUnsupportedShape):
		return "decode_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
