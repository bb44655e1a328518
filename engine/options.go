package engine

import (
	"log/slog"

	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/resource"
)

// Option configures a Selector.
type Option func(*Selector)

// WithExecutor sets the executor that runs phase-1 scans.
// The Selector takes ownership and closes it in Close.
func WithExecutor(e Executor) Option {
	return func(s *Selector) {
		if e != nil {
			s.exec = e
		}
	}
}

// WithRetryPolicy sets the policy for re-scanning failed partitions.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Selector) {
		s.retry = p
	}
}

// WithResourceController sets the controller used to budget candidate
// memory and concurrent scans.
func WithResourceController(rc *resource.Controller) Option {
	return func(s *Selector) {
		s.rc = rc
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsObserver sets the observer notified of scans, retries and merges.
func WithMetricsObserver(o MetricsObserver) Option {
	return func(s *Selector) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithDistance sets the distance function. Defaults to Euclidean.
func WithDistance(fn distance.Func) Option {
	return func(s *Selector) {
		if fn != nil {
			s.dist = fn
		}
	}
}
