package distance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/geoknn/model"
	"github.com/paulmach/orb/planar"
)

// Euclidean calculates sqrt((x1-x2)^2 + (y1-y2)^2) in float64.
// NaN coordinates propagate to a NaN distance.
func Euclidean(a, b model.Point) float64 {
	return planar.Distance(a, b)
}

// SquaredEuclidean calculates the squared Euclidean distance between a and b.
func SquaredEuclidean(a, b model.Point) float64 {
	return planar.DistanceSquared(a, b)
}

// ErrUnknownMetric is returned for a metric name or value with no distance
// function.
var ErrUnknownMetric = errors.New("distance: unknown metric")

// Metric represents the distance metric used for point comparison.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricSquaredEuclidean
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricSquaredEuclidean:
		return "SquaredEuclidean"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric returns the metric with the given (case-insensitive) name.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "", "euclidean", "l2":
		return MetricEuclidean, nil
	case "squaredeuclidean", "squared", "sql2":
		return MetricSquaredEuclidean, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b model.Point) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricSquaredEuclidean:
		return SquaredEuclidean, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMetric, m)
	}
}
