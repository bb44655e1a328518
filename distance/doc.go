// Package distance provides planar distance calculations between points.
//
// # Supported Metrics
//
//   - MetricEuclidean: straight-line distance (default)
//   - MetricSquaredEuclidean: squared straight-line distance
//
// Both metrics induce the same nearest-neighbor ordering; the squared form
// skips the square root.
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	fn, err := distance.Provider(distance.MetricEuclidean)
package distance
