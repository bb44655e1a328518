// Package testutil provides testing utilities for geoknn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random points, computing exact
// nearest neighbors by brute force, and comparing result sets.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(1000, bound)
//	pts = rng.ClusteredPoints(1000, 8, 0.5, bound)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.ExactTopK(query, pts, k)
package testutil
