// Package model defines core types used throughout geoknn.
//
// # Geometry
//
//   - Point: 2-D coordinate pair (alias of orb.Point)
//   - Bound: axis-aligned rectangle (alias of orb.Bound)
//
// # Search Results
//
//   - Neighbor: a point together with its distance to the query
//
// Points are plain values. They are copied into every search task and are
// never mutated by the engine.
package model
