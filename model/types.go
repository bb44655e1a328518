package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Point is an immutable pair of float64 coordinates (X, Y).
type Point = orb.Point

// Bound is an axis-aligned bounding rectangle.
type Bound = orb.Bound

// Neighbor is a candidate point paired with its distance to a query.
type Neighbor struct {
	Point    Point
	Distance float64
}

// String returns a string representation of the Neighbor.
func (n Neighbor) String() string {
	return fmt.Sprintf("(%g, %g)@%g", n.Point.X(), n.Point.Y(), n.Distance)
}

// Key returns the ordering key of the neighbor. NaN distances order as +Inf
// so that undefined distances are always the farthest candidates.
func (n Neighbor) Key() float64 {
	if math.IsNaN(n.Distance) {
		return math.Inf(1)
	}
	return n.Distance
}

// Points extracts the points of ns in order.
func Points(ns []Neighbor) []Point {
	if len(ns) == 0 {
		return []Point{}
	}
	out := make([]Point, len(ns))
	for i, n := range ns {
		out[i] = n.Point
	}
	return out
}

// BoundOf returns the bounding rectangle of pts. The zero Bound is returned
// for an empty slice.
func BoundOf(pts []Point) Bound {
	if len(pts) == 0 {
		return Bound{}
	}
	return orb.MultiPoint(pts).Bound()
}
