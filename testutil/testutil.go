package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/queue"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Point returns a point drawn uniformly from b.
func (r *RNG) Point(b model.Bound) model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pointLocked(b)
}

func (r *RNG) pointLocked(b model.Bound) model.Point {
	return model.Point{
		b.Min.X() + r.rand.Float64()*(b.Max.X()-b.Min.X()),
		b.Min.Y() + r.rand.Float64()*(b.Max.Y()-b.Min.Y()),
	}
}

// UniformPoints returns num points drawn uniformly from b.
func (r *RNG) UniformPoints(num int, b model.Bound) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]model.Point, num)
	for i := range pts {
		pts[i] = r.pointLocked(b)
	}
	return pts
}

// ClusteredPoints returns num points scattered with Gaussian noise of the
// given spread around clusters centers drawn uniformly from b.
func (r *RNG) ClusteredPoints(num, clusters int, spread float64, b model.Bound) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	if clusters <= 0 {
		clusters = 1
	}
	centers := make([]model.Point, clusters)
	for i := range centers {
		centers[i] = r.pointLocked(b)
	}

	pts := make([]model.Point, num)
	for i := range pts {
		c := centers[i%clusters]
		pts[i] = model.Point{
			c.X() + r.rand.NormFloat64()*spread,
			c.Y() + r.rand.NormFloat64()*spread,
		}
	}
	return pts
}

// GridPoints returns the n*n integer lattice points (i, j), 0 <= i, j < n.
// Lattices produce many equal distances, which exercises tie handling.
func GridPoints(n int) []model.Point {
	pts := make([]model.Point, 0, n*n)
	for i := range n {
		for j := range n {
			pts = append(pts, model.Point{float64(i), float64(j)})
		}
	}
	return pts
}

// ExactTopK computes the k nearest points to query by brute force, in
// ascending Euclidean distance.
func ExactTopK(query model.Point, pts []model.Point, k int) []model.Neighbor {
	all := make([]model.Neighbor, len(pts))
	for i, p := range pts {
		all[i] = model.Neighbor{Point: p, Distance: distance.Euclidean(query, p)}
	}
	queue.SortAscending(all)
	if k < len(all) {
		all = all[:k]
	}
	return all
}

// Distances returns the distances of ns in order.
func Distances(ns []model.Neighbor) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = n.Distance
	}
	return out
}

// Shuffle returns a shuffled copy of pts.
func (r *RNG) Shuffle(pts []model.Point) []model.Point {
	out := make([]model.Point, len(pts))
	copy(out, pts)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
