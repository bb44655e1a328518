// Package engine implements distributed top-K nearest-neighbor selection
// over horizontally partitioned point data.
//
// # Two-Phase Selection
//
// Phase 1 (LocalTopK) runs once per partition, independently and in any
// order. It streams the partition's points through a bounded max-heap of
// capacity K keyed by distance to the query: the root is always the
// farthest retained candidate and is evicted only by a strictly closer
// point. Each partition therefore contributes at most K candidates and
// never buffers more than that.
//
// Phase 2 (Merge) runs once, after every phase-1 result is available, and
// selects the K globally nearest candidates in ascending distance order.
// The global K nearest are always a subset of the union of the
// partition-local K nearest, so the merge is exact.
//
// # Orchestration
//
// Selector fans phase 1 out over an Executor (a fixed WorkerPool or an
// errgroup), waits for all partitions, and merges:
//
//	sel := engine.NewSelector(engine.WithExecutor(engine.NewPoolExecutor(8)))
//	defer sel.Close()
//	nearest, err := sel.NearestK(ctx, query, k, partitions)
//
// A failed partition is recomputed from its original input under a
// RetryPolicy; only the failed partitions are re-run. K <= 0 fails with
// ErrInvalidK before any partition is touched.
package engine
