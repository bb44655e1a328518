package geoknn

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/partition"
)

// Point is a 2-D point.
type Point = model.Point

// Neighbor is a result point with its distance to the query.
type Neighbor = model.Neighbor

// Partition is an independent slice of a dataset.
type Partition = engine.Partition

// NearestK returns the k points of partitions closest to query, ascending by
// distance (Euclidean unless WithMetric says otherwise). Fewer than k points
// are returned if the partitions hold fewer in total.
func NearestK(ctx context.Context, query Point, k int, partitions []Partition, optFns ...Option) ([]Neighbor, error) {
	o := applyOptions(optFns)
	if o.err != nil {
		return nil, o.err
	}
	sel := o.newSelector()
	defer sel.Close()

	return search(ctx, o, sel, query, k, partitions)
}

func search(ctx context.Context, o options, sel *engine.Selector, query Point, k int, partitions []Partition) ([]Neighbor, error) {
	start := time.Now()
	res, err := sel.NearestK(ctx, query, k, partitions)
	d := time.Since(start)

	o.metricsCollector.RecordSearch(k, len(partitions), len(res), d, err)
	o.logger.LogSearch(ctx, k, len(partitions), len(res), d, err)

	return res, translateError(err)
}

// Dataset is a named collection of partitions in a blob store.
//
// A Dataset is safe for concurrent searches.
type Dataset struct {
	name   string
	parts  []Partition
	opts   options
	sel    *engine.Selector
	closed atomic.Bool
}

// Open resolves the partitions of dataset from the catalog, falling back to
// listing the blobs under "<dataset>/".
func Open(ctx context.Context, store blobstore.BlobStore, dataset string, optFns ...Option) (*Dataset, error) {
	o := applyOptions(optFns)
	if o.err != nil {
		return nil, o.err
	}
	logger := o.logger.WithDataset(dataset)

	parts, err := partition.Discover(ctx, store, dataset, partition.DiscoverOptions{
		Catalog:          o.catalogFor(store),
		Resources:        o.resources,
		ParquetBatchSize: o.parquetBatchSize,
	})
	logger.LogOpen(ctx, dataset, len(parts), err)
	if err != nil {
		return nil, translateError(err)
	}

	return NewDataset(dataset, parts, optFns...), nil
}

// NewDataset wraps existing partitions.
func NewDataset(name string, parts []Partition, optFns ...Option) *Dataset {
	o := applyOptions(optFns)
	o.logger = o.logger.WithDataset(name)
	return &Dataset{
		name:  name,
		parts: parts,
		opts:  o,
		sel:   o.newSelector(),
	}
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Partitions returns the dataset's partitions.
func (d *Dataset) Partitions() []Partition { return d.parts }

// Search returns the k nearest points to query.
func (d *Dataset) Search(ctx context.Context, query Point, k int) ([]Neighbor, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if d.opts.err != nil {
		return nil, d.opts.err
	}
	return search(ctx, d.opts, d.sel, query, k, d.parts)
}

// NearestPoints is Search without distances.
func (d *Dataset) NearestPoints(ctx context.Context, query Point, k int) ([]Point, error) {
	res, err := d.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	return model.Points(res), nil
}

// Close releases the dataset's executor. It is safe to call more than once.
func (d *Dataset) Close() error {
	if d == nil || !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	return d.sel.Close()
}

// Write splits pts into partitions, stores them and records the dataset in
// the catalog.
func Write(ctx context.Context, store blobstore.BlobStore, spec partition.DatasetSpec, pts []Point, optFns ...Option) ([]catalog.Entry, error) {
	o := applyOptions(optFns)
	entries, err := partition.WriteDataset(ctx, store, o.catalogFor(store), spec, pts)
	o.logger.LogWrite(ctx, spec.Dataset, len(entries), len(pts), err)
	return entries, translateError(err)
}
