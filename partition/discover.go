package partition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/resource"
)

// ErrNoPartitions is returned by Discover when a dataset has neither a
// catalog nor any recognizable blobs.
var ErrNoPartitions = errors.New("partition: dataset has no partitions")

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	// Catalog is consulted first. May be nil.
	Catalog catalog.Catalog
	// Resources throttles blob reads. May be nil.
	Resources *resource.Controller
	// ParquetBatchSize overrides DefaultParquetBatchSize.
	ParquetBatchSize int
}

// Open returns the partition for a blob, dispatching on its extension.
func Open(store blobstore.BlobStore, name string, opts DiscoverOptions) (engine.Partition, error) {
	f, _, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	if f == FormatParquet {
		p := NewParquet(store, name)
		if opts.ParquetBatchSize > 0 {
			p.BatchSize = opts.ParquetBatchSize
		}
		return p, nil
	}
	return NewBlob(store, name, opts.Resources)
}

// Discover returns the partitions of dataset. Catalog entries are used when
// the catalog knows the dataset; otherwise every blob under "<dataset>/"
// with a known extension becomes a partition, in name order.
func Discover(ctx context.Context, store blobstore.BlobStore, dataset string, opts DiscoverOptions) ([]engine.Partition, error) {
	names, err := discoverNames(ctx, store, dataset, opts.Catalog)
	if err != nil {
		return nil, err
	}

	parts := make([]engine.Partition, 0, len(names))
	for _, name := range names {
		p, err := Open(store, name, opts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPartitions, dataset)
	}
	return parts, nil
}

func discoverNames(ctx context.Context, store blobstore.BlobStore, dataset string, cat catalog.Catalog) ([]string, error) {
	if cat != nil {
		entries, err := cat.Get(ctx, dataset)
		switch {
		case err == nil:
			names := make([]string, len(entries))
			for i, e := range entries {
				names[i] = e.Name
			}
			return names, nil
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, fmt.Errorf("catalog %s: %w", dataset, err)
		}
	}

	prefix := strings.TrimSuffix(dataset, "/")
	if prefix != "" {
		prefix += "/"
	}
	all, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	names := all[:0]
	for _, name := range all {
		if catalog.IsManifest(name) {
			continue
		}
		if _, _, err := FormatFromName(name); err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
