package partition

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/shp"
)

// Encode writes pts to w in the given format and compression.
func Encode(w io.Writer, f Format, c Compression, pts []model.Point) error {
	if f == FormatParquet {
		if c != CompressionNone {
			return fmt.Errorf("%w: parquet cannot be stream-compressed", ErrUnknownFormat)
		}
		return WriteParquet(w, pts)
	}

	cw, err := compress(w, c)
	if err != nil {
		return err
	}

	switch f {
	case FormatRecords:
		rw := shp.NewRecordWriter(cw)
		for _, p := range pts {
			if err := rw.Write(p); err != nil {
				return err
			}
		}
		err = rw.Flush()
	case FormatShapefile:
		err = shp.WriteShapefile(cw, pts)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

// WriteBlob encodes pts in the format implied by name and stores the blob.
// It returns the catalog entry describing the blob.
func WriteBlob(ctx context.Context, store blobstore.BlobStore, name string, pts []model.Point) (catalog.Entry, error) {
	f, c, err := FormatFromName(name)
	if err != nil {
		return catalog.Entry{}, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, f, c, pts); err != nil {
		return catalog.Entry{}, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return catalog.Entry{}, fmt.Errorf("put %s: %w", name, err)
	}

	return catalog.Entry{
		Name:   name,
		Format: f.String(),
		Points: int64(len(pts)),
		Bounds: model.BoundOf(pts),
	}, nil
}

// DatasetSpec describes how WriteDataset lays out a dataset.
type DatasetSpec struct {
	// Dataset is the blob prefix of the dataset.
	Dataset string
	// Partitions is the number of partitions. Values below 1 mean 1.
	Partitions int
	Format      Format
	Compression Compression
	// Concurrency bounds parallel blob writes. Defaults to GOMAXPROCS.
	Concurrency int
}

// PartitionName returns the blob name of partition i of a dataset.
func PartitionName(dataset string, i int, f Format, c Compression) string {
	return path.Join(dataset, FileName(fmt.Sprintf("part-%04d", i), f, c))
}

// WriteDataset splits pts round-robin into partitions, writes each as a blob
// and, if cat is non-nil, records the entries in the catalog.
func WriteDataset(ctx context.Context, store blobstore.BlobStore, cat catalog.Catalog, spec DatasetSpec, pts []model.Point) ([]catalog.Entry, error) {
	if spec.Format == 0 {
		spec.Format = FormatRecords
	}
	if spec.Format == FormatParquet && spec.Compression != CompressionNone {
		return nil, fmt.Errorf("%w: parquet cannot be stream-compressed", ErrUnknownFormat)
	}

	slices := Split(pts, spec.Partitions)
	entries := make([]catalog.Entry, len(slices))

	g, gctx := errgroup.WithContext(ctx)
	limit := spec.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, s := range slices {
		g.Go(func() error {
			e, err := WriteBlob(gctx, store, PartitionName(spec.Dataset, i, spec.Format, spec.Compression), s.Pts)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		removeEntries(ctx, store, entries)
		return nil, err
	}

	if cat != nil {
		if err := cat.Put(ctx, spec.Dataset, entries); err != nil {
			removeEntries(ctx, store, entries)
			return nil, fmt.Errorf("catalog %s: %w", spec.Dataset, err)
		}
	}
	return entries, nil
}

// removeEntries deletes the blobs of a dataset whose write did not complete.
// Entries of partitions that were never written are skipped.
func removeEntries(ctx context.Context, store blobstore.BlobStore, entries []catalog.Entry) {
	ctx = context.WithoutCancel(ctx)
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		_ = store.Delete(ctx, e.Name)
	}
}
