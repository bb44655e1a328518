package partition

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/model"
	"github.com/hupe1980/geoknn/resource"
	"github.com/hupe1980/geoknn/shp"
)

// Blob is a partition stored as a single blob of point records or a point
// shapefile.
type Blob struct {
	Store       blobstore.BlobStore
	Path        string
	Format      Format
	Compression Compression

	// Resources throttles blob reads. May be nil.
	Resources *resource.Controller
}

var _ engine.Partition = (*Blob)(nil)

// NewBlob returns a partition for the blob at name, inferring format and
// compression from its extension.
func NewBlob(store blobstore.BlobStore, name string, rc *resource.Controller) (*Blob, error) {
	f, c, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	if f == FormatParquet {
		return nil, fmt.Errorf("%w: %s: use Parquet", ErrUnknownFormat, name)
	}
	return &Blob{Store: store, Path: name, Format: f, Compression: c, Resources: rc}, nil
}

// Name returns the blob path.
func (b *Blob) Name() string { return b.Path }

// Points streams the decoded points of the blob. Each call re-opens the blob.
func (b *Blob) Points(ctx context.Context) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		err := b.scan(ctx, yield)
		if err != nil && !errors.Is(err, errStop) {
			yield(model.Point{}, fmt.Errorf("partition %s: %w", b.Path, err))
		}
	}
}

var errStop = errors.New("partition: iteration stopped")

func (b *Blob) scan(ctx context.Context, yield func(model.Point, error) bool) (err error) {
	blob, err := b.Store.Open(ctx, b.Path)
	if err != nil {
		return err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return err
	}
	defer rc.Close()

	dec, err := decompress(resource.NewRateLimitedReader(ctx, rc, b.Resources), b.Compression)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dec.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var next iter.Seq2[model.Point, error]
	switch b.Format {
	case FormatRecords:
		next = shp.NewRecordReader(dec).All()
	case FormatShapefile:
		next = shp.NewShapefileReader(dec).All()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, b.Format)
	}

	for p, err := range next {
		if err != nil {
			return err
		}
		if !yield(p, nil) {
			return errStop
		}
	}
	return nil
}
