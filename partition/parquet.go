package partition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/parquet-go/parquet-go"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/model"
)

// DefaultParquetBatchSize is the number of rows decoded per read.
const DefaultParquetBatchSize = 4096

// Row is the Parquet schema of a point.
type Row struct {
	X float64 `parquet:"x"`
	Y float64 `parquet:"y"`
}

// Parquet is a partition stored as a Parquet blob of Row records.
type Parquet struct {
	Store     blobstore.BlobStore
	Path      string
	BatchSize int
}

var _ engine.Partition = (*Parquet)(nil)

// NewParquet returns a Parquet partition for the blob at name.
func NewParquet(store blobstore.BlobStore, name string) *Parquet {
	return &Parquet{Store: store, Path: name, BatchSize: DefaultParquetBatchSize}
}

// Name returns the blob path.
func (p *Parquet) Name() string { return p.Path }

// Points streams the rows of the blob in file order.
func (p *Parquet) Points(ctx context.Context) iter.Seq2[model.Point, error] {
	return func(yield func(model.Point, error) bool) {
		err := p.scan(ctx, yield)
		if err != nil && !errors.Is(err, errStop) {
			yield(model.Point{}, fmt.Errorf("partition %s: %w", p.Path, err))
		}
	}
}

func (p *Parquet) scan(ctx context.Context, yield func(model.Point, error) bool) error {
	b, err := p.Store.Open(ctx, p.Path)
	if err != nil {
		return err
	}
	defer b.Close()

	pf, err := parquet.OpenFile(blobstore.NewReaderAt(ctx, b), b.Size())
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}

	pr := parquet.NewGenericReader[Row](pf)
	defer pr.Close()

	rows := make([]Row, max(p.BatchSize, 1))
	for {
		n, err := pr.Read(rows)
		for _, r := range rows[:n] {
			if !yield(model.Point{r.X, r.Y}, nil) {
				return errStop
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read parquet: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

// WriteParquet writes pts as Zstd-compressed Parquet rows.
func WriteParquet(w io.Writer, pts []model.Point) error {
	pw := parquet.NewGenericWriter[Row](w, parquet.Compression(&parquet.Zstd))

	rows := make([]Row, 0, min(len(pts), DefaultParquetBatchSize))
	for start := 0; start < len(pts); start += DefaultParquetBatchSize {
		end := min(start+DefaultParquetBatchSize, len(pts))
		rows = rows[:0]
		for _, pt := range pts[start:end] {
			rows = append(rows, Row{X: pt.X(), Y: pt.Y()})
		}
		if _, err := pw.Write(rows); err != nil {
			_ = pw.Close()
			return fmt.Errorf("write parquet: %w", err)
		}
	}
	return pw.Close()
}
