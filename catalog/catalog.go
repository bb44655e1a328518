package catalog

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/hupe1980/geoknn/model"
)

// ErrNotFound is returned when a dataset has no catalog.
var ErrNotFound = errors.New("catalog: dataset not found")

// Entry describes one partition of a dataset.
type Entry struct {
	// Name is the blob name of the partition, relative to the store root.
	Name string
	// Format is the partition encoding ("pts", "shp" or "parquet").
	Format string
	// Points is the number of points in the partition.
	Points int64
	// Bounds is the bounding box of the partition's points. Coordinates may
	// be NaN or infinite when the partition holds such points.
	Bounds model.Bound
}

type entryJSON struct {
	Name   string   `json:"name"`
	Format string   `json:"format"`
	Points int64    `json:"points"`
	Bounds [4]Float `json:"bounds"` // min x, min y, max x, max y
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Name:   e.Name,
		Format: e.Format,
		Points: e.Points,
		Bounds: [4]Float{
			Float(e.Bounds.Min.X()), Float(e.Bounds.Min.Y()),
			Float(e.Bounds.Max.X()), Float(e.Bounds.Max.Y()),
		},
	})
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var w entryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Entry{
		Name:   w.Name,
		Format: w.Format,
		Points: w.Points,
		Bounds: model.Bound{
			Min: model.Point{float64(w.Bounds[0]), float64(w.Bounds[1])},
			Max: model.Point{float64(w.Bounds[2]), float64(w.Bounds[3])},
		},
	}
	return nil
}

// Catalog stores the partition list of datasets.
type Catalog interface {
	// Put replaces the entries of dataset.
	Put(ctx context.Context, dataset string, entries []Entry) error
	// Get returns the entries of dataset ordered by name.
	// It returns ErrNotFound if the dataset has no catalog.
	Get(ctx context.Context, dataset string) ([]Entry, error)
}

// TotalPoints sums the point counts of entries.
func TotalPoints(entries []Entry) int64 {
	var n int64
	for _, e := range entries {
		n += e.Points
	}
	return n
}

// Bound returns the union of the entries' bounding boxes, skipping empty
// partitions.
func Bound(entries []Entry) model.Bound {
	var (
		b     model.Bound
		found bool
	)
	for _, e := range entries {
		if e.Points == 0 {
			continue
		}
		if !found {
			b, found = e.Bounds, true
			continue
		}
		b = b.Union(e.Bounds)
	}
	return b
}
