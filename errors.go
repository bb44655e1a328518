package geoknn

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/distance"
	"github.com/hupe1980/geoknn/engine"
	"github.com/hupe1980/geoknn/partition"
	"github.com/hupe1980/geoknn/shp"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = engine.ErrInvalidK

	// ErrDecode is returned when a point record is truncated or malformed.
	ErrDecode = shp.ErrDecode

	// ErrPanic is returned when a partition scan panicked.
	ErrPanic = engine.ErrPanic

	// ErrUnknownMetric is returned when an unsupported distance metric is
	// configured.
	ErrUnknownMetric = distance.ErrUnknownMetric

	// ErrNotFound is returned when a dataset or blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned when using a closed Dataset.
	ErrClosed = errors.New("closed")
)

// PartitionError reports a partition that could not be scanned.
type PartitionError = engine.PartitionError

// DecodeError reports a truncated or malformed record.
type DecodeError = shp.DecodeError

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, blobstore.ErrNotFound) || errors.Is(err, partition.ErrNoPartitions) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if errors.Is(err, engine.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
