// Package geoknn finds the K nearest 2-D points to a query location in a
// dataset spread over many independent partitions.
//
// # Quick Start
//
// In memory:
//
//	parts := partition.Partitions(partition.Split(points, 8))
//	nearest, _ := geoknn.NearestK(ctx, geoknn.Point{13.4, 52.5}, 10, parts)
//
// A dataset in a blob store:
//
//	store := blobstore.NewLocalStore("./data")
//	_, _ = geoknn.Write(ctx, store, partition.DatasetSpec{
//	    Dataset:     "cities",
//	    Partitions:  16,
//	    Format:      partition.FormatRecords,
//	    Compression: partition.CompressionZstd,
//	}, points)
//
//	ds, _ := geoknn.Open(ctx, store, "cities", geoknn.WithWorkers(8))
//	defer ds.Close()
//	nearest, _ := ds.Search(ctx, geoknn.Point{13.4, 52.5}, 10)
//
// Cloud mode:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("geo/"))
//	cached := blobstore.NewCachedStore(s3Store, 256<<20, nil)
//	ds, _ := geoknn.Open(ctx, cached, "cities")
//
// # How It Works
//
// Every partition is scanned once, independently, keeping its K nearest
// points in a bounded max-heap. The per-partition candidates are then
// merged into the global K nearest, ascending by Euclidean distance. A
// partition whose scan fails is re-scanned under an engine.RetryPolicy.
//
// # Partition Formats
//
//   - .pts: back-to-back 16-byte records (little-endian float64 X, Y)
//   - .shp: ESRI shapefile with Point records
//   - .parquet: rows of {x, y} doubles
//
// .pts and .shp may be LZ4 (.lz4) or Zstd (.zst) compressed.
package geoknn
