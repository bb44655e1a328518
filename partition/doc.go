// Package partition provides sources of partitioned point data for the
// nearest-neighbor engine.
//
// Every type here implements engine.Partition and yields its points in a
// stable order, so a partition whose scan fails can be read again from the
// start.
//
//   - Slice: points held in memory
//   - Blob: raw 16-byte point records (.pts) or ESRI point shapefiles (.shp)
//     in a blob store, optionally LZ4 (.lz4) or Zstd (.zst) compressed
//   - Parquet: rows of {x, y} doubles in a Parquet blob
//   - SQL: rows of a table selected by a partition key
//
// Discover builds the partitions of a dataset from its catalog or by listing
// the store, and WriteBlob/WriteDataset produce blobs in any supported
// encoding.
package partition
