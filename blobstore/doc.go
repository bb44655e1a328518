// Package blobstore provides storage access for immutable partition blobs.
//
// A dataset is a set of blobs under a common prefix, one per partition, plus
// an optional catalog manifest. Partitions are written once and only read
// afterwards, so implementations never need to handle in-place updates.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads and atomic temp-file writes
//   - MemoryStore: in-process map, used by tests
//   - CachingStore: block LRU cache in front of any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// Blob reads take a context so remote implementations can cancel in-flight
// requests when a search is abandoned. NewReaderAt adapts a Blob to
// io.ReaderAt for decoders such as Parquet that expect one.
package blobstore
