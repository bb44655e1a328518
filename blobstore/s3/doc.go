// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	parts, err := partition.Discover(ctx, store, "cities", partition.DiscoverOptions{})
//
// # Features
//
//   - Range reads so partitions stream without downloading whole objects
//   - Multipart uploads for large partition files
//   - CRC32C integrity checksums on Put
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
