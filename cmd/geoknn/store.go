package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/hupe1980/geoknn/blobstore"
	"github.com/hupe1980/geoknn/blobstore/minio"
	"github.com/hupe1980/geoknn/blobstore/s3"
	"github.com/hupe1980/geoknn/catalog"
	"github.com/hupe1980/geoknn/catalog/dynamo"
	"github.com/hupe1980/geoknn/resource"
)

// openStore builds the configured blob store. The returned func releases the
// block cache, if any.
func openStore(ctx context.Context, cfg Config, rc *resource.Controller) (blobstore.BlobStore, func(), error) {
	var (
		store blobstore.BlobStore
		err   error
	)

	switch cfg.Store {
	case "local":
		store = blobstore.NewLocalStore(cfg.Root)
	case "s3":
		opts := []s3.Option{s3.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.Endpoint))
		}
		store, err = s3.New(ctx, cfg.Bucket, opts...)
	case "minio":
		var ms *minio.Store
		ms, err = minio.New(minio.Config{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			Secure:    cfg.Secure,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		})
		if err == nil && cfg.Generate > 0 {
			err = ms.EnsureBucket(ctx)
		}
		store = ms
	default:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	if cfg.CacheMB <= 0 {
		return store, func() {}, nil
	}
	cached := blobstore.NewCachedStore(store, int64(cfg.CacheMB)<<20, rc)
	return cached, func() { _ = cached.Close() }, nil
}

func openCatalog(ctx context.Context, cfg Config, store blobstore.BlobStore) (catalog.Catalog, error) {
	switch cfg.Catalog {
	case "dynamo":
		var loadOpts []func(*config.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
		}
		c, err := dynamo.New(ctx, cfg.DynamoTable, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("open dynamo catalog: %w", err)
		}
		return c, nil
	default:
		return catalog.NewBlobCatalog(store, nil), nil
	}
}
