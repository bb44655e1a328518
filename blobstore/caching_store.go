package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/geoknn/internal/cache"
	"github.com/hupe1980/geoknn/resource"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the cache block size used when none is given.
const DefaultBlockSize = 64 << 10

// CachingStore wraps a BlobStore and adds block-level caching of reads.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultBlockSize if <= 0.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

// NewCachedStore wraps inner with a sharded LRU block cache holding up to
// capacity bytes. Cached blocks are charged to rc, which may be nil.
func NewCachedStore(inner BlobStore, capacity int64, rc *resource.Controller) *CachingStore {
	return NewCachingStore(inner, cache.NewShardedLRUBlockCache(capacity, rc), DefaultBlockSize)
}

// Close releases the block cache.
func (s *CachingStore) Close() error {
	return s.cache.Close()
}

// Open opens a blob whose reads are served through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create invalidates cached blocks of name and delegates to the inner store.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

// Put invalidates cached blocks of name and delegates to the inner store.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete invalidates cached blocks of name and delegates to the inner store.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the hit and miss counters of the underlying cache.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

func (s *CachingStore) invalidate(name string) {
	s.cache.InvalidateBlob(name)
}

// CachingBlob wraps a Blob and uses the block cache for reads.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

// Close closes the inner blob.
func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

// Size returns the size of the inner blob.
func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{
		Kind:   cache.CacheKindBlob,
		Path:   b.name,
		Offset: uint64(blk),
	}
}

// ReadAt reads through the cache, fetching missing blocks from the inner blob.
func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}

	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}
	want := min(int64(len(p)), size-off)

	startBlock := off / b.blockSize
	endBlock := (off + want - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, off+want)

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		if srcOffset >= int64(len(blockData)) {
			break
		}
		copySize := min(intersectEnd-intersectStart, int64(len(blockData))-srcOffset)
		dstOffset := intersectStart - off
		totalRead += copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

type blockRun struct {
	start, count int64
}

// fillCache loads the blocks in [startBlock, endBlock] that are missing from
// the cache, fetching each contiguous run with a single backend read.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	var runs []blockRun
	run := blockRun{start: -1}

	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); !ok {
			if run.start == -1 {
				run = blockRun{start: blk, count: 1}
			} else {
				run.count++
			}
			continue
		}
		if run.start != -1 {
			runs = append(runs, run)
			run = blockRun{start: -1}
		}
	}
	if run.start != -1 {
		runs = append(runs, run)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for _, run := range runs {
		g.Go(func() error {
			return b.fetchRun(gctx, run)
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchRun(ctx context.Context, run blockRun) error {
	byteStart := run.start * b.blockSize
	fileSize := b.Size()
	if byteStart >= fileSize {
		return nil
	}
	byteSize := min(run.count*b.blockSize, fileSize-byteStart)

	buf := make([]byte, byteSize)
	n, err := b.inner.ReadAt(ctx, buf, byteStart)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	buf = buf[:n]

	for i := int64(0); i < run.count; i++ {
		lo := i * b.blockSize
		if lo >= int64(len(buf)) {
			break
		}
		hi := min(lo+b.blockSize, int64(len(buf)))

		// Copy so a cached block does not pin the whole run buffer.
		block := make([]byte, hi-lo)
		copy(block, buf[lo:hi])
		b.cache.Set(ctx, b.key(run.start+i), block)
	}
	return nil
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	key := b.key(blk)
	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	// The cache may have rejected the block (capacity or memory limit).
	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, buf)
	}
	return buf, nil
}

// ReadRange returns a reader that serves the range through the cache.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	start, end := clip(b.Size(), off, length)
	return io.NopCloser(&contextSectionReader{blob: b, ctx: ctx, off: start, limit: end}), nil
}

// contextSectionReader wraps a Blob to implement io.Reader with context.
type contextSectionReader struct {
	blob  Blob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *contextSectionReader) Read(p []byte) (n int, err error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}
