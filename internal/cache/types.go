package cache

import "context"

// CacheKind separates key spaces.
type CacheKind uint8

const (
	CacheKindUnknown CacheKind = iota
	CacheKindBlob              // blob store blocks
)

// CacheKey identifies one immutable block: the block of blob Path that
// starts at byte Offset.
type CacheKey struct {
	Kind   CacheKind
	Path   string
	Offset uint64
}

// BlockCache is a byte-bounded cache of immutable blob blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may retain b; the caller must treat it as immutable.
	Set(ctx context.Context, key CacheKey, b []byte)
	// InvalidateBlob drops every block of the blob at path and returns how
	// many were dropped.
	InvalidateBlob(path string) int
	// Close drops all blocks and returns their memory to the controller.
	Close() error
	// Stats returns hit and miss counters.
	Stats() (hits, misses int64)
}
