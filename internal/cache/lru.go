package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/geoknn/resource"
)

// block is a node of the recency ring.
type block struct {
	key        CacheKey
	data       []byte
	prev, next *block
}

func (b *block) size() int64 { return int64(len(b.data)) }

// LRUBlockCache is a byte-bounded LRU of blob blocks guarded by one mutex.
//
// Blocks are also indexed by blob path so that rewriting or deleting a blob
// drops its blocks without scanning the whole cache.
type LRUBlockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	blocks   map[CacheKey]*block
	byPath   map[string]map[uint64]*block
	ring     block // sentinel: ring.next is most recent, ring.prev least
	rc       *resource.Controller

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// NewLRUBlockCache creates a cache holding up to capacity bytes. If rc is
// non-nil every cached byte is charged to it.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	c := &LRUBlockCache{
		capacity: capacity,
		blocks:   make(map[CacheKey]*block),
		byPath:   make(map[string]map[uint64]*block),
		rc:       rc,
	}
	c.ring.next = &c.ring
	c.ring.prev = &c.ring
	return c
}

// Get returns a cached block and marks it most recently used.
func (c *LRUBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.blocks[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.unlink(b)
	c.pushFront(b)
	return b.data, true
}

// Set caches data under key.
//
// Blocks larger than the whole cache are not admitted. When the controller
// refuses the memory the cache is left as it was.
func (c *LRUBlockCache) Set(_ context.Context, key CacheKey, data []byte) {
	n := int64(len(data))

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.blocks[key]; ok {
		c.replace(old, data)
		return
	}
	if n > c.capacity {
		return
	}

	c.shrinkTo(c.capacity - n)
	if c.rc != nil && !c.rc.TryAcquireMemory(n) {
		return
	}

	b := &block{key: key, data: data}
	c.blocks[key] = b
	offsets := c.byPath[key.Path]
	if offsets == nil {
		offsets = make(map[uint64]*block)
		c.byPath[key.Path] = offsets
	}
	offsets[key.Offset] = b
	c.pushFront(b)
	c.size += n
}

// replace swaps the data of a cached block.
func (c *LRUBlockCache) replace(b *block, data []byte) {
	delta := int64(len(data)) - b.size()
	if delta > 0 && c.rc != nil && !c.rc.TryAcquireMemory(delta) {
		return
	}
	if delta < 0 && c.rc != nil {
		c.rc.ReleaseMemory(-delta)
	}

	b.data = data
	c.size += delta
	c.unlink(b)
	c.pushFront(b)

	if c.size > c.capacity {
		c.shrinkTo(c.capacity)
	}
}

// shrinkTo evicts least recently used blocks until size <= limit.
func (c *LRUBlockCache) shrinkTo(limit int64) {
	for c.size > limit && c.ring.prev != &c.ring {
		c.drop(c.ring.prev)
		c.evictions.Add(1)
	}
}

// InvalidateBlob drops every block of path.
func (c *LRUBlockCache) InvalidateBlob(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	offsets := c.byPath[path]
	n := len(offsets)
	for _, b := range offsets {
		c.drop(b)
	}
	return n
}

// Close drops every block and releases its memory.
func (c *LRUBlockCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.ring.next != &c.ring {
		c.drop(c.ring.next)
	}
	return nil
}

// Stats returns the hit and miss counters.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Evictions returns how many blocks were dropped to make room.
func (c *LRUBlockCache) Evictions() int64 {
	return c.evictions.Load()
}

// Size returns the cached bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached blocks.
func (c *LRUBlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

func (c *LRUBlockCache) drop(b *block) {
	c.unlink(b)
	delete(c.blocks, b.key)
	if offsets := c.byPath[b.key.Path]; offsets != nil {
		delete(offsets, b.key.Offset)
		if len(offsets) == 0 {
			delete(c.byPath, b.key.Path)
		}
	}
	c.size -= b.size()
	if c.rc != nil {
		c.rc.ReleaseMemory(b.size())
	}
}

func (c *LRUBlockCache) pushFront(b *block) {
	b.prev = &c.ring
	b.next = c.ring.next
	c.ring.next.prev = b
	c.ring.next = b
}

func (c *LRUBlockCache) unlink(b *block) {
	b.prev.next = b.next
	b.next.prev = b.prev
	b.prev, b.next = nil, nil
}
