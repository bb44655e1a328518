package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/geoknn/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blobKey(path string, off uint64) CacheKey {
	return CacheKey{Kind: CacheKindBlob, Path: path, Offset: off}
}

func TestLRU_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(30, nil)

	c.Set(ctx, blobKey("a", 0), make([]byte, 10))
	c.Set(ctx, blobKey("a", 10), make([]byte, 10))
	c.Set(ctx, blobKey("a", 20), make([]byte, 10))

	// Touch the oldest so the middle entry becomes the eviction victim.
	_, ok := c.Get(ctx, blobKey("a", 0))
	require.True(t, ok)

	c.Set(ctx, blobKey("a", 30), make([]byte, 10))
	assert.Equal(t, int64(30), c.Size())

	_, ok = c.Get(ctx, blobKey("a", 10))
	assert.False(t, ok)
	_, ok = c.Get(ctx, blobKey("a", 0))
	assert.True(t, ok)
	assert.Equal(t, int64(1), c.Evictions())
}

func TestLRU_EdgeCases(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRUBlockCache(50, rc)
	k := blobKey("part-0.pts", 0)

	c.Set(ctx, k, make([]byte, 60))
	_, ok := c.Get(ctx, k)
	assert.False(t, ok, "item larger than capacity should not be cached")

	c.Set(ctx, k, make([]byte, 10))
	assert.Equal(t, int64(10), c.Size())
	assert.Equal(t, int64(10), rc.MemoryUsage())

	c.Set(ctx, k, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())

	c.Set(ctx, k, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())

	rc2 := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c2 := NewLRUBlockCache(50, rc2)
	c2.Set(ctx, k, make([]byte, 8))
	c2.Set(ctx, k, make([]byte, 12))

	val, ok := c2.Get(ctx, k)
	assert.True(t, ok)
	assert.Len(t, val, 8, "update should have been rejected by the controller")
}

func TestLRU_Stats(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(100, nil)
	c.Set(ctx, blobKey("a", 1), []byte{1})
	c.Get(ctx, blobKey("a", 1))
	c.Get(ctx, blobKey("b", 2))

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.NoError(t, c.Close())
}

func TestLRU_Invalidate(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRUBlockCache(100, rc)
	c.Set(ctx, blobKey("a", 1), []byte("a"))
	c.Set(ctx, blobKey("a", 2), []byte("b"))
	c.Set(ctx, blobKey("b", 1), []byte("c"))

	assert.Equal(t, 2, c.InvalidateBlob("a"))
	assert.Equal(t, 0, c.InvalidateBlob("a"))

	_, ok := c.Get(ctx, blobKey("a", 1))
	assert.False(t, ok)
	_, ok = c.Get(ctx, blobKey("b", 1))
	assert.True(t, ok)
	assert.Equal(t, int64(1), rc.MemoryUsage())
	assert.Equal(t, 1, c.Len())
}

func TestShardedLRU_Basic(t *testing.T) {
	ctx := context.Background()
	c := NewShardedLRUBlockCache(1<<20, nil)

	c.Set(ctx, blobKey("a", 0), []byte("test data"))
	got, ok := c.Get(ctx, blobKey("a", 0))
	require.True(t, ok)
	assert.Equal(t, "test data", string(got))

	_, ok = c.Get(ctx, blobKey("b", 0))
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, int64(9), c.Size())
	assert.NoError(t, c.Close())
}

func TestShardedLRU_Distribution(t *testing.T) {
	ctx := context.Background()
	c := NewShardedLRUBlockCache(64<<20, nil)
	data := make([]byte, 1024)

	for i := range 1000 {
		c.Set(ctx, blobKey(fmt.Sprintf("part-%d", i%100), uint64(i*4096)), data)
	}

	assert.Greater(t, c.nonEmptyShards(), numShards/2)
	assert.Equal(t, int64(1000*1024), c.Size())
}

func TestShardedLRU_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewShardedLRUBlockCache(1<<20, nil)
	for i := range 50 {
		c.Set(ctx, blobKey("a", uint64(i)), []byte{1})
		c.Set(ctx, blobKey("b", uint64(i)), []byte{2})
	}

	assert.Equal(t, 50, c.InvalidateBlob("a"))

	assert.Equal(t, int64(50), c.Size())
	_, ok := c.Get(ctx, blobKey("b", 7))
	assert.True(t, ok)
}

func TestShardedLRU_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewShardedLRUBlockCache(1<<20, nil)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				k := blobKey(fmt.Sprintf("g%d", g), uint64(i))
				c.Set(ctx, k, []byte{byte(i)})
				c.Get(ctx, k)
			}
		}(g)
	}
	wg.Wait()

	hits, _ := c.Stats()
	assert.Equal(t, int64(8*200), hits)
}

func TestLRU_CloseReleasesMemory(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1000})
	c := NewLRUBlockCache(500, rc)
	for i := range 10 {
		c.Set(ctx, blobKey("p", uint64(i)), make([]byte, 20))
	}
	require.Equal(t, int64(200), rc.MemoryUsage())

	require.NoError(t, c.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(0), c.Size())
	assert.Equal(t, 0, c.Len())
}

func TestLRU_GrowBeyondCapacityEvicts(t *testing.T) {
	ctx := context.Background()
	c := NewLRUBlockCache(30, nil)
	c.Set(ctx, blobKey("a", 0), make([]byte, 10))
	c.Set(ctx, blobKey("a", 10), make([]byte, 10))

	// Growing the newest block pushes out the older one.
	c.Set(ctx, blobKey("a", 10), make([]byte, 25))
	assert.Equal(t, int64(25), c.Size())
	_, ok := c.Get(ctx, blobKey("a", 0))
	assert.False(t, ok)
	got, ok := c.Get(ctx, blobKey("a", 10))
	require.True(t, ok)
	assert.Len(t, got, 25)
}

func TestShardedLRU_CloseReleasesMemory(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})
	c := NewShardedLRUBlockCache(1<<20, rc)
	for i := range 100 {
		c.Set(ctx, blobKey("p", uint64(i)), make([]byte, 8))
	}
	require.Equal(t, int64(800), rc.MemoryUsage())

	require.NoError(t, c.Close())
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, 0, c.nonEmptyShards())
}
