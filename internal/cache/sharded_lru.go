package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/maphash"

	"github.com/hupe1980/geoknn/resource"
)

const numShards = 64

// ShardedLRUBlockCache spreads blocks over 64 LRU shards so concurrent
// partition scans rarely contend on the same mutex.
type ShardedLRUBlockCache struct {
	shards [numShards]*LRUBlockCache
	seed   maphash.Seed
}

// NewShardedLRUBlockCache creates a cache of capacity bytes split evenly
// across the shards.
func NewShardedLRUBlockCache(capacity int64, rc *resource.Controller) *ShardedLRUBlockCache {
	perShard := max(capacity/numShards, 1)

	s := &ShardedLRUBlockCache{seed: maphash.MakeSeed()}
	for i := range s.shards {
		s.shards[i] = NewLRUBlockCache(perShard, rc)
	}
	return s
}

func (s *ShardedLRUBlockCache) shard(key CacheKey) *LRUBlockCache {
	var h maphash.Hash
	h.SetSeed(s.seed)

	var buf [9]byte
	buf[0] = byte(key.Kind)
	binary.LittleEndian.PutUint64(buf[1:], key.Offset)
	_, _ = h.Write(buf[:])
	_, _ = h.WriteString(key.Path)

	return s.shards[h.Sum64()%numShards]
}

// Get returns a cached block.
func (s *ShardedLRUBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	return s.shard(key).Get(ctx, key)
}

// Set caches a block.
func (s *ShardedLRUBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	s.shard(key).Set(ctx, key, b)
}

// InvalidateBlob drops the blocks of path from every shard.
func (s *ShardedLRUBlockCache) InvalidateBlob(path string) int {
	n := 0
	for _, sh := range s.shards {
		n += sh.InvalidateBlob(path)
	}
	return n
}

// Close closes all shards.
func (s *ShardedLRUBlockCache) Close() error {
	var errs []error
	for _, sh := range s.shards {
		errs = append(errs, sh.Close())
	}
	return errors.Join(errs...)
}

// Stats returns hit and miss counters summed over the shards.
func (s *ShardedLRUBlockCache) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Evictions returns the evictions summed over the shards.
func (s *ShardedLRUBlockCache) Evictions() int64 {
	var n int64
	for _, sh := range s.shards {
		n += sh.Evictions()
	}
	return n
}

// Size returns the cached bytes across all shards.
func (s *ShardedLRUBlockCache) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}

// nonEmptyShards reports how many shards hold at least one block.
func (s *ShardedLRUBlockCache) nonEmptyShards() int {
	n := 0
	for _, sh := range s.shards {
		if sh.Len() > 0 {
			n++
		}
	}
	return n
}
