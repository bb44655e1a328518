// Package cache provides LRU caching for immutable blob blocks.
//
// LRUBlockCache is a single-mutex LRU bounded in bytes. ShardedLRUBlockCache
// spreads keys over 64 LRU shards for concurrent partition scans. Both can
// charge their footprint to a resource.Controller so cached blocks count
// against the process memory budget.
package cache
