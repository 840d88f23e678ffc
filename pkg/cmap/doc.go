// Package cmap provides a concurrent map for atomstore's in-memory backend.
//
// Keys are strings and are spread across shards by their murmur3 hash:
//
//   - Sharding: power-of-two shard count, selected with a mask
//   - Fine-grained Locking: per-shard RWMutex
//   - Iteration: shard-by-shard, holding one read lock at a time
//
// Usage:
//
//	m := cmap.New[string]()
//	m.Set("theme", `"dark"`)
//	val, ok := m.Get("theme")
//
// Thread Safety:
//
// All operations are safe for concurrent use. Read operations (Get, Len,
// Range) use RLock, write operations (Set, Delete, Clear) use Lock.
package cmap
