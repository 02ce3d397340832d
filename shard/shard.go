package shard

import (
	"sync"

	"github.com/krisalay/policycache/eviction"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the cache.
Instead of having: One big cache and one big lock
We split the cache into many shards. Each shard:
- Holds some portion of the data
- Has its own eviction policy instance, sized to its share of the capacity
- Has its own lock

Lock order is always Mu first, then the policy's internal lock. Policies never call back
into the shard, so the order cannot invert.
*/
type Shard[K comparable, V any] struct {

	// Store holds the actual key → entry data for this shard.
	Store ShardStore[K, V]

	// Eviction controls which key should be removed when this shard runs out of space.
	Eviction eviction.Policy[K, V]

	// Mu protects Store and keeps it consistent with Eviction.
	// - Lookups, hits and access bookkeeping take the read lock
	// - Inserts, refreshes, purges and removals take the write lock
	Mu sync.RWMutex
}

func NewShard[K comparable, V any](ev eviction.Policy[K, V]) *Shard[K, V] {
	return &Shard[K, V]{
		Store:    NewMapStore[K, V](ev.MaxSize()),
		Eviction: ev,
	}
}
