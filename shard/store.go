package shard

import "github.com/krisalay/policycache/types"

/*
This file defines how data is actually stored inside a shard.
*/

// ShardStore is the interface used by a shard to store and retrieve cache entries.
// Implementations are not synchronized; the owning Shard's lock guards every call.
type ShardStore[K comparable, V any] interface {

	// Get retrieves an entry by key.
	Get(K) (*types.Entry[V], bool)

	// Put inserts or replaces an entry.
	Put(K, *types.Entry[V])

	// Delete removes an entry.
	Delete(K)

	// Size returns how many entries are stored.
	Size() int

	// Range calls fn for entries in unspecified order until fn returns false.
	Range(fn func(K, *types.Entry[V]) bool)
}

// mapStore is a plain map guarded by the shard lock.
type mapStore[K comparable, V any] struct {
	data map[K]*types.Entry[V]
}

// NewMapStore creates a store pre-sized for sizeHint entries.
func NewMapStore[K comparable, V any](sizeHint int) ShardStore[K, V] {
	return &mapStore[K, V]{data: make(map[K]*types.Entry[V], sizeHint)}
}

func (s *mapStore[K, V]) Get(key K) (*types.Entry[V], bool) {
	ent, ok := s.data[key]
	return ent, ok
}

func (s *mapStore[K, V]) Put(key K, ent *types.Entry[V]) { s.data[key] = ent }

func (s *mapStore[K, V]) Delete(key K) { delete(s.data, key) }

func (s *mapStore[K, V]) Size() int { return len(s.data) }

func (s *mapStore[K, V]) Range(fn func(K, *types.Entry[V]) bool) {
	for k, v := range s.data {
		if !fn(k, v) {
			return
		}
	}
}
