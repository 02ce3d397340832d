package shard

import (
	"hash/maphash"
	"math/bits"

	"github.com/cespare/xxhash/v2"
)

/*
This file decides HOW a cache key is assigned to a shard.
If every request went to the same shard, that shard would become a bottleneck.
*/

// Hasher maps a key to a 64-bit hash.
type Hasher[K comparable] func(K) uint64

// DefaultHasher hashes string keys with xxhash and any other comparable key with
// hash/maphash under a per-process seed.
func DefaultHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		if s, ok := any(k).(string); ok {
			return xxhash.Sum64String(s)
		}
		return maphash.Comparable(seed, k)
	}
}

/*
Selector is the interface that decides which shard should handle a given key.
The cache does not care HOW this decision is made. Different strategies can be plugged in.
*/
type Selector[K comparable] interface {
	// Index returns the shard index for key, in [0, n).
	Index(key K, n int) int
}

// MaskSelector picks a shard by masking the key hash. It expects a power-of-two shard count.
type MaskSelector[K comparable] struct {
	Hash Hasher[K]
}

// NewMaskSelector returns a MaskSelector using DefaultHasher when hash is nil.
func NewMaskSelector[K comparable](hash Hasher[K]) *MaskSelector[K] {
	if hash == nil {
		hash = DefaultHasher[K]()
	}
	return &MaskSelector[K]{Hash: hash}
}

func (m *MaskSelector[K]) Index(key K, n int) int {
	return int(m.Hash(key) & uint64(n-1))
}

// RoundShards rounds n up to the next power of two, with a minimum of one.
func RoundShards(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
