// Package api holds the public contract of the cache. Sharding, eviction, expiry,
// loading and write propagation all stay behind it.
package api

import (
	"context"
	"time"
)

/*
Cache is a generic key/value cache bounded by an eviction policy.

Every method is safe for concurrent use.
*/
type Cache[K comparable, V any] interface {

	/*
		Get returns the value stored under key.

		A live entry is a hit: its access count goes up and the eviction policy
		records the access.

		An expired entry is purged during the lookup and reported as a miss.

		On a miss the configured loader is asked once per key (concurrent callers
		share the result) and the loaded value is cached. Without a loader, or when
		the loader does not know the key, the error is types.ErrNotFound.
	*/
	Get(ctx context.Context, key K) (V, error)

	/*
		Put stores value under key with no explicit deadline.

		An existing live key is updated in place and counts as an access.
		A new key may push out at most one other key chosen by the policy.
		The write is forwarded to the write policy, if one is set.
	*/
	Put(ctx context.Context, key K, value V) error

	// PutWithTTL is Put with a deadline ttl from now. Such entries stay in memory
	// and are not forwarded to the write policy.
	PutWithTTL(ctx context.Context, key K, value V, ttl time.Duration) error

	// Remove drops key from memory and from policy tracking. The backing store
	// is left alone. Missing keys are ignored.
	Remove(key K)

	// Expire moves the deadline of a live key to now + ttl and reports whether
	// the key was found.
	Expire(key K, ttl time.Duration) bool

	/*
		TTL reports the time left before key expires.

			> 0 : remaining time
			 -1 : key has no deadline
			 -2 : key is absent or expired
	*/
	TTL(key K) time.Duration

	// Close flushes pending write-back work. Writes after Close fail with
	// types.ErrClosed.
	Close()

	// Len counts stored entries.
	Len() int
}
