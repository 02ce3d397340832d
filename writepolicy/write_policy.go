// Package writepolicy forwards cache writes to a backing store.
//
// Write-through calls the store inline; write-back queues the write for a single
// background worker and drains the queue on Close.
package writepolicy

import "context"

// WritePolicy receives every propagated cache write.
type WritePolicy[K comparable, V any] interface {

	// OnWrite is called after the shard lock is released. It must not call back
	// into the cache.
	OnWrite(ctx context.Context, key K, value V)

	// Close flushes whatever is pending. It is safe to call more than once.
	Close()
}
