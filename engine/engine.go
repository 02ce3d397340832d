package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/krisalay/policycache/expiration"
	"github.com/krisalay/policycache/refresh"
	"github.com/krisalay/policycache/types"
	"github.com/krisalay/policycache/writepolicy"
)

/*
CacheEngine holds the rules the shards follow: when an entry is dead, what a read
or write does to its deadline, where misses are loaded from and where writes go.

It never stores entries, picks shards, takes locks or chooses victims. ShardedCache
calls into it with the relevant shard lock already held, except for Load and
Propagate which run unlocked.
*/
type CacheEngine[K comparable, V any] struct {

	// Expiration sets default deadlines. Nil leaves only explicit TTLs.
	Expiration expiration.Strategy[V]

	// Refresh runs on every hit, if set.
	Refresh refresh.Hook[K, V]

	// Loader serves misses. Nil turns every miss into types.ErrNotFound.
	Loader types.Loader[K, V]

	// WritePolicy receives propagated writes. Nil keeps writes in memory.
	WritePolicy writepolicy.WritePolicy[K, V]

	// Metrics receives hits, misses, evictions, expirations, refreshes and latency.
	Metrics types.Metrics

	// Logger receives structured diagnostics. Evictions and purges are logged at debug.
	Logger *slog.Logger

	// Now is the clock. Tests replace it to drive expiry deterministically.
	Now func() time.Time
}

// NewCacheEngine wires the collaborators. Nil metrics and logger are replaced by
// no-op implementations.
func NewCacheEngine[K comparable, V any](
	exp expiration.Strategy[V],
	refresh refresh.Hook[K, V],
	loader types.Loader[K, V],
	writePolicy writepolicy.WritePolicy[K, V],
	metrics types.Metrics,
	logger *slog.Logger,
) *CacheEngine[K, V] {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &CacheEngine[K, V]{
		Expiration:  exp,
		Refresh:     refresh,
		Loader:      loader,
		WritePolicy: writePolicy,
		Metrics:     metrics,
		Logger:      logger,
		Now:         time.Now,
	}
}

// IsExpired checks whether a cache entry is expired now.
// Without a strategy the entry's own deadline still applies.
func (e *CacheEngine[K, V]) IsExpired(ent *types.Entry[V]) bool {
	now := e.Now()
	if e.Expiration != nil {
		return e.Expiration.IsExpired(ent, now)
	}
	return expiration.Expired(ent, now)
}

// OnRead records a hit on ent: access count, last-access time, sliding deadline,
// then the refresh hook. Only hooks that fire are counted as refreshes.
func (e *CacheEngine[K, V]) OnRead(key K, ent *types.Entry[V]) {
	now := e.Now()

	ent.IncrementAccessCount()
	ent.Touch(now)

	if e.Expiration != nil {
		e.Expiration.OnAccess(ent, now)
	}

	if e.Refresh != nil && e.Refresh.OnRead(key, ent) {
		e.Metrics.RecordRefresh()
	}
}

// OnWrite applies the write-time deadline rule to a new or updated entry.
func (e *CacheEngine[K, V]) OnWrite(ent *types.Entry[V]) {
	if e.Expiration != nil {
		e.Expiration.OnWrite(ent, e.Now())
	}
}

// Propagate hands a write to the WritePolicy. Callers must not hold a shard lock.
func (e *CacheEngine[K, V]) Propagate(ctx context.Context, key K, value V) {
	if e.WritePolicy != nil {
		e.WritePolicy.OnWrite(ctx, key, value)
	}
}

// CanLoad reports whether a loader is configured.
func (e *CacheEngine[K, V]) CanLoad() bool { return e.Loader != nil }

// Load fetches key from the backing store.
func (e *CacheEngine[K, V]) Load(ctx context.Context, key K) (V, error) {
	if e.Loader == nil {
		var zero V
		return zero, types.ErrNotFound
	}
	return e.Loader.Load(ctx, key)
}

// Close releases the write policy.
func (e *CacheEngine[K, V]) Close() {
	if e.WritePolicy != nil {
		e.WritePolicy.Close()
	}
}
