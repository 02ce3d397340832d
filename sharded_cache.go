package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"github.com/krisalay/policycache/api"
	"github.com/krisalay/policycache/engine"
	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/shard"
	"github.com/krisalay/policycache/types"
)

var _ api.Cache[string, any] = (*ShardedCache[string, any])(nil)

// Ownership tells the cache whether this node is responsible for a key.
// cluster.Manager satisfies it for string keys.
type Ownership[K comparable] interface {
	IsLocal(key K) bool
}

// Option customizes a ShardedCache.
type Option[K comparable, V any] func(*ShardedCache[K, V])

// WithOwnership makes Get and Put refuse keys owned by other nodes.
func WithOwnership[K comparable, V any](o Ownership[K]) Option[K, V] {
	return func(c *ShardedCache[K, V]) { c.ownership = o }
}

// WithHasher replaces the shard hash function.
func WithHasher[K comparable, V any](h shard.Hasher[K]) Option[K, V] {
	return func(c *ShardedCache[K, V]) { c.selector = shard.NewMaskSelector(h) }
}

/*
ShardedCache is the main cache implementation.
This struct is the orchestrator that connects:
- shards (entries + one eviction policy each)
- the engine (expiration, loading, write policies, metrics, logging)
- the ownership collaborator
*/
type ShardedCache[K comparable, V any] struct {
	id string

	// shards are the actual storage units. Each shard is an independent mini-cache.
	shards []*shard.Shard[K, V]

	// engine contains the "rules" of the cache: TTL, refresh, loader, write policy, metrics, etc.
	engine *engine.CacheEngine[K, V]

	// selector decides which shard a key should go to.
	selector shard.Selector[K]

	ownership Ownership[K]

	policy    eviction.PolicyType
	scanLimit int

	// singleflight prevents multiple goroutines from loading the same key from the backing store simultaneously.
	sf      singleflight.Group
	flights *flightKeys[K]

	closed atomic.Bool
}

// NewShardedCache builds the shards described by cfg. Capacity is divided across shards,
// rounding up, so every shard can hold at least one entry.
func NewShardedCache[K comparable, V any](
	cfg Config,
	eng *engine.CacheEngine[K, V],
	opts ...Option[K, V],
) (*ShardedCache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pt, err := eviction.ParsePolicyType(string(cfg.Policy))
	if err != nil {
		return nil, err
	}
	if eng == nil {
		eng = engine.NewCacheEngine[K, V](ExpirationFor[V](cfg), nil, nil, nil, nil, nil)
	}

	n := shard.RoundShards(cfg.Shards)
	perShard := (cfg.Capacity + n - 1) / n

	s := make([]*shard.Shard[K, V], n)
	for i := range s {
		// Each shard gets its own eviction policy instance
		p, err := eviction.New[K, V](pt, perShard)
		if err != nil {
			return nil, err
		}
		s[i] = shard.NewShard(p)
	}

	c := &ShardedCache[K, V]{
		id:        uuid.NewString(),
		shards:    s,
		engine:    eng,
		selector:  shard.NewMaskSelector[K](nil),
		policy:    pt,
		scanLimit: cfg.ExpiredScanLimit,
		flights:   newFlightKeys[K](),
	}
	for _, opt := range opts {
		opt(c)
	}

	eng.Logger.Debug("cache created",
		"id", c.id,
		"policy", string(pt),
		"shards", n,
		"capacity_per_shard", perShard,
	)
	return c, nil
}

// ID uniquely identifies this cache instance.
func (c *ShardedCache[K, V]) ID() string { return c.id }

// PolicyName returns the eviction policy in use.
func (c *ShardedCache[K, V]) PolicyName() string { return string(c.policy) }

func (c *ShardedCache[K, V]) shardFor(key K) *shard.Shard[K, V] {
	return c.shards[c.selector.Index(key, len(c.shards))]
}

func (c *ShardedCache[K, V]) owns(key K) bool {
	return c.ownership == nil || c.ownership.IsLocal(key)
}

/*
Get retrieves a value from the cache.

- Live entry: hit. The access is counted and the policy is told about it.
- Expired entry: purged on the spot and counted as a miss (lazy expiration).
- Absent: miss. With a loader, the value is fetched once (singleflight) and cached.
  Without one, types.ErrNotFound is returned.
*/
func (c *ShardedCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	var zero V
	if !c.owns(key) {
		return zero, types.ErrNotLocal
	}

	start := time.Now()
	defer func() { c.engine.Metrics.RecordLatency(time.Since(start)) }()

	sh := c.shardFor(key)

	sh.Mu.RLock()
	ent, ok := sh.Store.Get(key)
	if ok && !c.engine.IsExpired(ent) {
		sh.Eviction.OnAccess(key)
		c.engine.OnRead(key, ent)
		v := ent.Value()
		sh.Mu.RUnlock()

		c.engine.Metrics.RecordHit()
		return v, nil
	}
	sh.Mu.RUnlock()

	if ok {
		c.purgeExpired(ctx, sh, key)
	}
	c.engine.Metrics.RecordMiss()

	if !c.engine.CanLoad() {
		return zero, types.ErrNotFound
	}

	/*
		singleflight ensures that:
		- If 100 goroutines request the same missing key,
		  only ONE of them loads it from the backing store.
		- Others wait for the result.
	*/
	fk := c.flights.acquire(key)
	defer c.flights.release(key)

	res, err, _ := c.sf.Do(fk, func() (any, error) {
		v, err := c.engine.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		// Loaded values already live in the backing store; do not write them back.
		if err := c.insert(ctx, key, v, 0, false); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Put stores a value in the cache without explicit TTL.
func (c *ShardedCache[K, V]) Put(ctx context.Context, key K, value V) error {
	return c.PutWithTTL(ctx, key, value, 0)
}

// PutWithTTL stores a value that expires ttl from now. Entries with an explicit TTL are
// cache-local and are not propagated to the write policy.
func (c *ShardedCache[K, V]) PutWithTTL(ctx context.Context, key K, value V, ttl time.Duration) error {
	if !c.owns(key) {
		return types.ErrNotLocal
	}
	return c.insert(ctx, key, value, ttl, ttl <= 0)
}

func (c *ShardedCache[K, V]) insert(ctx context.Context, key K, value V, ttl time.Duration, propagate bool) error {
	if c.closed.Load() {
		return types.ErrClosed
	}

	sh := c.shardFor(key)
	now := c.engine.Now()

	var expiry time.Time
	if ttl > 0 {
		expiry = now.Add(ttl)
	}

	sh.Mu.Lock()
	if ent, ok := sh.Store.Get(key); ok {
		if !c.engine.IsExpired(ent) {
			// Refresh in place; a write counts as a touch for the policy.
			ent.SetValue(value)
			setDeadline(ent, expiry)
			c.engine.OnWrite(ent)
			sh.Eviction.OnAccess(key)
			sh.Mu.Unlock()

			if propagate {
				c.engine.Propagate(ctx, key, value)
			}
			return nil
		}
		c.purgeLocked(ctx, sh, key)
	}

	// Prefer reclaiming dead entries over evicting a live one.
	if c.scanLimit > 0 && sh.Eviction.ShouldEvict(key, value) {
		c.purgeExpiredSampleLocked(ctx, sh)
	}

	ent := types.NewEntryAt(value, time.Time{}, now)
	setDeadline(ent, expiry)
	c.engine.OnWrite(ent)
	sh.Store.Put(key, ent)

	if victim, evicted := sh.Eviction.OnInsert(key, value); evicted {
		sh.Store.Delete(victim)
		c.engine.Metrics.RecordEviction()
		c.engine.Logger.DebugContext(ctx, "evicted",
			"key", victim,
			"policy", sh.Eviction.Name(),
		)
	}
	sh.Mu.Unlock()

	if propagate {
		c.engine.Propagate(ctx, key, value)
	}
	return nil
}

// purgeExpired removes key if it is still expired once the write lock is held.
func (c *ShardedCache[K, V]) purgeExpired(ctx context.Context, sh *shard.Shard[K, V], key K) {
	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	if ent, ok := sh.Store.Get(key); ok && c.engine.IsExpired(ent) {
		c.purgeLocked(ctx, sh, key)
	}
}

// purgeLocked drops an expired entry. It is a removal, not an access. Caller holds sh.Mu.
func (c *ShardedCache[K, V]) purgeLocked(ctx context.Context, sh *shard.Shard[K, V], key K) {
	sh.Store.Delete(key)
	sh.Eviction.Remove(key)
	c.engine.Metrics.RecordExpire()
	c.engine.Logger.DebugContext(ctx, "expired entry purged", "key", key)
}

// purgeExpiredSampleLocked inspects up to scanLimit entries and purges the expired ones.
// Caller holds sh.Mu.
func (c *ShardedCache[K, V]) purgeExpiredSampleLocked(ctx context.Context, sh *shard.Shard[K, V]) int {
	var dead []K
	seen := 0
	sh.Store.Range(func(k K, ent *types.Entry[V]) bool {
		if c.engine.IsExpired(ent) {
			dead = append(dead, k)
		}
		seen++
		return seen < c.scanLimit
	})

	for _, k := range dead {
		c.purgeLocked(ctx, sh, k)
	}
	return len(dead)
}

// Remove deletes a key from the cache immediately. Removing a missing key is safe.
func (c *ShardedCache[K, V]) Remove(key K) {
	sh := c.shardFor(key)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	if _, ok := sh.Store.Get(key); ok {
		sh.Store.Delete(key)
		sh.Eviction.Remove(key)
	}
}

// Expire sets the TTL of a live key to ttl from now. It returns false when the key is
// absent or already expired.
func (c *ShardedCache[K, V]) Expire(key K, ttl time.Duration) bool {
	sh := c.shardFor(key)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	ent, ok := sh.Store.Get(key)
	if !ok {
		return false
	}
	if c.engine.IsExpired(ent) {
		c.purgeLocked(context.Background(), sh, key)
		return false
	}

	ent.SetExplicitExpiry(c.engine.Now().Add(ttl))
	return true
}

// setDeadline pins a caller supplied deadline, or clears it so the expiration
// strategy can assign its default.
func setDeadline[V any](ent *types.Entry[V], expiry time.Time) {
	if expiry.IsZero() {
		ent.SetExpiry(expiry)
		return
	}
	ent.SetExplicitExpiry(expiry)
}

/*
TTL returns remaining time-to-live of a key.

	> 0 : time left
	 -1 : key exists without a TTL
	 -2 : key is absent or expired
*/
func (c *ShardedCache[K, V]) TTL(key K) time.Duration {
	sh := c.shardFor(key)

	sh.Mu.RLock()
	defer sh.Mu.RUnlock()

	ent, ok := sh.Store.Get(key)
	if !ok || c.engine.IsExpired(ent) {
		return -2
	}

	exp := ent.Expiry()
	if exp.IsZero() {
		return -1
	}
	return exp.Sub(c.engine.Now())
}

// Len returns the number of stored entries, expired ones that were not purged yet included.
func (c *ShardedCache[K, V]) Len() int {
	n := 0
	for _, sh := range c.shards {
		sh.Mu.RLock()
		n += sh.Store.Size()
		sh.Mu.RUnlock()
	}
	return n
}

/*
Close gracefully shuts down the cache.
This is important for write-back policies, so pending writes are flushed.
Later writes fail with types.ErrClosed; reads keep working.
*/
func (c *ShardedCache[K, V]) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.engine.Close()
}
