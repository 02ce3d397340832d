package types

import (
	"math"
	"time"

	"go.uber.org/atomic"
)

/*
Entry wraps a cached value with its absolute expiry and access bookkeeping.

Entry is a passive record. It never decides whether it is expired; the engine compares
the expiry against the clock at lookup time (lazy expiration).

Concurrency:
------------
- Value is only replaced while the owning shard holds its write lock.
- Expiry, last access and the access counter are atomics so the read path can update them
  while holding only the shard read lock.
*/
type Entry[V any] struct {
	value     V
	createdAt time.Time

	expireAt       atomic.Time // zero => no TTL
	explicit       atomic.Bool // expireAt came from the caller, not a strategy
	lastAccessedAt atomic.Time
	accessCount    atomic.Uint64
}

// NewEntry creates an entry stamped with the current time and an access count of zero.
func NewEntry[V any](value V, expiry time.Time) *Entry[V] {
	return NewEntryAt(value, expiry, time.Now())
}

// NewEntryAt is NewEntry with an explicit creation time, used by engines with an injected clock.
func NewEntryAt[V any](value V, expiry, now time.Time) *Entry[V] {
	e := &Entry[V]{value: value, createdAt: now}
	e.expireAt.Store(expiry)
	e.lastAccessedAt.Store(now)
	return e
}

// Value returns the stored value. It does not count as an access.
func (e *Entry[V]) Value() V { return e.value }

// SetValue replaces the stored value in place.
func (e *Entry[V]) SetValue(v V) { e.value = v }

func (e *Entry[V]) Expiry() time.Time { return e.expireAt.Load() }

// SetExpiry replaces the absolute deadline with a default one that strategies may
// move. A zero time removes the TTL.
func (e *Entry[V]) SetExpiry(t time.Time) {
	e.explicit.Store(false)
	e.expireAt.Store(t)
}

// SetExplicitExpiry pins the deadline to t. Strategies leave pinned deadlines alone.
func (e *Entry[V]) SetExplicitExpiry(t time.Time) {
	e.explicit.Store(true)
	e.expireAt.Store(t)
}

// ExplicitExpiry reports whether the deadline was set by SetExplicitExpiry.
func (e *Entry[V]) ExplicitExpiry() bool { return e.explicit.Load() }

func (e *Entry[V]) CreatedAt() time.Time { return e.createdAt }

func (e *Entry[V]) LastAccessedAt() time.Time { return e.lastAccessedAt.Load() }

// Touch records a read at now.
func (e *Entry[V]) Touch(now time.Time) { e.lastAccessedAt.Store(now) }

// IncrementAccessCount bumps the access counter, saturating at math.MaxUint64.
func (e *Entry[V]) IncrementAccessCount() {
	for {
		n := e.accessCount.Load()
		if n == math.MaxUint64 {
			return
		}
		if e.accessCount.CompareAndSwap(n, n+1) {
			return
		}
	}
}

func (e *Entry[V]) AccessCount() uint64 { return e.accessCount.Load() }
