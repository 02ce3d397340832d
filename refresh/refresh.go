// Package refresh lets callers react to cache reads, for example to reload an
// entry in the background before it expires.
package refresh

import (
	"time"

	"github.com/krisalay/policycache/types"
)

/*
Hook is invoked on every cache hit, while the shard read lock is held.

Implementations must return quickly and must not call back into the cache;
anything slow belongs in a goroutine they start themselves.
*/
type Hook[K comparable, V any] interface {
	// OnRead reports whether it triggered a refresh for key.
	OnRead(key K, ent *types.Entry[V]) bool
}

// Func adapts a plain function to Hook.
type Func[K comparable, V any] func(key K, ent *types.Entry[V]) bool

func (f Func[K, V]) OnRead(key K, ent *types.Entry[V]) bool { return f(key, ent) }

// Ahead calls Trigger for entries read within Window of their deadline.
// Entries without a deadline never trigger.
type Ahead[K comparable, V any] struct {
	Window  time.Duration
	Trigger func(key K)

	// Now defaults to time.Now.
	Now func() time.Time
}

func (a *Ahead[K, V]) OnRead(key K, ent *types.Entry[V]) bool {
	exp := ent.Expiry()
	if exp.IsZero() || a.Trigger == nil {
		return false
	}
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	if exp.Sub(now()) > a.Window {
		return false
	}
	a.Trigger(key)
	return true
}
