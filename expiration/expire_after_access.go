package expiration

import (
	"time"

	"github.com/krisalay/policycache/types"
)

// ExpireAfterAccess is a sliding deadline: each hit moves it to now + TTL, so an
// entry lives as long as it keeps being read.
type ExpireAfterAccess[V any] struct {
	TTL time.Duration
}

func (e *ExpireAfterAccess[V]) IsExpired(ent *types.Entry[V], now time.Time) bool {
	return Expired(ent, now)
}

// OnAccess pushes a default deadline forward by TTL. Explicit deadlines do not slide.
func (e *ExpireAfterAccess[V]) OnAccess(ent *types.Entry[V], now time.Time) {
	if ent.ExplicitExpiry() {
		return
	}
	ent.SetExpiry(now.Add(e.TTL))
}

// OnWrite starts the clock for entries without an explicit deadline. An explicit
// TTL from PutWithTTL or Expire is left untouched.
func (e *ExpireAfterAccess[V]) OnWrite(ent *types.Entry[V], now time.Time) {
	if ent.Expiry().IsZero() {
		ent.SetExpiry(now.Add(e.TTL))
	}
}
