package expiration

import (
	"time"

	"github.com/krisalay/policycache/types"
)

// ExpireAfterWrite gives every entry without an explicit TTL a fixed lifetime counted
// from its last write. Reads never extend it.
type ExpireAfterWrite[V any] struct {
	TTL time.Duration
}

func (e *ExpireAfterWrite[V]) IsExpired(ent *types.Entry[V], now time.Time) bool {
	return Expired(ent, now)
}

func (e *ExpireAfterWrite[V]) OnAccess(*types.Entry[V], time.Time) {}

func (e *ExpireAfterWrite[V]) OnWrite(ent *types.Entry[V], now time.Time) {
	if ent.Expiry().IsZero() && e.TTL > 0 {
		ent.SetExpiry(now.Add(e.TTL))
	}
}
