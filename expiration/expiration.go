// Package expiration decides when an entry has outlived its deadline.
package expiration

import (
	"time"

	"github.com/krisalay/policycache/types"
)

/*
Strategy sets entry deadlines on write and read, and judges them.

Checks are lazy: an expired entry stays in memory until a lookup, a write to the
same key, or an eviction scan of a full shard runs into it.
*/
type Strategy[V any] interface {

	// IsExpired reports whether ent is dead at now.
	IsExpired(*types.Entry[V], time.Time) bool

	// OnAccess runs after a successful read.
	OnAccess(*types.Entry[V], time.Time)

	// OnWrite runs after an insert or an in-place update.
	OnWrite(*types.Entry[V], time.Time)
}

// Expired is the deadline rule shared by all strategies: an entry with a non-zero
// expiry is dead once now reaches it.
func Expired[V any](ent *types.Entry[V], now time.Time) bool {
	exp := ent.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}
