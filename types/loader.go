package types

import "context"

// Loader is a backing store the cache can read from and write to.
// redisstore.Store is the bundled implementation.
type Loader[K comparable, V any] interface {

	/*
		Load fetches key after a cache miss. The result is cached by the caller, which
		also makes sure concurrent misses on the same key share one Load.

		A key the store does not hold must be reported as ErrNotFound so the cache can
		tell "absent" apart from "store unavailable".
	*/
	Load(ctx context.Context, key K) (V, error)

	// Put persists value in the store. Write policies call it; the cache never
	// calls it for values that came from Load.
	Put(ctx context.Context, key K, value V) error
}
