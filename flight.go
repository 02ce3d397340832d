package cache

import (
	"strconv"
	"sync"
)

// flightKeys maps cache keys to singleflight keys. Equal keys share one token
// while any caller holds it and distinct keys never share one, whatever their
// printed form. String caches use the key itself.
type flightKeys[K comparable] struct {
	direct bool

	mu   sync.Mutex
	next uint64
	live map[K]*flightToken
}

type flightToken struct {
	id   string
	refs int
}

func newFlightKeys[K comparable]() *flightKeys[K] {
	var zero K
	_, direct := any(zero).(string)
	return &flightKeys[K]{direct: direct, live: make(map[K]*flightToken)}
}

// acquire returns the flight key for k. Every acquire must be paired with release.
func (f *flightKeys[K]) acquire(k K) string {
	if f.direct {
		return any(k).(string)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.live[k]
	if !ok {
		f.next++
		t = &flightToken{id: strconv.FormatUint(f.next, 10)}
		f.live[k] = t
	}
	t.refs++
	return t.id
}

func (f *flightKeys[K]) release(k K) {
	if f.direct {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.live[k]; ok {
		t.refs--
		if t.refs == 0 {
			delete(f.live, k)
		}
	}
}

// inflight counts keys currently holding a token.
func (f *flightKeys[K]) inflight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}
