// This file implements LFU eviction.

package eviction

import (
	"math"
	"sync"
)

type lfu[K comparable, V any] struct {
	mu sync.Mutex

	// freq records how many times each tracked key was inserted or accessed
	freq map[K]uint64

	// buckets groups keys by frequency. A bucket only exists while it holds at least one key.
	buckets map[uint64]map[K]struct{}

	// minFreq keeps track of the smallest frequency currently present in the cache.
	// This avoids scanning the buckets on eviction. After Remove it may point at a
	// bucket that no longer exists; victim selection corrects it first.
	minFreq uint64

	maxSize int
}

func newLFU[K comparable, V any](maxSize int) *lfu[K, V] {
	return &lfu[K, V]{
		freq:    make(map[K]uint64),
		buckets: make(map[uint64]map[K]struct{}),
		maxSize: maxSize,
	}
}

func (l *lfu[K, V]) Name() string { return string(LFU) }

func (l *lfu[K, V]) MaxSize() int { return l.maxSize }

func (l *lfu[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.freq)
}

func (l *lfu[K, V]) ShouldEvict(K, V) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.freq) >= l.maxSize
}

// OnInsert tracks key with frequency 1.
// Re-inserting a tracked key resets it to frequency 1; it is never tracked twice.
// If the population grew past capacity, ANY key with the lowest frequency is evicted.
// Keys sharing that frequency are picked arbitrarily.
func (l *lfu[K, V]) OnInsert(k K, _ V) (K, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if old, ok := l.freq[k]; ok {
		l.unbucket(k, old)
	}

	var (
		victim  K
		evicted bool
	)

	// Select the victim before k joins bucket 1 so a fresh key never evicts itself.
	if _, tracked := l.freq[k]; !tracked && len(l.freq) >= l.maxSize {
		victim, evicted = l.evict()
	}

	l.freq[k] = 1
	l.bucket(k, 1)

	// Since a key with freq=1 exists, minFreq must be 1
	l.minFreq = 1

	return victim, evicted
}

// OnAccess moves key from its bucket to the next one up.
func (l *lfu[K, V]) OnAccess(k K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	old, ok := l.freq[k]
	if !ok {
		// Key not tracked; nothing to do
		return
	}
	if old == math.MaxUint64 {
		// Saturated
		return
	}

	l.unbucket(k, old)

	// If that bucket became empty and was the minimum, the key's new bucket is the minimum.
	if l.minFreq == old && l.buckets[old] == nil {
		l.minFreq = old + 1
	}

	l.freq[k] = old + 1
	l.bucket(k, old+1)

	// A Remove may have left minFreq stale; never leave an access with it pointing at nothing.
	l.fixMinFreq()
}

// Remove is called when a key is explicitly removed (not because of eviction).
func (l *lfu[K, V]) Remove(k K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.freq[k]
	if !ok {
		return
	}
	l.unbucket(k, f)
	delete(l.freq, k)
}

// MinFrequency returns the smallest frequency with at least one tracked key, or 0 when empty.
func (l *lfu[K, V]) MinFrequency() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.freq) == 0 {
		return 0
	}
	l.fixMinFreq()
	return l.minFreq
}

// Frequency returns the recorded frequency of k, or 0 if k is not tracked.
func (l *lfu[K, V]) Frequency(k K) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.freq[k]
}

// evict drops one key from the minimum frequency bucket. Caller holds mu.
func (l *lfu[K, V]) evict() (K, bool) {
	var zero K
	if len(l.freq) == 0 {
		return zero, false
	}
	l.fixMinFreq()

	for k := range l.buckets[l.minFreq] {
		l.unbucket(k, l.minFreq)
		delete(l.freq, k)
		return k, true
	}
	return zero, false
}

// fixMinFreq moves minFreq to the smallest non-empty bucket if Remove left it stale.
func (l *lfu[K, V]) fixMinFreq() {
	if l.buckets[l.minFreq] != nil {
		return
	}
	first := true
	for f := range l.buckets {
		if first || f < l.minFreq {
			l.minFreq = f
			first = false
		}
	}
}

func (l *lfu[K, V]) bucket(k K, f uint64) {
	b := l.buckets[f]
	if b == nil {
		b = make(map[K]struct{})
		l.buckets[f] = b
	}
	b[k] = struct{}{}
}

// unbucket removes k from bucket f, deleting the bucket once it is empty.
func (l *lfu[K, V]) unbucket(k K, f uint64) {
	b := l.buckets[f]
	delete(b, k)
	if len(b) == 0 {
		delete(l.buckets, f)
	}
}
