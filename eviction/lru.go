// This file implements LRU eviction.

package eviction

import "sync"

// nilSlot marks the absence of a neighbour in the recency list.
const nilSlot int32 = -1

// lruSlot represents ONE key inside the LRU structure.
//
// Slots live in an arena and point at each other by index, so the key index and the
// recency list share stable integer handles instead of pointers.
type lruSlot[K comparable] struct {
	key K

	// prev is the slot used just after this one (towards head)
	prev int32

	// next is the slot used just before this one (towards tail)
	next int32
}

// lru is the concrete implementation of the LRU eviction policy.
type lru[K comparable, V any] struct {
	mu sync.Mutex

	// slots is the arena. Freed slots are recycled through free.
	slots []lruSlot[K]
	free  []int32

	// index maps cache keys to their arena slot.
	// This allows us to find and move slots in O(1) time.
	index map[K]int32

	// head is the MOST recently used slot, tail the LEAST recently used one.
	head int32
	tail int32

	maxSize int
}

func newLRU[K comparable, V any](maxSize int) *lru[K, V] {
	return &lru[K, V]{
		index:   make(map[K]int32),
		head:    nilSlot,
		tail:    nilSlot,
		maxSize: maxSize,
	}
}

func (l *lru[K, V]) Name() string { return string(LRU) }

func (l *lru[K, V]) MaxSize() int { return l.maxSize }

func (l *lru[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.index)
}

// ShouldEvict reports whether the list is already full.
func (l *lru[K, V]) ShouldEvict(K, V) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.index) >= l.maxSize
}

// OnInsert pushes key to the front (most recently used).
// A key that is already tracked is promoted instead of being tracked twice.
// If the list grew past capacity, the tail is dropped and returned.
func (l *lru[K, V]) OnInsert(k K, _ V) (K, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[k]; ok {
		l.moveToFront(i)
		var zero K
		return zero, false
	}

	i := l.alloc(k)
	l.index[k] = i
	l.addFront(i)

	if len(l.index) <= l.maxSize {
		var zero K
		return zero, false
	}

	// Least recently used key
	victim := l.tail
	vk := l.slots[victim].key
	l.unlink(victim)
	delete(l.index, vk)
	l.release(victim)
	return vk, true
}

// OnAccess is called whenever a key is read from the cache. If a key is accessed, it becomes "recently used".
// So we: Find its slot and move it to the front of the list
func (l *lru[K, V]) OnAccess(k K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[k]; ok {
		l.moveToFront(i)
	}
}

// Remove is called when a key is explicitly removed or purged (not evicted due to capacity).
// This keeps LRU’s internal state consistent.
func (l *lru[K, V]) Remove(k K) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.index[k]; ok {
		l.unlink(i)
		delete(l.index, k)
		l.release(i)
	}
}

// Keys returns the tracked keys from most to least recently used.
func (l *lru[K, V]) Keys() []K {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]K, 0, len(l.index))
	for i := l.head; i != nilSlot; i = l.slots[i].next {
		keys = append(keys, l.slots[i].key)
	}
	return keys
}

func (l *lru[K, V]) alloc(k K) int32 {
	if n := len(l.free); n > 0 {
		i := l.free[n-1]
		l.free = l.free[:n-1]
		l.slots[i] = lruSlot[K]{key: k, prev: nilSlot, next: nilSlot}
		return i
	}
	l.slots = append(l.slots, lruSlot[K]{key: k, prev: nilSlot, next: nilSlot})
	return int32(len(l.slots) - 1)
}

// release clears the slot so the arena does not pin the key, then recycles it.
func (l *lru[K, V]) release(i int32) {
	l.slots[i] = lruSlot[K]{prev: nilSlot, next: nilSlot}
	l.free = append(l.free, i)
}

// addFront adds a slot to the front of the list. This marks it as "most recently used".
func (l *lru[K, V]) addFront(i int32) {
	s := &l.slots[i]
	s.prev = nilSlot
	s.next = l.head
	if l.head != nilSlot {
		l.slots[l.head].prev = i
	}
	l.head = i

	// If the list was empty, head and tail are the same
	if l.tail == nilSlot {
		l.tail = i
	}
}

// unlink removes a slot from the list, fixing up its neighbours and head/tail.
func (l *lru[K, V]) unlink(i int32) {
	s := &l.slots[i]
	if s.prev != nilSlot {
		l.slots[s.prev].next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nilSlot {
		l.slots[s.next].prev = s.prev
	} else {
		l.tail = s.prev
	}
	s.prev, s.next = nilSlot, nilSlot
}

func (l *lru[K, V]) moveToFront(i int32) {
	if l.head == i {
		return
	}
	l.unlink(i)
	l.addFront(i)
}
