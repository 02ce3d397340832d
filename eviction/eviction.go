package eviction

import (
	"strings"

	"github.com/jmgilman/go/errors"
)

/*
This file defines how the cache decides what to remove when it runs out of space.
*/

/*
Policy is the interface that all eviction strategies must follow.

The cache does NOT care how eviction works internally. It only calls these methods.

Every method is safe for concurrent use. Each policy instance guards its bookkeeping with
a single mutex held for the whole call, and no call blocks on anything else. Callers that
also hold their own lock (a shard) must always take that lock first.
*/
type Policy[K comparable, V any] interface {

	// ShouldEvict reports whether admitting key would push the tracked population
	// to or over the capacity. The key does not need to be tracked already.
	ShouldEvict(key K, value V) bool

	// OnInsert records key as present.
	//
	// If the tracked population now exceeds the capacity, exactly one victim is
	// dropped from the policy's own structures and returned. The caller is
	// responsible for removing the matching entry from storage.
	OnInsert(key K, value V) (victim K, evicted bool)

	// OnAccess is called whenever a tracked key is read or refreshed.
	// It is a no-op for keys the policy does not track.
	OnAccess(key K)

	// Remove drops key without counting it as an access.
	// Used for explicit removal and for purging expired entries.
	Remove(key K)

	// Name identifies the policy in logs and diagnostics.
	Name() string

	// Len returns the number of tracked keys.
	Len() int

	// MaxSize returns the capacity the policy was built with.
	MaxSize() int
}

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRU (Least Recently Used): Evicts the key that has NOT been accessed for the longest time.
	LRU PolicyType = "LRU"

	// LFU (Least Frequently Used): Evicts the key that has been accessed the fewest times.
	// This works well when:
	// - Some keys are consistently hot
	// - Some keys are rarely used
	LFU PolicyType = "LFU"
)

// New is a small factory function.
// Given a PolicyType and a capacity, it creates the correct eviction policy.
//
// A capacity below one or an unknown type is a configuration error. It is reported
// here, once, so that the policy operations themselves can never fail.
func New[K comparable, V any](t PolicyType, maxSize int) (Policy[K, V], error) {
	if maxSize < 1 {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "eviction policy capacity must be at least 1, got %d", maxSize),
			"policy", string(t),
		)
	}

	switch t {
	case LRU:
		return newLRU[K, V](maxSize), nil
	case LFU:
		return newLFU[K, V](maxSize), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown eviction policy %q", string(t))
	}
}

// ParsePolicyType maps a user supplied name ("lru", "LFU", ...) to a PolicyType.
func ParsePolicyType(s string) (PolicyType, error) {
	switch PolicyType(strings.ToUpper(strings.TrimSpace(s))) {
	case LRU:
		return LRU, nil
	case LFU:
		return LFU, nil
	}
	return "", errors.Newf(errors.CodeInvalidConfig, "unknown eviction policy %q", s)
}

