package types

import "time"

// This file defines how the cache reports what it is doing.

/*
Metrics is the sink the cache reports outcomes to.
Each method represents an event in the cache lifecycle. Implementations must be safe for
concurrent use and must never block: they are called on the hit/miss path.
*/
type Metrics interface {

	// RecordHit is called when the cache successfully returns a live value.
	RecordHit()

	// RecordMiss is called when the key is absent or expired.
	RecordMiss()

	// RecordEviction is called when the policy names a victim because the shard is full.
	RecordEviction()

	// RecordExpire is called when an entry is purged because it has passed its expiry.
	RecordExpire()

	// RecordRefresh is called when a refresh hook is triggered.
	RecordRefresh()

	// RecordLatency accumulates the duration of one Get.
	RecordLatency(time.Duration)
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

We don't want to force every user of the cache to implement metrics, and we don't want
nil checks on the hot path. The engine falls back to this when no sink is configured.
*/
type NoopMetrics struct{}

func (NoopMetrics) RecordHit()                  {}
func (NoopMetrics) RecordMiss()                 {}
func (NoopMetrics) RecordEviction()             {}
func (NoopMetrics) RecordExpire()               {}
func (NoopMetrics) RecordRefresh()              {}
func (NoopMetrics) RecordLatency(time.Duration) {}
