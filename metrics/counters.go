// Package metrics collects aggregate cache counters.
package metrics

import (
	"expvar"
	"time"

	"go.uber.org/atomic"

	"github.com/krisalay/policycache/types"
)

var _ types.Metrics = (*Counters)(nil)

// Counters is a process-wide Metrics sink.
//
// Each counter is an independent atomic; no lock is shared with shards or policies, so
// recording never waits on policy work. Counters are never decremented.
type Counters struct {
	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
	refreshes   atomic.Uint64
	latency     atomic.Duration
}

// New returns zeroed counters.
func New() *Counters { return &Counters{} }

func (c *Counters) RecordHit()      { c.hits.Inc() }
func (c *Counters) RecordMiss()     { c.misses.Inc() }
func (c *Counters) RecordEviction() { c.evictions.Inc() }
func (c *Counters) RecordExpire()   { c.expirations.Inc() }
func (c *Counters) RecordRefresh()  { c.refreshes.Inc() }

// RecordLatency adds d to the cumulative latency. Negative durations are ignored.
func (c *Counters) RecordLatency(d time.Duration) {
	if d > 0 {
		c.latency.Add(d)
	}
}

func (c *Counters) Hits() uint64        { return c.hits.Load() }
func (c *Counters) Misses() uint64      { return c.misses.Load() }
func (c *Counters) Evictions() uint64   { return c.evictions.Load() }
func (c *Counters) Expirations() uint64 { return c.expirations.Load() }
func (c *Counters) Refreshes() uint64   { return c.refreshes.Load() }

func (c *Counters) TotalLatency() time.Duration { return c.latency.Load() }

// TotalOperations is hits plus misses.
func (c *Counters) TotalOperations() uint64 {
	return c.hits.Load() + c.misses.Load()
}

// HitRatio returns hits / (hits + misses), or 0 when nothing has been recorded.
func (c *Counters) HitRatio() float64 {
	h := c.hits.Load()
	total := h + c.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(h) / float64(total)
}

// AverageLatency divides the cumulative latency by the number of operations.
// It returns zero when no operations have been recorded.
func (c *Counters) AverageLatency() time.Duration {
	total := c.TotalOperations()
	if total == 0 {
		return 0
	}
	return c.latency.Load() / time.Duration(total)
}

// Snapshot is a point-in-time copy of the counters for reporting.
// Fields are read independently, so a snapshot taken under load is not a single atomic cut.
type Snapshot struct {
	Hits            uint64        `json:"hits"`
	Misses          uint64        `json:"misses"`
	Evictions       uint64        `json:"evictions"`
	Expirations     uint64        `json:"expirations"`
	Refreshes       uint64        `json:"refreshes"`
	TotalOperations uint64        `json:"total_operations"`
	HitRatio        float64       `json:"hit_ratio"`
	AverageLatency  time.Duration `json:"average_latency_ns"`
}

func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Refreshes:   c.refreshes.Load(),
	}
	s.TotalOperations = s.Hits + s.Misses
	if s.TotalOperations > 0 {
		s.HitRatio = float64(s.Hits) / float64(s.TotalOperations)
		s.AverageLatency = c.latency.Load() / time.Duration(s.TotalOperations)
	}
	return s
}

// Publish exposes the counters under name in expvar (/debug/vars) so an external
// reporting loop can poll them. Like expvar.Publish it panics if name is already taken.
func (c *Counters) Publish(name string) {
	expvar.Publish(name, expvar.Func(func() any { return c.Snapshot() }))
}
