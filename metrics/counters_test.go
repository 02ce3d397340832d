package metrics

import (
	"encoding/json"
	"expvar"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters_Empty(t *testing.T) {
	c := New()
	assert.Zero(t, c.HitRatio())
	assert.Zero(t, c.AverageLatency())
	assert.Zero(t, c.TotalOperations())
	assert.Equal(t, Snapshot{}, c.Snapshot())
}

func TestCounters_Ratios(t *testing.T) {
	c := New()
	c.RecordHit()
	c.RecordHit()
	c.RecordHit()
	c.RecordMiss()
	c.RecordLatency(10 * time.Millisecond)
	c.RecordLatency(30 * time.Millisecond)
	c.RecordLatency(-time.Second)
	c.RecordEviction()
	c.RecordExpire()
	c.RecordRefresh()

	assert.Equal(t, uint64(4), c.TotalOperations())
	assert.InDelta(t, 0.75, c.HitRatio(), 1e-9)
	assert.Equal(t, 10*time.Millisecond, c.AverageLatency())
	assert.Equal(t, 40*time.Millisecond, c.TotalLatency())

	s := c.Snapshot()
	assert.Equal(t, uint64(3), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.Evictions)
	assert.Equal(t, uint64(1), s.Expirations)
	assert.Equal(t, uint64(1), s.Refreshes)
	assert.Equal(t, c.HitRatio(), s.HitRatio)
	assert.Equal(t, c.AverageLatency(), s.AverageLatency)
}

func TestCounters_HitRatioBounds(t *testing.T) {
	for hits := 0; hits < 5; hits++ {
		for misses := 0; misses < 5; misses++ {
			c := New()
			for i := 0; i < hits; i++ {
				c.RecordHit()
			}
			for i := 0; i < misses; i++ {
				c.RecordMiss()
			}
			r := c.HitRatio()
			assert.GreaterOrEqual(t, r, 0.0)
			assert.LessOrEqual(t, r, 1.0)
		}
	}
}

func TestCounters_ConcurrentMonotonic(t *testing.T) {
	c := New()
	const workers, ops = 8, 500

	done := make(chan struct{})
	var (
		watch     sync.WaitGroup
		regressed bool
	)
	watch.Add(1)
	go func() {
		defer watch.Done()
		var lastH, lastM, lastE uint64
		for {
			select {
			case <-done:
				return
			default:
			}
			h, m, e := c.Hits(), c.Misses(), c.Evictions()
			if h < lastH || m < lastM || e < lastE {
				regressed = true
			}
			lastH, lastM, lastE = h, m, e
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				if (i+w)%2 == 0 {
					c.RecordHit()
				} else {
					c.RecordMiss()
				}
				c.RecordEviction()
				c.RecordLatency(time.Microsecond)
			}
		}(w)
	}
	wg.Wait()
	close(done)
	watch.Wait()

	assert.False(t, regressed)
	assert.Equal(t, uint64(workers*ops), c.TotalOperations())
	assert.Equal(t, uint64(workers*ops), c.Evictions())
	assert.Equal(t, time.Microsecond, c.AverageLatency())
}

func TestCounters_Publish(t *testing.T) {
	c := New()
	c.RecordHit()
	c.Publish("policycache_test_counters")

	v := expvar.Get("policycache_test_counters")
	require.NotNil(t, v)

	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(v.String()), &s))
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, 1.0, s.HitRatio)
}
