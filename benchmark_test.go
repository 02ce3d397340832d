package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	cache "github.com/krisalay/policycache"
	"github.com/krisalay/policycache/engine"
	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/metrics"
	"github.com/krisalay/policycache/writepolicy"
)

func newBenchmarkCache(b *testing.B, policy eviction.PolicyType) *cache.ShardedCache[string, int] {
	b.Helper()

	store := NewTestStore()
	writePolicy := writepolicy.NewWriteBackPolicy[string, int](store, 1024, nil)
	eng := engine.NewCacheEngine[string, int](nil, nil, store, writePolicy, metrics.New(), nil)

	cfg := cache.DefaultConfig()
	cfg.Shards = 8
	cfg.Capacity = 100000
	cfg.Policy = policy

	c, err := cache.NewShardedCache(cfg, eng)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(c.Close)
	return c
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkCacheGetHit(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	c.Put(ctx, "key", 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "key")
	}
}

func BenchmarkCacheGetMiss(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, fmt.Sprintf("miss-%d", i))
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkCacheParallelGet(b *testing.B) {
	for _, policy := range []eviction.PolicyType{eviction.LRU, eviction.LFU} {
		b.Run(string(policy), func(b *testing.B) {
			ctx := context.Background()
			c := newBenchmarkCache(b, policy)

			for i := 0; i < 1000; i++ {
				c.Put(ctx, fmt.Sprintf("key-%d", i), i)
			}

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					c.Get(ctx, "key-42")
				}
			})
		})
	}
}

//
// ================= WRITE BENCH =================
//

func BenchmarkCachePut(b *testing.B) {
	for _, policy := range []eviction.PolicyType{eviction.LRU, eviction.LFU} {
		b.Run(string(policy), func(b *testing.B) {
			ctx := context.Background()
			c := newBenchmarkCache(b, policy)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c.Put(ctx, fmt.Sprintf("key-%d", i), i)
			}
		})
	}
}

//
// ================= HIGH CONCURRENCY TEST =================
//

func BenchmarkCacheHighConcurrency(b *testing.B) {
	ctx := context.Background()
	c := newBenchmarkCache(b, eviction.LRU)

	keys := make([]string, 10000)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
		c.Put(ctx, keys[i], i)
	}

	b.ResetTimer()

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < b.N/100; j++ {
				c.Get(ctx, keys[j%len(keys)])
			}
		}()
	}
	wg.Wait()
}
