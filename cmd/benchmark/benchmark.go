package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	cache "github.com/krisalay/policycache"
	"github.com/krisalay/policycache/engine"
	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/metrics"
)

// ================= BENCHMARK =================

type benchConfig struct {
	shards     int
	capacity   int
	keyspace   int
	goroutines int
	opsPerG    int
}

func main() {
	var (
		policy = flag.String("policy", "all", "LRU, LFU or all")
		bc     benchConfig
	)
	flag.IntVar(&bc.shards, "shards", 8, "shard count")
	flag.IntVar(&bc.capacity, "capacity", 100000, "total capacity")
	flag.IntVar(&bc.keyspace, "keys", 200000, "distinct keys; larger than capacity forces evictions")
	flag.IntVar(&bc.goroutines, "goroutines", 200, "concurrent readers")
	flag.IntVar(&bc.opsPerG, "ops", 5000, "operations per goroutine")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	policies := []eviction.PolicyType{eviction.LRU, eviction.LFU}
	if *policy != "all" {
		p, err := eviction.ParsePolicyType(*policy)
		if err != nil {
			logger.Error("invalid policy", "error", err)
			os.Exit(1)
		}
		policies = []eviction.PolicyType{p}
	}

	fmt.Println("\n================ CACHE LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards       :", bc.shards)
	fmt.Println("Capacity     :", bc.capacity)
	fmt.Println("Key Space    :", bc.keyspace)
	fmt.Println("Goroutines   :", bc.goroutines)
	fmt.Println("Ops/Goroutine:", bc.opsPerG)
	fmt.Println("---------------------------------")

	for _, p := range policies {
		if err := runPolicy(p, bc); err != nil {
			logger.Error("benchmark failed", "policy", p, "error", err)
			os.Exit(1)
		}
	}
}

func runPolicy(p eviction.PolicyType, bc benchConfig) error {
	ctx := context.Background()

	cfg := cache.DefaultConfig()
	cfg.Shards = bc.shards
	cfg.Capacity = bc.capacity
	cfg.Policy = p

	m := metrics.New()
	eng := engine.NewCacheEngine[int, int](nil, nil, nil, nil, m, nil)

	c, err := cache.NewShardedCache(cfg, eng)
	if err != nil {
		return err
	}
	defer c.Close()

	// ---------------- Load Test ----------------
	// Keys follow a skewed distribution so frequency and recency policies diverge.
	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(bc.goroutines)
	for i := 0; i < bc.goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id)))
			zipf := rand.NewZipf(r, 1.1, 1, uint64(bc.keyspace-1))
			for j := 0; j < bc.opsPerG; j++ {
				key := int(zipf.Uint64())
				if _, err := c.Get(ctx, key); err != nil {
					c.Put(ctx, key, j)
				}
			}
		}(i)
	}
	wg.Wait()

	duration := time.Since(start)
	totalOps := bc.goroutines * bc.opsPerG

	fmt.Printf("\n================ RESULTS (%s) =================\n", p)
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Hit Ratio        : %.4f\n", m.HitRatio())
	fmt.Printf("Avg Get Latency  : %v\n", m.AverageLatency())
	fmt.Printf("Evictions        : %d\n", m.Evictions())
	fmt.Println("=========================================")
	return nil
}
