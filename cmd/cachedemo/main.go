package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/redis/go-redis/v9"

	cache "github.com/krisalay/policycache"
	"github.com/krisalay/policycache/cluster"
	"github.com/krisalay/policycache/codec"
	"github.com/krisalay/policycache/engine"
	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/metrics"
	"github.com/krisalay/policycache/redisstore"
	"github.com/krisalay/policycache/types"
	"github.com/krisalay/policycache/writepolicy"
)

// ================= BACKING STORE =================

type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]string)}
}

func (s *InMemoryStore) Load(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", types.ErrNotFound
	}
	return v, nil
}

func (s *InMemoryStore) Put(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// ================= MAIN =================

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file; defaults are used when empty")
		policy     = flag.String("policy", "", "eviction policy override (LRU or LFU)")
		workers    = flag.Int("workers", 5, "concurrent workers")
		ops        = flag.Int("ops", 100, "operations per worker")
		keys       = flag.Int("keys", 64, "distinct keys touched by workers")
		redisAddr  = flag.String("redis", "", "Redis address used as backing store instead of memory")
		self       = flag.String("self", "127.0.0.1:7000", "address of this node")
		peers      = flag.String("peers", "", "comma separated peer addresses; keys they own are rejected")
		writeBack  = flag.Bool("write-back", true, "propagate writes asynchronously")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *configPath, *policy, *workers, *ops, *keys, *redisAddr, *self, *peers, *writeBack); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath, policy string, workers, ops, keys int, redisAddr, self, peers string, writeBack bool) error {
	ctx := context.Background()

	// ---------------- Config ----------------
	cfg := cache.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = cache.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if policy != "" {
		p, err := eviction.ParsePolicyType(policy)
		if err != nil {
			return err
		}
		cfg.Policy = p
	}

	// ---------------- Backing Store ----------------
	var (
		store  types.Loader[string, string]
		remote *redisstore.Store[string, string]
	)
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer client.Close()
		remote = redisstore.New[string, string](client, codec.JSON[string]{},
			redisstore.WithPrefix[string, string]("cachedemo:"))
		store = remote
		logger.Info("using redis backing store", "addr", redisAddr)
	} else {
		mem := NewInMemoryStore()
		for i := 0; i < keys/2; i++ {
			mem.data[fmt.Sprintf("key-%d", i)] = fmt.Sprintf("stored-%d", i)
		}
		store = mem
	}

	// ---------------- Metrics ----------------
	m := metrics.New()
	m.Publish("policycache")

	// ---------------- Cache Engine ----------------
	var wp writepolicy.WritePolicy[string, string]
	if writeBack {
		wp = writepolicy.NewWriteBackPolicy(store, 1024, logger)
	} else {
		wp = writepolicy.NewWriteThroughPolicy(store, logger)
	}
	eng := engine.NewCacheEngine(cache.ExpirationFor[string](cfg), nil, store, wp, m, logger)

	var opts []cache.Option[string, string]
	if peers != "" {
		mgr := cluster.NewManager(self, logger)
		for _, addr := range strings.Split(peers, ",") {
			if err := mgr.AddNode(cluster.NewTCPNode(strings.TrimSpace(addr), time.Second)); err != nil {
				return err
			}
		}
		mgr.Refresh(ctx)
		logger.Info("cluster ready", "local", mgr.LocalAddress(), "id", mgr.ID(), "members", mgr.Members())
		opts = append(opts, cache.WithOwnership[string, string](mgr))
	}

	c, err := cache.NewShardedCache(cfg, eng, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("cache started",
		"id", c.ID(),
		"policy", c.PolicyName(),
		"shards", cfg.Shards,
		"capacity", cfg.Capacity,
		"default_ttl", cfg.DefaultTTL,
	)

	// ---------------- Workload ----------------
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(id)))
			for i := 0; i < ops; i++ {
				key := fmt.Sprintf("key-%d", r.Intn(keys))
				_, err := c.Get(ctx, key)
				switch {
				case err == nil:
				case types.IsNotFound(err):
					if err := c.Put(ctx, key, fmt.Sprintf("worker-%d", id)); err != nil {
						logger.Warn("put failed", "key", key, "error", err)
					}
				case errors.GetCode(err) == types.CodeNotLocal:
				default:
					logger.Warn("get failed", "key", key, "error", err)
				}
			}
		}(w)
	}
	wg.Wait()

	// ---------------- Report ----------------
	fmt.Println("\n==================== METRICS ====================")
	fmt.Printf("OPERATIONS : %d\n", m.TotalOperations())
	fmt.Printf("HIT RATIO  : %.2f\n", m.HitRatio())
	fmt.Printf("AVG LATENCY: %s\n", m.AverageLatency())
	fmt.Printf("EVICTIONS  : %d\n", m.Evictions())
	fmt.Printf("ENTRIES    : %d\n", c.Len())

	b, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))

	// Leave the shared Redis clean once write-back has drained.
	if remote != nil {
		c.Close()
		for i := 0; i < keys; i++ {
			if err := remote.Delete(ctx, fmt.Sprintf("key-%d", i)); err != nil {
				logger.Warn("redis cleanup failed", "error", err)
				break
			}
		}
	}
	return nil
}
