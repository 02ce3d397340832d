package cache

import (
	"os"
	"time"

	"github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/krisalay/policycache/eviction"
	"github.com/krisalay/policycache/expiration"
)

// Config sizes and shapes a ShardedCache.
type Config struct {
	// Shards is rounded up to a power of two.
	Shards int `yaml:"shards"`

	// Capacity is the total number of entries, split evenly across shards.
	Capacity int `yaml:"capacity"`

	// Policy selects LRU or LFU eviction.
	Policy eviction.PolicyType `yaml:"policy"`

	// DefaultTTL applies to writes without an explicit TTL. Zero means no expiry.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// SlidingTTL makes DefaultTTL restart on every read (expire after access).
	SlidingTTL bool `yaml:"sliding_ttl"`

	// ExpiredScanLimit bounds how many entries an insert into a full shard inspects
	// for expired entries before asking the policy for a victim. Zero disables the scan.
	ExpiredScanLimit int `yaml:"expired_scan_limit"`
}

// DefaultConfig returns a small LRU configuration.
func DefaultConfig() Config {
	return Config{
		Shards:           16,
		Capacity:         1024,
		Policy:           eviction.LRU,
		ExpiredScanLimit: 16,
	}
}

// Validate rejects configurations that would make a policy unable to hold a single key.
func (c Config) Validate() error {
	if c.Shards < 1 {
		return errors.Newf(errors.CodeInvalidConfig, "shards must be at least 1, got %d", c.Shards)
	}
	if c.Capacity < 1 {
		return errors.Newf(errors.CodeInvalidConfig, "capacity must be at least 1, got %d", c.Capacity)
	}
	if _, err := eviction.ParsePolicyType(string(c.Policy)); err != nil {
		return err
	}
	if c.DefaultTTL < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "default_ttl must not be negative, got %s", c.DefaultTTL)
	}
	if c.SlidingTTL && c.DefaultTTL == 0 {
		return errors.New(errors.CodeInvalidConfig, "sliding_ttl requires a default_ttl")
	}
	if c.ExpiredScanLimit < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "expired_scan_limit must not be negative, got %d", c.ExpiredScanLimit)
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithContext(errors.Wrap(err, errors.CodeInvalidConfig, "read config"), "path", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.WithContext(errors.Wrap(err, errors.CodeInvalidConfig, "parse config"), "path", path)
	}

	p, err := eviction.ParsePolicyType(string(cfg.Policy))
	if err != nil {
		return cfg, err
	}
	cfg.Policy = p

	return cfg, cfg.Validate()
}

// ExpirationFor returns the expiration strategy described by cfg, or nil when entries
// only expire through explicit TTLs.
func ExpirationFor[V any](cfg Config) expiration.Strategy[V] {
	switch {
	case cfg.DefaultTTL == 0:
		return nil
	case cfg.SlidingTTL:
		return &expiration.ExpireAfterAccess[V]{TTL: cfg.DefaultTTL}
	default:
		return &expiration.ExpireAfterWrite[V]{TTL: cfg.DefaultTTL}
	}
}
