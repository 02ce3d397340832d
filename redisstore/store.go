// Package redisstore is a backing store for the cache that keeps values in Redis.
//
// It implements types.Loader, so it can serve read-through misses and receive
// write-through or write-back writes. Values cross the wire through a codec.Codec.
package redisstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/redis/go-redis/v9"

	"github.com/krisalay/policycache/codec"
	"github.com/krisalay/policycache/types"
)

var _ types.Loader[string, any] = (*Store[string, any])(nil)

// Store reads and writes cache values in Redis.
type Store[K comparable, V any] struct {
	client redis.Cmdable
	codec  codec.Codec[V]
	prefix string
	ttl    time.Duration
	keyFn  func(K) string
}

// Option configures a Store.
type Option[K comparable, V any] func(*Store[K, V])

// WithPrefix namespaces every Redis key.
func WithPrefix[K comparable, V any](prefix string) Option[K, V] {
	return func(s *Store[K, V]) { s.prefix = prefix }
}

// WithTTL sets the Redis expiry used by Put. Zero keeps values forever.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(s *Store[K, V]) { s.ttl = ttl }
}

// WithKeyFunc controls how cache keys become Redis keys. The default is fmt.Sprint.
func WithKeyFunc[K comparable, V any](fn func(K) string) Option[K, V] {
	return func(s *Store[K, V]) { s.keyFn = fn }
}

// New creates a Store on top of an existing client. The caller owns the client.
func New[K comparable, V any](client redis.Cmdable, c codec.Codec[V], opts ...Option[K, V]) *Store[K, V] {
	s := &Store[K, V]{
		client: client,
		codec:  c,
		keyFn:  func(k K) string { return fmt.Sprint(k) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[K, V]) redisKey(k K) string {
	return s.prefix + s.keyFn(k)
}

// Load fetches and decodes key. A missing key is types.ErrNotFound.
func (s *Store[K, V]) Load(ctx context.Context, key K) (V, error) {
	var zero V

	rk := s.redisKey(key)
	b, err := s.client.Get(ctx, rk).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return zero, types.ErrNotFound
	}
	if err != nil {
		return zero, errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "redis get failed"), "key", rk)
	}

	v, err := s.codec.Decode(b)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// Put encodes and stores value under key.
func (s *Store[K, V]) Put(ctx context.Context, key K, value V) error {
	b, err := s.codec.Encode(value)
	if err != nil {
		return err
	}

	rk := s.redisKey(key)
	if err := s.client.Set(ctx, rk, b, s.ttl).Err(); err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "redis set failed"), "key", rk)
	}
	return nil
}

// Delete removes key from Redis.
func (s *Store[K, V]) Delete(ctx context.Context, key K) error {
	rk := s.redisKey(key)
	if err := s.client.Del(ctx, rk).Err(); err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "redis del failed"), "key", rk)
	}
	return nil
}
