package adapters

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache against a shared Redis instance, letting
// rate-limit counters and cached results survive across process
// restarts and be shared between replicas.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an already-configured *redis.Client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Incr(ctx context.Context, key string, ttlSeconds int) (int64, error) {
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "redis incr")
	}
	if val == 1 {
		if err := r.client.Expire(ctx, key, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
			return 0, errors.Wrap(err, "redis expire")
		}
	}
	return val, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if err := r.client.Set(ctx, key, value, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// FallbackCounter is the in-process, single-instance Cache used when
// Redis is disabled or fails its startup ping — never a request failure,
// per spec.md §5's cache-degrades-to-neutral convention. Grounded on the
// teacher's MemoryStore (pkg/storage/memory_store.go), the same
// mutex-guarded map shape, generalized to carry expiring entries. One
// mutex guards all keys.
type FallbackCounter struct {
	mu      sync.Mutex
	entries map[string]fallbackEntry
}

type fallbackEntry struct {
	value    []byte
	count    int64
	expireAt time.Time
}

// NewFallbackCounter builds an empty in-process cache.
func NewFallbackCounter() *FallbackCounter {
	return &FallbackCounter{entries: make(map[string]fallbackEntry)}
}

func (f *FallbackCounter) Incr(_ context.Context, key string, ttlSeconds int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	e, ok := f.entries[key]
	if !ok || now.After(e.expireAt) {
		e = fallbackEntry{expireAt: now.Add(time.Duration(ttlSeconds) * time.Second)}
	}
	e.count++
	f.entries[key] = e
	return e.count, nil
}

func (f *FallbackCounter) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || time.Now().After(e.expireAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (f *FallbackCounter) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = fallbackEntry{value: value, expireAt: time.Now().Add(time.Duration(ttlSeconds) * time.Second)}
	return nil
}
