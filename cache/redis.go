package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a CMS response stays cached when none is configured.
const DefaultTTL = 5 * time.Minute

// Store interface defines the read-through cache used in front of the CMS.
type Store interface {
	// Get decodes the cached value for key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Key builds a compact cache key from the parts that identify a query.
func Key(prefix string, parts ...string) string {
	h := xxhash.New()
	for _, p := range parts {
		h.WriteString(p)
		h.WriteString("\x00")
	}
	return prefix + ":" + strconv.FormatUint(h.Sum64(), 16)
}

// RedisStore implements the Store interface with JSON values under a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis client instance.
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  800 * time.Millisecond,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	return NewRedisStoreFromClient(rdb, ttl)
}

func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: rdb, ttl: ttl}
}

// Ping checks the connection. Callers treat a failure as a cold cache, not
// a fatal error.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis GET error: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET error: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// NopStore never hits. It stands in when no Redis address is configured.
type NopStore struct{}

func (NopStore) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (NopStore) Set(ctx context.Context, key string, value any) error       { return nil }

// Describe names the store for startup logs.
func Describe(s Store) string {
	switch v := s.(type) {
	case *RedisStore:
		return "redis " + v.client.Options().Addr
	case NopStore:
		return "disabled"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", s), "*")
	}
}
