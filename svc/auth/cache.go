package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/playforge/gamekit/pkg/cache"
)

// ProfileTTL is how long a cached profile stays valid. An entry at or past
// this age is a miss and triggers a refetch.
const ProfileTTL = 5 * time.Minute

// ProfileCache stores fetched profiles keyed by identity id. Implementations
// must treat expired entries as absent.
type ProfileCache interface {
	Get(ctx context.Context, id uuid.UUID) (Profile, bool)
	Put(ctx context.Context, id uuid.UUID, p Profile)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// MemoryCache is the default in-process ProfileCache.
type MemoryCache struct {
	entries *cache.TTL[uuid.UUID, Profile]
}

// NewMemoryCache creates a memory cache with the standard profile TTL.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: cache.NewTTL[uuid.UUID, Profile](ProfileTTL)}
}

func (c *MemoryCache) Get(_ context.Context, id uuid.UUID) (Profile, bool) {
	return c.entries.Get(id)
}

func (c *MemoryCache) Put(_ context.Context, id uuid.UUID, p Profile) {
	c.entries.Put(id, p)
}

func (c *MemoryCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.entries.Delete(id)
}

// Close releases the cache's background resources.
func (c *MemoryCache) Close() { c.entries.Close() }

// RedisCache is a ProfileCache shared between processes. Values are stored
// as JSON under a key prefix with the TTL enforced by redis itself. Redis
// failures degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRedisTTL overrides the default profile TTL.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisPrefix overrides the default "profile:" key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// NewRedisCache creates a redis-backed ProfileCache.
func NewRedisCache(client *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, ttl: ProfileTTL, prefix: "profile:"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) key(id uuid.UUID) string { return c.prefix + id.String() }

func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (Profile, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return Profile{}, false
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, false
	}
	return p, true
}

func (c *RedisCache) Put(ctx context.Context, id uuid.UUID, p Profile) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(id), raw, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, id uuid.UUID) {
	c.client.Del(ctx, c.key(id))
}
