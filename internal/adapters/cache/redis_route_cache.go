package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"truck-eta-service/internal/domain"
	"truck-eta-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const (
	routeKeyPrefix  = "eta:route:"
	DefaultRouteTTL = 24 * time.Hour
)

// RedisRouteCache stores route geometry JSON with a TTL.
type RedisRouteCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRouteCache connects to addr and verifies the connection.
func NewRedisRouteCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisRouteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis route cache: ping %s: %w", addr, err)
	}

	return NewRedisRouteCacheFromClient(client, ttl), nil
}

func NewRedisRouteCacheFromClient(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	if ttl <= 0 {
		ttl = DefaultRouteTTL
	}
	return &RedisRouteCache{client: client, prefix: routeKeyPrefix, ttl: ttl}
}

func (c *RedisRouteCache) Close() error {
	return c.client.Close()
}

func (c *RedisRouteCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ domain.RouteGeometry, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RouteGeometry{}, false, nil
	}
	if err != nil {
		return domain.RouteGeometry{}, false, fmt.Errorf("redis route cache get key=%q: %w", key, err)
	}

	route, err := decodeRoute(raw)
	if err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next Put.
		log.Printf("redis route cache: dropping unreadable key=%q: %v", key, err)
		return domain.RouteGeometry{}, false, nil
	}
	return route, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, route domain.RouteGeometry) error {
	raw, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("redis route cache put: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis route cache put key=%q: %w", key, err)
	}
	return nil
}
