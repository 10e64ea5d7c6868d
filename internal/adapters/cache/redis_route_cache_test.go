package cache

import (
	"context"
	"testing"
	"time"
	"truck-eta-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRouteCacheFromClient(client, ttl), mr
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	want := domain.RouteGeometry{
		Points:          []domain.Coordinate{{Lat: 24, Lon: 46}, {Lat: 24.5, Lon: 46.5}},
		DurationSeconds: 4512,
		DistanceMeters:  75200,
		HasTotals:       true,
	}
	if err := c.Put(ctx, "k", want); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("eta:route:k") {
		t.Fatalf("key not stored under prefix")
	}
	if ttl := mr.TTL("eta:route:k"); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got.Points) != 2 || got.Points[1] != want.Points[1] {
		t.Fatalf("points = %v, want %v", got.Points, want.Points)
	}
	if !got.HasTotals || got.DurationSeconds != 4512 || got.DistanceMeters != 75200 {
		t.Fatalf("totals = %+v", got)
	}
}

func TestRedisRouteCacheMissAndExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("get missing: ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, "k", domain.RouteGeometry{Points: []domain.Coordinate{{Lat: 1, Lon: 2}}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expired entry still served")
	}
}

func TestRedisRouteCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	if err := mr.Set("eta:route:bad", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "bad"); ok || err != nil {
		t.Fatalf("get corrupt: ok=%v err=%v", ok, err)
	}
}
