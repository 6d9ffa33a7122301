package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rental-ops-service/internal/ports"
)

func newTestCache(t *testing.T) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisDistanceCache(client, time.Hour), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	origin := "-46.630000,-23.550000"
	stored := map[string]ports.DistanceResult{
		"-46.610000,-23.510000": {DistanceMeters: 1500, DurationSeconds: 300},
		"-46.700000,-23.600000": {DistanceMeters: 2200, DurationSeconds: 410},
	}

	if err := c.PutMany(ctx, origin, stored); err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, origin, []string{
		"-46.610000,-23.510000",
		"-46.700000,-23.600000",
		"-46.000000,-23.000000", // never stored
	})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d hits; want 2", len(got))
	}
	for dest, want := range stored {
		if got[dest] != want {
			t.Errorf("got[%q] = %+v; want %+v", dest, got[dest], want)
		}
	}
	if _, ok := got["-46.000000,-23.000000"]; ok {
		t.Error("unexpected hit for destination that was never stored")
	}
}

func TestRedisDistanceCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	origin := "-46.630000,-23.550000"
	dest := "-46.610000,-23.510000"
	err := c.PutMany(ctx, origin, map[string]ports.DistanceResult{
		dest: {DistanceMeters: 1500, DurationSeconds: 300},
	})
	if err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	mr.FastForward(2 * time.Hour)

	got, err := c.GetMany(ctx, origin, []string{dest})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d hits after expiry; want 0", len(got))
	}
}

func TestRedisDistanceCacheSkipsMalformedEntries(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	origin := "-46.630000,-23.550000"
	dest := "-46.610000,-23.510000"
	mr.Set(c.key(origin, dest), "not-a-cache-value")

	got, err := c.GetMany(ctx, origin, []string{dest})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d hits from malformed entry; want 0", len(got))
	}
}
