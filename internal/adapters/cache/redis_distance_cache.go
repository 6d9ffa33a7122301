package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// RedisDistanceCache is a Redis-backed alternative to PGDistanceCache for
// deployments that want entries to expire. Values are stored as
// "meters|seconds" strings under one key per origin-destination pair.
type RedisDistanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{client: client, ttl: ttl}
}

func (r *RedisDistanceCache) key(origin, destination string) string {
	return "distance:" + origin + "|" + destination
}

// Fetch cached results for one origin and multiple destinations.
func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.redis.GetMany")(&err)

	if r.client == nil {
		return nil, errors.New("distance cache: redis client is nil")
	}

	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	if len(destinations) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	keys := make([]string, len(destinations))
	for i, d := range destinations {
		keys[i] = r.key(origin, d)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get distance cache: redis mget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(destinations))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		result, err := parseDistanceValue(s)
		if err != nil {
			// Unparseable entries are treated as misses and overwritten
			// on the next PutMany.
			continue
		}
		out[destinations[i]] = result
	}

	return out, nil
}

// Store many cached results for a single origin.
func (r *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if r.client == nil {
		return errors.New("distance cache: redis client is nil")
	}

	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for dest, result := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert distance cache: empty destination key")
		}
		value := fmt.Sprintf("%d|%d", result.DistanceMeters, result.DurationSeconds)
		pipe.Set(ctx, r.key(origin, dest), value, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert distance cache: redis pipeline: %w", err)
	}

	return nil
}

func parseDistanceValue(s string) (ports.DistanceResult, error) {
	metersStr, secondsStr, ok := strings.Cut(s, "|")
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("malformed cache value %q", s)
	}

	meters, err := strconv.Atoi(metersStr)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed meters in %q: %w", s, err)
	}

	seconds, err := strconv.Atoi(secondsStr)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("malformed seconds in %q: %w", s, err)
	}

	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, nil
}
