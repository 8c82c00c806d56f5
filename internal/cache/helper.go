package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"dishswap/internal/middleware"
	"dishswap/internal/observability"

	"github.com/redis/go-redis/v9"
)

// keyspace is the metric label for key: its leading segment, e.g. "user" or "recipe".
func keyspace(key string) string {
	prefix, _, _ := strings.Cut(key, ":")
	return prefix
}

func load(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// A value we cannot decode is stale; drop it so the next read repopulates.
		rdb.Del(ctx, key)
		return false, err
	}
	return true, nil
}

func store(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// Aside serves key from Redis into dest. On a miss it calls fetch, which must
// populate dest, and stores the result for ttl. Without a client it only calls fetch.
// Redis failures are logged and never fail the read.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	rdb := client
	if rdb == nil {
		return fetch()
	}
	space := keyspace(key)

	found, err := load(ctx, rdb, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if found {
		observability.CacheLookups.WithLabelValues(space, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(space, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	if err := store(ctx, rdb, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}
