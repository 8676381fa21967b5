package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"worklog/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

var errStaleRead = errors.New("cache key invalidated during read")

// versionKey counts the invalidations of key.
func versionKey(key string) string {
	return "ver:" + key
}

func readVersion(ctx context.Context, key string) (string, error) {
	v, err := client.Get(ctx, versionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// setIfUnchanged stores v under key unless key was invalidated after version
// was read. A skipped write is not an error.
func setIfUnchanged(ctx context.Context, key, version string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	err = client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey(key)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, versionKey(key))

	if errors.Is(err, errStaleRead) || errors.Is(err, redis.TxFailedErr) {
		middleware.Logger.DebugContext(ctx, "cache write skipped after invalidation", "key", key)
		return nil
	}
	return err
}

// Aside tries Redis first; on a miss it calls fetch, which must populate
// dest, then stores dest under key with ttl. A value is only stored when no
// invalidation of key happened while fetch ran. Cache failures never fail
// the read: they are logged and the source is used.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	if found {
		return nil
	}

	version, versionErr := readVersion(ctx, key)

	if err := fetch(); err != nil {
		return err
	}

	if versionErr != nil {
		middleware.Logger.WarnContext(ctx, "cache version read failed", "key", key, "error", versionErr)
		return nil
	}
	if err := setIfUnchanged(ctx, key, version, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}
