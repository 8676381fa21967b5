package cache

import (
	"context"
	"fmt"
	"time"

	"worklog/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	EntryKeyPrefix = "entry:%s"
	TagsAllKey     = "tags:all"
)

const (
	EntryTTL = 30 * time.Minute
	TagsTTL  = 10 * time.Minute

	// versionTTL outlives any read that could race an invalidation.
	versionTTL = 24 * time.Hour
)

func EntryKey(slug string) string {
	return fmt.Sprintf(EntryKeyPrefix, slug)
}

// Invalidate deletes keys and bumps their versions so reads already in
// flight do not store what they fetched.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, versionKey(k))
			pipe.Expire(ctx, versionKey(k), versionTTL)
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

// InvalidateEntry drops the cached detail page for each slug along with the
// tag list, which every entry write can change.
func InvalidateEntry(ctx context.Context, slugs ...string) {
	keys := make([]string, 0, len(slugs)+1)
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, EntryKey(s))
		}
	}
	keys = append(keys, TagsAllKey)
	Invalidate(ctx, keys...)
}
