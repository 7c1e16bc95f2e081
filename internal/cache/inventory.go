package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vtelltales/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix       = "user:%d"
	StoryKeyPrefix      = "story:%d"
	StoryTypesKey       = "story_types"
	PublicFeedKeyPrefix = "feed:%s:o%d:l%d"
	UnreadKeyPrefix     = "user:%d:unread"
)

const (
	UserTTL       = 5 * time.Minute
	StoryTTL      = 10 * time.Minute
	StoryTypesTTL = 30 * time.Minute
	// Public feeds tolerate short staleness; viewer-specific feeds are never cached
	// because moderation exclusions differ per viewer.
	PublicFeedTTL = 1 * time.Minute
	UnreadTTL     = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func StoryKey(storyID uint) string {
	return fmt.Sprintf(StoryKeyPrefix, storyID)
}

// PublicFeedKey identifies an anonymous-viewer feed page. feed is "global" or
// "top". The raw offset is part of the key: offsets are not page-aligned, so
// deriving a page number would alias distinct result windows.
func PublicFeedKey(feed string, offset, limit int) string {
	return fmt.Sprintf(PublicFeedKeyPrefix, feed, offset, limit)
}

func UnreadKey(userID uint) string {
	return fmt.Sprintf(UnreadKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateStory(ctx context.Context, storyID uint) {
	Invalidate(ctx, StoryKey(storyID))
	InvalidatePublicFeeds(ctx)
}

func InvalidateUnread(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadKey(userID))
}

// InvalidatePublicFeeds drops all cached anonymous feed pages.
func InvalidatePublicFeeds(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "feed:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// Aside implements the cache-aside pattern: return the cached value under key
// if present, otherwise invoke load, store its result with the given TTL and
// return it. A nil or failing Redis client degrades to calling load directly.
func Aside[T any](ctx context.Context, key, family string, ttl time.Duration, load func() (T, error)) (T, error) {
	var zero T

	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Result()
	if err == nil {
		var cached T
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			observability.CacheResults.WithLabelValues(family, "hit").Inc()
			return cached, nil
		}
		// Corrupt entry: drop it and fall through to load.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		// Redis down mid-flight: serve from the source.
		fresh, loadErr := load()
		return fresh, loadErr
	}

	observability.CacheResults.WithLabelValues(family, "miss").Inc()

	fresh, err := load()
	if err != nil {
		return zero, err
	}

	if data, jsonErr := json.Marshal(fresh); jsonErr == nil {
		client.Set(ctx, key, data, ttl)
	}

	return fresh, nil
}
