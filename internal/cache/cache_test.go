package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	prev := SetClient(rdb)
	t.Cleanup(func() {
		SetClient(prev)
		_ = rdb.Close()
	})
	return mr
}

func TestAside(t *testing.T) {
	t.Run("miss then hit", func(t *testing.T) {
		withMiniredis(t)
		ctx := context.Background()

		loads := 0
		load := func() (string, error) {
			loads++
			return "story summary", nil
		}

		v, err := Aside(ctx, "story:1", "story", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "story summary", v)
		assert.Equal(t, 1, loads)

		v, err = Aside(ctx, "story:1", "story", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "story summary", v)
		assert.Equal(t, 1, loads, "second call should be served from cache")
	})

	t.Run("ttl expiry reloads", func(t *testing.T) {
		mr := withMiniredis(t)
		ctx := context.Background()

		loads := 0
		load := func() (int, error) {
			loads++
			return 42, nil
		}

		_, err := Aside(ctx, "user:7:unread", "unread", 30*time.Second, load)
		require.NoError(t, err)

		mr.FastForward(time.Minute)

		_, err = Aside(ctx, "user:7:unread", "unread", 30*time.Second, load)
		require.NoError(t, err)
		assert.Equal(t, 2, loads)
	})

	t.Run("nil client degrades to loader", func(t *testing.T) {
		prev := SetClient(nil)
		t.Cleanup(func() { SetClient(prev) })

		v, err := Aside(context.Background(), "story:1", "story", time.Minute, func() (string, error) {
			return "direct", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "direct", v)
	})

	t.Run("corrupt entry is dropped", func(t *testing.T) {
		mr := withMiniredis(t)
		ctx := context.Background()

		require.NoError(t, mr.Set("story:9", "{not json"))

		type summary struct {
			Title string `json:"title"`
		}
		v, err := Aside(ctx, "story:9", "story", time.Minute, func() (summary, error) {
			return summary{Title: "fresh"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", v.Title)
	})
}

func TestInvalidatePublicFeeds(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(PublicFeedKey("global", 1, 10), "[]"))
	require.NoError(t, mr.Set(PublicFeedKey("top", 1, 20), "[]"))
	require.NoError(t, mr.Set(UserKey(3), "{}"))

	InvalidatePublicFeeds(ctx)

	assert.False(t, mr.Exists(PublicFeedKey("global", 1, 10)))
	assert.False(t, mr.Exists(PublicFeedKey("top", 1, 20)))
	assert.True(t, mr.Exists(UserKey(3)), "non-feed keys must survive")
}
