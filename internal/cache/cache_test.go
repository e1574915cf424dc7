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

func TestKey(t *testing.T) {
	t.Run("deterministic across map ordering", func(t *testing.T) {
		a := Key("diagnosis_basic", map[string]interface{}{"AGE": 81.0, "MMSE_bl": 28.0})
		b := Key("diagnosis_basic", map[string]interface{}{"MMSE_bl": 28.0, "AGE": 81.0})
		assert.Equal(t, a, b)
	})

	t.Run("operation name participates", func(t *testing.T) {
		args := map[string]interface{}{"AGE": 81.0}
		assert.NotEqual(t,
			Key("diagnosis_basic", args),
			Key("diagnosis_extended", args))
	})

	t.Run("argument values participate", func(t *testing.T) {
		assert.NotEqual(t,
			Key("diagnosis_basic", map[string]interface{}{"AGE": 81.0}),
			Key("diagnosis_basic", map[string]interface{}{"AGE": 82.0}))
	})

	t.Run("nested structures", func(t *testing.T) {
		a := Key("op", map[string]interface{}{
			"input": map[string]interface{}{"x": 1.0, "y": []interface{}{"a", "b"}},
		})
		b := Key("op", map[string]interface{}{
			"input": map[string]interface{}{"y": []interface{}{"a", "b"}, "x": 1.0},
		})
		assert.Equal(t, a, b)
	})

	t.Run("unserializable value falls back to string form", func(t *testing.T) {
		ch := make(chan int)
		key := Key("op", map[string]interface{}{"bad": ch})
		assert.Len(t, key, 64)
		assert.Equal(t, key, Key("op", map[string]interface{}{"bad": ch}))
	})
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		c, err := NewMemoryCache(8)
		require.NoError(t, err)

		require.NoError(t, c.Set(ctx, "k1", []byte(`{"class":"AD"}`)))

		value, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"class":"AD"}`), value)
	})

	t.Run("miss", func(t *testing.T) {
		c, err := NewMemoryCache(8)
		require.NoError(t, err)

		_, found, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("capacity evicts oldest", func(t *testing.T) {
		c, err := NewMemoryCache(2)
		require.NoError(t, err)

		require.NoError(t, c.Set(ctx, "a", []byte("1")))
		require.NoError(t, c.Set(ctx, "b", []byte("2")))
		require.NoError(t, c.Set(ctx, "c", []byte("3")))

		_, found, _ := c.Get(ctx, "a")
		assert.False(t, found, "oldest entry should have been evicted")
		assert.Equal(t, 2, c.Len())
	})

	t.Run("clear empties cache", func(t *testing.T) {
		c, err := NewMemoryCache(8)
		require.NoError(t, err)

		require.NoError(t, c.Set(ctx, "k1", []byte("v")))
		require.NoError(t, c.Clear(ctx))

		_, found, _ := c.Get(ctx, "k1")
		assert.False(t, found)
		assert.Equal(t, 0, c.Len())
	})
}

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCache(client, ttl), srv, client
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		c, _, _ := newTestRedisCache(t, time.Hour)

		require.NoError(t, c.Set(ctx, "k1", []byte(`{"risk":0.42}`)))

		value, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`{"risk":0.42}`), value)
	})

	t.Run("miss is not an error", func(t *testing.T) {
		c, _, _ := newTestRedisCache(t, time.Hour)

		_, found, err := c.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		c, srv, _ := newTestRedisCache(t, time.Minute)

		require.NoError(t, c.Set(ctx, "k1", []byte("v")))
		srv.FastForward(2 * time.Minute)

		_, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clear leaves unrelated keys", func(t *testing.T) {
		c, srv, _ := newTestRedisCache(t, time.Hour)

		require.NoError(t, c.Set(ctx, "k1", []byte("v1")))
		require.NoError(t, c.Set(ctx, "k2", []byte("v2")))
		srv.Set("other:key", "keep")

		require.NoError(t, c.Clear(ctx))

		_, found, _ := c.Get(ctx, "k1")
		assert.False(t, found)
		_, found, _ = c.Get(ctx, "k2")
		assert.False(t, found)
		assert.True(t, srv.Exists("other:key"))
	})

	t.Run("backend failure surfaces as error", func(t *testing.T) {
		c, srv, _ := newTestRedisCache(t, time.Hour)
		srv.Close()

		_, _, err := c.Get(ctx, "k1")
		assert.Error(t, err)
		assert.Error(t, c.Set(ctx, "k1", []byte("v")))
	})
}
