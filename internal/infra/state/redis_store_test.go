//go:build integration

package state

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStateStore(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	prefix := "oddswatch_test:" + uuid.NewString()
	store := NewRedisStateStore(client, prefix, time.Minute)
	t.Cleanup(func() { client.Del(ctx, prefix+":a") })

	_, ok, err := store.PreviousVolume(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetVolume(ctx, "a", 1234.5))
	volume, ok, err := store.PreviousVolume(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1234.5, volume)

	_, ok, err = store.PreviousFavorite(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetFavorite(ctx, "a", "tok-yes"))
	favorite, ok, err := store.PreviousFavorite(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-yes", favorite)

	ttl, err := client.TTL(ctx, prefix+":a").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStateStore_CorruptVolume(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	prefix := "oddswatch_test:" + uuid.NewString()
	store := NewRedisStateStore(client, prefix, 0)
	t.Cleanup(func() { client.Del(ctx, prefix+":a") })

	require.NoError(t, client.HSet(ctx, prefix+":a", "volume", "lots").Err())
	_, _, err := store.PreviousVolume(ctx, "a")
	assert.Error(t, err)
}
