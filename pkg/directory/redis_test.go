package directory

import (
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T, next Directory) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewRedisCache(client, next, time.Minute, slog.Default()), server
}

func TestRedisCache_DisplayName_PopulatesCache(t *testing.T) {
	cache, server := setupRedisCache(t, NewStatic(map[string]string{"alice": "Alice Almeida"}))

	name, err := cache.DisplayName(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Almeida", name)

	cached, err := server.Get(cacheKeyPrefix + "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Almeida", cached)
}

func TestRedisCache_DisplayName_ServesFromCache(t *testing.T) {
	cache, server := setupRedisCache(t, NewStatic(nil))

	require.NoError(t, server.Set(cacheKeyPrefix+"bob", "Bob Baker"))

	name, err := cache.DisplayName(t.Context(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob Baker", name)
}

func TestRedisCache_DisplayName_DegradesWhenRedisDown(t *testing.T) {
	cache, server := setupRedisCache(t, NewStatic(map[string]string{"carol": "Carol Costa"}))
	server.Close()

	name, err := cache.DisplayName(t.Context(), "carol")
	require.NoError(t, err)
	assert.Equal(t, "Carol Costa", name)
}

func TestRedisCache_DisplayNames(t *testing.T) {
	cache, _ := setupRedisCache(t, NewStatic(map[string]string{"alice": "Alice Almeida"}))

	names, err := cache.DisplayNames(t.Context(), []string{"alice", "dave"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Almeida", names["alice"])
	assert.Equal(t, "dave", names["dave"])
}
