package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/launchplan/pkg/adapters/redis"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/aretw0/launchplan/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, opts ...redis.Option) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisCache_Contract(t *testing.T) {
	cache, _ := newCache(t)
	ports.RunArtifactCacheContract(t, cache)
}

func TestRedisCache_TTL_Expiration(t *testing.T) {
	cache, mr := newCache(t, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "k", "<robot/>"))
	_, err := cache.Get(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_Prefix(t *testing.T) {
	cache, mr := newCache(t, redis.WithPrefix("test:"))
	require.NoError(t, cache.Put(context.Background(), "k", "v"))
	assert.True(t, mr.Exists("test:k"))
	assert.NoError(t, cache.Ping(context.Background()))
}

func TestRedisCache_Unavailable(t *testing.T) {
	cache, mr := newCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrCacheMiss)
	assert.Error(t, cache.Put(context.Background(), "k", "v"))
}
