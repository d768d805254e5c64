package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/techwatch-auth/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		DialTimeout:  time.Second,
		TimeoutRedis: time.Second,
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.RedisConnection{
		AddressRedis: addr,
		DialTimeout:  100 * time.Millisecond,
	})
	assert.Error(t, err)
}

func TestRateLimiter_Allow(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()
	limiter := NewRateLimiter(cache, 3, time.Minute)

	for i := range 3 {
		ok, err := limiter.Allow(ctx, "1.2.3.4:/auth/login")
		require.NoError(t, err)
		assert.Truef(t, ok, "call %d", i+1)
	}
	ok, err := limiter.Allow(ctx, "1.2.3.4:/auth/login")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "5.6.7.8:/auth/login")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")

	assert.Equal(t, time.Minute, mr.TTL(limiterPrefix+"1.2.3.4:/auth/login"))

	mr.FastForward(time.Minute)
	ok, err = limiter.Allow(ctx, "1.2.3.4:/auth/login")
	require.NoError(t, err)
	assert.True(t, ok, "window resets")
}

func TestRateLimiter_RedisDown(t *testing.T) {
	cache, mr := setupTestCache(t)
	limiter := NewRateLimiter(cache, 3, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "k")
	assert.Error(t, err)
}
