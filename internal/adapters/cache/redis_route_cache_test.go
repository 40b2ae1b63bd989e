package cache

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRouteCache(client, time.Minute, logger.NewTest()), mr
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "driving:10.20000,36.86000;10.21000,36.87000")
	require.NoError(t, err)
	assert.False(t, ok)

	want := ports.RouteResult{
		Geometry:        []domain.Coordinates{{Lon: 10.2, Lat: 36.86}, {Lon: 10.21, Lat: 36.87}},
		DistanceMeters:  1840,
		DurationSeconds: 300.5,
	}
	require.NoError(t, c.Put(ctx, "driving:10.20000,36.86000;10.21000,36.87000", want))
	assert.True(t, mr.Exists("route:driving:10.20000,36.86000;10.21000,36.87000"))

	got, ok, err := c.Get(ctx, "driving:10.20000,36.86000;10.21000,36.87000")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisRouteCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", ports.RouteResult{DistanceMeters: 1, DurationSeconds: 1}))
	assert.Equal(t, time.Minute, mr.TTL("route:k"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("route:bad", "{not json"))

	_, ok, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCacheServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}
