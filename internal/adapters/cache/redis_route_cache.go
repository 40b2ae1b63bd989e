package cache

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	routeKeyPrefix  = "route"
	DefaultRouteTTL = 10 * time.Minute
)

// RedisRouteCache stores raw routing results keyed by profile and endpoints.
// Entries expire after ttl so road conditions are re-read periodically.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisRouteCache {
	if ttl <= 0 {
		ttl = DefaultRouteTTL
	}
	return &RedisRouteCache{client: client, ttl: ttl, log: log.WithComponent("route_cache")}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

type cachedRoute struct {
	Geometry        [][2]float64 `json:"geometry"`
	DistanceMeters  float64      `json:"distance_m"`
	DurationSeconds float64      `json:"duration_s"`
}

func generateKey(key string) string {
	return fmt.Sprintf("%s:%s", routeKeyPrefix, key)
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, c.log, "route.cache.Get")(&err)

	b, err := c.client.Get(ctx, generateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: %w", err)
	}

	var cr cachedRoute
	if err := json.Unmarshal(b, &cr); err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("decode route cache %q: %w", key, err)
	}

	geometry := make([]domain.Coordinates, len(cr.Geometry))
	for i, p := range cr.Geometry {
		geometry[i] = domain.Coordinates{Lon: p[0], Lat: p[1]}
	}

	return ports.RouteResult{
		Geometry:        geometry,
		DistanceMeters:  cr.DistanceMeters,
		DurationSeconds: cr.DurationSeconds,
	}, true, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, r ports.RouteResult) (err error) {
	defer obs.Time(ctx, c.log, "route.cache.Put")(&err)

	cr := cachedRoute{
		Geometry:        make([][2]float64, len(r.Geometry)),
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
	}
	for i, p := range r.Geometry {
		cr.Geometry[i] = [2]float64{p.Lon, p.Lat}
	}

	b, err := json.Marshal(cr)
	if err != nil {
		return fmt.Errorf("encode route cache %q: %w", key, err)
	}

	if err := c.client.Set(ctx, generateKey(key), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("set route cache: %w", err)
	}
	return nil
}
