package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// RouteSegmentFetcher resolves one leg through the routing provider and
// applies the vehicle duration multiplier.
type RouteSegmentFetcher struct {
	provider ports.RouteProvider
	cache    ports.RouteCache
	timeout  time.Duration
	log      *logger.Logger
}

// NewRouteSegmentFetcher returns a fetcher. cache may be nil.
func NewRouteSegmentFetcher(
	provider ports.RouteProvider,
	cache ports.RouteCache,
	timeout time.Duration,
	log *logger.Logger,
) *RouteSegmentFetcher {
	return &RouteSegmentFetcher{
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		log:      log.WithComponent("segment_fetcher"),
	}
}

// Fetch returns the segment from -> to for profile.
// Both endpoints must be valid; otherwise domain.ErrInvalidEndpoint is returned
// without calling the provider. Provider failures are *domain.RoutingError.
func (f *RouteSegmentFetcher) Fetch(
	ctx context.Context,
	from domain.Waypoint,
	to domain.Waypoint,
	profile domain.VehicleProfile,
) (domain.RouteSegment, error) {
	if !from.Valid() || !to.Valid() {
		return domain.RouteSegment{}, fmt.Errorf("fetch segment %q -> %q: %w", from.Label, to.Label, domain.ErrInvalidEndpoint)
	}

	res, err := f.route(ctx, profile.RoutingProfile(), from.Position.Coordinates, to.Position.Coordinates)
	if err != nil {
		return domain.RouteSegment{}, &domain.RoutingError{From: from.Label, To: to.Label, Cause: err}
	}

	geometry := make([]domain.Coordinates, len(res.Geometry))
	copy(geometry, res.Geometry)

	return domain.RouteSegment{
		From:                from,
		To:                  to,
		Geometry:            geometry,
		BaselineDistanceKm:  res.DistanceMeters / 1000,
		BaselineDurationSec: res.DurationSeconds * profile.DurationMultiplier(),
	}, nil
}

func (f *RouteSegmentFetcher) route(
	ctx context.Context,
	profile string,
	from domain.Coordinates,
	to domain.Coordinates,
) (res ports.RouteResult, err error) {
	key := routeCacheKey(profile, from, to)
	entry := f.log.WithField("key", key)

	if f.cache != nil {
		cached, ok, cerr := f.cache.Get(ctx, key)
		if cerr != nil {
			entry.WithError(cerr).Warn("route cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	done := obs.Time(callCtx, f.log, "routing.route")
	res, err = f.provider.Route(callCtx, profile, from, to)
	done(&err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			entry.WithError(err).Warn("routing provider timed out")
		}
		return ports.RouteResult{}, err
	}

	if f.cache != nil {
		if cerr := f.cache.Put(ctx, key, res); cerr != nil {
			entry.WithFields(logrus.Fields{"profile": profile}).WithError(cerr).Warn("route cache write failed")
		}
	}

	return res, nil
}

// Coordinates are rounded to ~1 m so jitter in identical fixes shares an entry.
func routeCacheKey(profile string, from, to domain.Coordinates) string {
	return fmt.Sprintf("%s:%.5f,%.5f;%.5f,%.5f", profile, from.Lon, from.Lat, to.Lon, to.Lat)
}
