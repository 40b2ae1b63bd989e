package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/platform/obs"
	"delivery-eta-service/internal/ports"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// WeatherResolver performs one best-effort weather lookup per call.
// Every failure degrades to domain.WeatherClear.
type WeatherResolver struct {
	provider ports.WeatherProvider
	timeout  time.Duration
	log      *logger.Logger
}

// NewWeatherResolver returns a resolver; a nil provider always yields Clear.
func NewWeatherResolver(provider ports.WeatherProvider, timeout time.Duration, log *logger.Logger) *WeatherResolver {
	return &WeatherResolver{
		provider: provider,
		timeout:  timeout,
		log:      log.WithComponent("weather_resolver"),
	}
}

func (r *WeatherResolver) Resolve(ctx context.Context, p domain.Position) domain.WeatherCategory {
	if r.provider == nil {
		return domain.WeatherClear
	}

	entry := r.log.WithFields(logrus.Fields{"lat": p.Lat, "lon": p.Lon})

	if !p.Valid() {
		entry.WithError(domain.ErrWeatherLookup).Warn("weather lookup skipped: invalid position")
		return domain.WeatherClear
	}

	cond, err := r.lookup(ctx, p.Coordinates)
	if err != nil {
		entry.WithError(err).Warn("weather lookup failed, defaulting to Clear")
		return domain.WeatherClear
	}

	return domain.NormalizeWeather(cond)
}

func (r *WeatherResolver) lookup(ctx context.Context, at domain.Coordinates) (cond string, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	defer obs.Time(ctx, r.log, "weather.current")(&err)

	cond, err = r.provider.CurrentCondition(ctx, at)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrWeatherLookup, err)
	}
	if cond == "" {
		return "", fmt.Errorf("%w: empty condition", domain.ErrWeatherLookup)
	}
	return cond, nil
}
