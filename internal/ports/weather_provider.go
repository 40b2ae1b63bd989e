package ports

import (
	"context"
	"delivery-eta-service/internal/domain"
)

// Contract for looking up current weather at a location.
type WeatherProvider interface {
	// Return the provider's primary condition string (e.g. "Rain", "Mist").
	CurrentCondition(ctx context.Context, at domain.Coordinates) (string, error)
}
