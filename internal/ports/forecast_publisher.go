package ports

import (
	"context"
	"delivery-eta-service/internal/domain"
)

// Receives the outcome of every forecast cycle of a delivery session.
type ForecastPublisher interface {
	Publish(ctx context.Context, sessionID string, status domain.ForecastStatus) error
}
