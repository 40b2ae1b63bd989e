package ports

import (
	"context"
	"delivery-eta-service/internal/domain"
)

// Features sent to the duration model for one segment.
type PredictionRequest struct {
	DistanceKm          float64
	BaselineDurationSec float64
	Hour                int
	Weather             domain.WeatherCategory
	Vehicle             domain.VehicleProfile
}

// Contract for a machine-learned duration estimate. One call is one attempt.
type DurationModel interface {
	PredictDuration(ctx context.Context, req PredictionRequest) (float64, error)
}
