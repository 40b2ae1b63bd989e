package ports

import (
	"context"
	"delivery-eta-service/internal/domain"
)

// Raw route returned by a routing provider, before vehicle adjustment.
type RouteResult struct {
	Geometry        []domain.Coordinates
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for retrieving the shortest path between two points.
type RouteProvider interface {
	// Return the best route for the given provider profile (driving, moped, cycling).
	Route(ctx context.Context, profile string, from, to domain.Coordinates) (RouteResult, error)
}
