package ports

import (
	"context"
	"delivery-eta-service/internal/domain"
	"errors"
)

var ErrDeliveryNotFound = errors.New("delivery not found")

// Port: read access to delivery records owned by another service.
type DeliveryRepository interface {
	// Retrieve waypoints and vehicle for a delivery.
	GetDelivery(ctx context.Context, id string) (*domain.Delivery, error)
}
