package ports

import (
	"context"
	"time"
)

// Raw coordinate update as pushed by a geolocation source.
type RawPosition struct {
	Longitude float64
	Latitude  float64
	Timestamp time.Time
}

// A live subscription to a PositionSource.
// Errors carries permission/availability failures; any value on it is terminal.
type Subscription interface {
	Updates() <-chan RawPosition
	Errors() <-chan error
	Close() error
}

// Push-based source of transporter positions.
type PositionSource interface {
	Watch(ctx context.Context) (Subscription, error)
}
