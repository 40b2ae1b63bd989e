package domain

import (
	"math"
	"time"
)

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Valid reports whether both components are finite, in range and non-zero.
// A (0,0) pair is the "unknown location" default of delivery records.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) || math.IsInf(c.Lon, 0) || math.IsInf(c.Lat, 0) {
		return false
	}
	if math.Abs(c.Lat) > 90 || math.Abs(c.Lon) > 180 {
		return false
	}
	return c.Lon != 0 && c.Lat != 0
}

// Position is a timestamped transporter or waypoint location.
type Position struct {
	Coordinates
	Timestamp time.Time
}

func NewPosition(lon, lat float64, ts time.Time) Position {
	return Position{Coordinates: Coordinates{Lon: lon, Lat: lat}, Timestamp: ts}
}

// Waypoint is a labelled fixed stop (pickup donor or drop-off recipient).
// It is immutable for the lifetime of a delivery session.
type Waypoint struct {
	Position Position
	Label    string
}

func (w Waypoint) Valid() bool { return w.Position.Valid() }
