package domain

import "time"

// Number of legs in a delivery route: transporter->pickup, pickup->drop-off.
const SegmentCount = 2

// Represents one leg of a delivery route.
// Baseline fields are always populated when routing succeeded.
// PredictedDurationSec is nil when the duration model could not be reached.
type RouteSegment struct {
	From                 Waypoint
	To                   Waypoint
	Geometry             []Coordinates
	BaselineDistanceKm   float64
	BaselineDurationSec  float64
	PredictedDurationSec *float64
}

// HasPrediction reports whether the model produced an estimate for this leg.
func (s RouteSegment) HasPrediction() bool { return s.PredictedDurationSec != nil }

func (s RouteSegment) clone() RouteSegment {
	out := s
	if s.Geometry != nil {
		out.Geometry = make([]Coordinates, len(s.Geometry))
		copy(out.Geometry, s.Geometry)
	}
	if s.PredictedDurationSec != nil {
		v := *s.PredictedDurationSec
		out.PredictedDurationSec = &v
	}
	return out
}

// Represents the aggregate route forecast for a delivery at one instant.
// Segments are ordered transporter->pickup, pickup->drop-off.
// TotalPredictedDurationSec is set only when every segment has a prediction;
// partial predictions are never summed.
type RouteForecast struct {
	Segments                  [SegmentCount]RouteSegment
	TotalDistanceKm           float64
	TotalBaselineDurationSec  float64
	TotalPredictedDurationSec *float64
	GeneratedAt               time.Time
}

// NewRouteForecast aggregates the given segments into a forecast stamped at generatedAt.
func NewRouteForecast(segments [SegmentCount]RouteSegment, generatedAt time.Time) RouteForecast {
	f := RouteForecast{GeneratedAt: generatedAt}

	var predicted float64
	complete := true
	for i, s := range segments {
		f.Segments[i] = s.clone()
		f.TotalDistanceKm += s.BaselineDistanceKm
		f.TotalBaselineDurationSec += s.BaselineDurationSec

		if s.PredictedDurationSec == nil {
			complete = false
			continue
		}
		predicted += *s.PredictedDurationSec
	}

	if complete {
		f.TotalPredictedDurationSec = &predicted
	}

	return f
}

// Complete reports whether every segment carries a prediction.
func (f RouteForecast) Complete() bool {
	for _, s := range f.Segments {
		if !s.HasPrediction() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy that shares no memory with f.
func (f RouteForecast) Clone() RouteForecast {
	out := f
	for i, s := range f.Segments {
		out.Segments[i] = s.clone()
	}
	if f.TotalPredictedDurationSec != nil {
		v := *f.TotalPredictedDurationSec
		out.TotalPredictedDurationSec = &v
	}
	return out
}
