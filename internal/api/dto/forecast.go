package dto

import (
	"delivery-eta-service/internal/domain"
	"time"
)

type WaypointResponse struct {
	Label       string     `json:"label"`
	Coordinates [2]float64 `json:"coordinates"`
}

type SegmentResponse struct {
	From                 WaypointResponse `json:"from"`
	To                   WaypointResponse `json:"to"`
	Geometry             [][2]float64     `json:"geometry"`
	BaselineDistanceKm   float64          `json:"baseline_distance_km"`
	BaselineDurationSec  float64          `json:"baseline_duration_s"`
	PredictedDurationSec *float64         `json:"predicted_duration_s"`
	Distance             string           `json:"distance"`
	BaselineDuration     string           `json:"baseline_duration"`
	PredictedDuration    string           `json:"predicted_duration"`
}

type RouteForecastResponse struct {
	Segments                  []SegmentResponse `json:"segments"`
	TotalDistanceKm           float64           `json:"total_distance_km"`
	TotalBaselineDurationSec  float64           `json:"total_baseline_duration_s"`
	TotalPredictedDurationSec *float64          `json:"total_predicted_duration_s"`
	TotalDistance             string            `json:"total_distance"`
	TotalBaselineDuration     string            `json:"total_baseline_duration"`
	TotalPredictedDuration    string            `json:"total_predicted_duration"`
	GeneratedAt               time.Time         `json:"generated_at"`
}

type ForecastResponse struct {
	SessionID string                 `json:"session_id"`
	State     string                 `json:"state"`
	Cycle     uint64                 `json:"cycle"`
	ErrorCode string                 `json:"error_code,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Forecast  *RouteForecastResponse `json:"forecast"`
}

// Shown for a segment or total whose prediction is missing.
const etaUnavailable = "N/A"

func NewForecastResponse(sessionID string, st domain.ForecastStatus) ForecastResponse {
	res := ForecastResponse{
		SessionID: sessionID,
		State:     string(st.State),
		Cycle:     st.Cycle,
		ErrorCode: string(st.ErrorCode),
	}
	if st.Err != nil {
		res.Error = st.Err.Error()
	}
	if st.Forecast != nil {
		f := newRouteForecastResponse(*st.Forecast)
		res.Forecast = &f
	}
	return res
}

func newRouteForecastResponse(f domain.RouteForecast) RouteForecastResponse {
	res := RouteForecastResponse{
		Segments:                  make([]SegmentResponse, 0, len(f.Segments)),
		TotalDistanceKm:           f.TotalDistanceKm,
		TotalBaselineDurationSec:  f.TotalBaselineDurationSec,
		TotalPredictedDurationSec: f.TotalPredictedDurationSec,
		TotalDistance:             domain.FormatDistance(f.TotalDistanceKm),
		TotalBaselineDuration:     domain.FormatDuration(f.TotalBaselineDurationSec),
		TotalPredictedDuration:    formatPredicted(f.TotalPredictedDurationSec),
		GeneratedAt:               f.GeneratedAt,
	}

	for _, s := range f.Segments {
		geometry := make([][2]float64, len(s.Geometry))
		for i, c := range s.Geometry {
			geometry[i] = [2]float64{c.Lon, c.Lat}
		}

		res.Segments = append(res.Segments, SegmentResponse{
			From:                 newWaypointResponse(s.From),
			To:                   newWaypointResponse(s.To),
			Geometry:             geometry,
			BaselineDistanceKm:   s.BaselineDistanceKm,
			BaselineDurationSec:  s.BaselineDurationSec,
			PredictedDurationSec: s.PredictedDurationSec,
			Distance:             domain.FormatDistance(s.BaselineDistanceKm),
			BaselineDuration:     domain.FormatDuration(s.BaselineDurationSec),
			PredictedDuration:    formatPredicted(s.PredictedDurationSec),
		})
	}
	return res
}

func newWaypointResponse(w domain.Waypoint) WaypointResponse {
	return WaypointResponse{
		Label:       w.Label,
		Coordinates: [2]float64{w.Position.Lon, w.Position.Lat},
	}
}

func formatPredicted(v *float64) string {
	if v == nil {
		return etaUnavailable
	}
	return domain.FormatDuration(*v)
}
