package dto

import "time"

type CoordinatesDTO struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type WaypointRequest struct {
	Label string `json:"label"`
	// [lon, lat], as stored on delivery records.
	Coordinates [2]float64 `json:"coordinates"`
}

type OpenSessionRequest struct {
	DeliveryID  string           `json:"delivery_id"`
	Pickup      *WaypointRequest `json:"pickup"`
	Dropoff     *WaypointRequest `json:"dropoff"`
	VehicleType string           `json:"vehicle_type"`
	Transporter string           `json:"transporter"`
	Position    *CoordinatesDTO  `json:"position"`
}

type SessionResponse struct {
	SessionID      string    `json:"session_id"`
	DeliveryID     string    `json:"delivery_id,omitempty"`
	VehicleType    string    `json:"vehicle_type"`
	RoutingProfile string    `json:"routing_profile"`
	State          string    `json:"state"`
	CreatedAt      time.Time `json:"created_at"`
}

// PositionRequest matches a geolocation event. Timestamp is epoch milliseconds.
// A non-empty Error reports a terminal availability failure instead of a position.
type PositionRequest struct {
	Coords    *CoordinatesDTO `json:"coords"`
	Timestamp int64           `json:"timestamp"`
	Error     string          `json:"error"`
}
