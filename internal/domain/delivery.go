package domain

// Delivery is the read-only subset of a delivery record the engine needs.
// Pickup is the donor, Dropoff the recipient.
type Delivery struct {
	ID          string
	Pickup      Waypoint
	Dropoff     Waypoint
	Vehicle     VehicleProfile
	Transporter string
}
