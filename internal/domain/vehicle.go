package domain

import "strings"

// VehicleProfile is the transporter's vehicle type.
type VehicleProfile int

const (
	Car VehicleProfile = iota
	Van
	Truck
	Motorcycle
	Scooter
	Bicycle
)

type vehicleSpec struct {
	name       string
	routing    string
	multiplier float64
}

// Every profile maps to exactly one routing profile and one duration multiplier.
var vehicleSpecs = map[VehicleProfile]vehicleSpec{
	Car:        {name: "Car", routing: "driving", multiplier: 1.0},
	Van:        {name: "Van", routing: "driving", multiplier: 1.1},
	Truck:      {name: "Truck", routing: "driving", multiplier: 1.3},
	Motorcycle: {name: "Motorcycle", routing: "moped", multiplier: 0.9},
	Scooter:    {name: "Scooter", routing: "moped", multiplier: 0.95},
	Bicycle:    {name: "Bicycle", routing: "cycling", multiplier: 2.0},
}

// Aliases as stored on user records.
var vehicleAliases = map[string]VehicleProfile{
	"car":        Car,
	"van":        Van,
	"truck":      Truck,
	"motorcycle": Motorcycle,
	"motorbike":  Motorcycle,
	"scooter":    Scooter,
	"bicycle":    Bicycle,
}

func (v VehicleProfile) spec() vehicleSpec {
	if s, ok := vehicleSpecs[v]; ok {
		return s
	}
	return vehicleSpecs[Car]
}

// Canonical name sent to the prediction service (e.g. "Motorcycle").
func (v VehicleProfile) String() string { return v.spec().name }

// Routing-provider profile name (driving, moped, cycling).
func (v VehicleProfile) RoutingProfile() string { return v.spec().routing }

// DurationMultiplier adjusts the provider's generic duration for this vehicle.
func (v VehicleProfile) DurationMultiplier() float64 { return v.spec().multiplier }

// ParseVehicleProfile normalizes a free-form vehicle type. Unknown or empty values map to Car.
func ParseVehicleProfile(s string) VehicleProfile {
	if v, ok := vehicleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return Car
}

// VehicleProfiles lists all known profiles in declaration order.
func VehicleProfiles() []VehicleProfile {
	return []VehicleProfile{Car, Van, Truck, Motorcycle, Scooter, Bicycle}
}
