package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrMissingWaypoint     = errors.New("missing waypoint")
	ErrRouting             = errors.New("routing failed")
	ErrPrediction          = errors.New("duration prediction failed")
	ErrWeatherLookup       = errors.New("weather lookup failed")
	ErrInvalidEndpoint     = errors.New("invalid route endpoint")
)

// Stable error codes reported to forecast consumers.
type Code string

const (
	CodeNone                 Code = ""
	CodeLocationUnavailable  Code = "LocationUnavailable"
	CodeMissingWaypoint      Code = "MissingWaypoint"
	CodeRoutingError         Code = "RoutingError"
	CodePredictionError      Code = "PredictionError"
	CodeWeatherLookupFailure Code = "WeatherLookupFailure"
	CodeInternal             Code = "Internal"
)

// RoutingError reports a failed route lookup for one segment. It is fatal for a cycle.
type RoutingError struct {
	From  string
	To    string
	Cause error
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("route %q -> %q: %v", e.From, e.To, e.Cause)
}

func (e *RoutingError) Unwrap() []error { return []error{ErrRouting, e.Cause} }

// PredictionError reports that every attempt against the duration model failed.
type PredictionError struct {
	Attempts int
	Cause    error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("duration prediction after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *PredictionError) Unwrap() []error { return []error{ErrPrediction, e.Cause} }

// ErrorCode classifies err into a consumer-facing code.
func ErrorCode(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrLocationUnavailable):
		return CodeLocationUnavailable
	case errors.Is(err, ErrMissingWaypoint):
		return CodeMissingWaypoint
	case errors.Is(err, ErrRouting):
		return CodeRoutingError
	case errors.Is(err, ErrPrediction):
		return CodePredictionError
	case errors.Is(err, ErrWeatherLookup):
		return CodeWeatherLookupFailure
	default:
		return CodeInternal
	}
}
