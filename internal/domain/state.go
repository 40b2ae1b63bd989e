package domain

// EngineState is the orchestrator's lifecycle state for one delivery session.
type EngineState string

const (
	StateIdle      EngineState = "Idle"
	StateComputing EngineState = "Computing"
	StateReady     EngineState = "Ready"
	StateDegraded  EngineState = "Degraded"
	StateFailed    EngineState = "Failed"
)

// ForecastStatus is the immutable view handed to consumers.
// Forecast is the last successfully published forecast, retained across failed cycles.
type ForecastStatus struct {
	State     EngineState
	Forecast  *RouteForecast
	Err       error
	ErrorCode Code
	Cycle     uint64
}

// HasForecast reports whether a forecast has ever been published.
func (s ForecastStatus) HasForecast() bool { return s.Forecast != nil }
