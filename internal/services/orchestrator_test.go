package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Pickup:  pickupWP,
		Dropoff: dropoffWP,
		Vehicle: domain.Bicycle,
	}
}

func TestOrchestratorReadyCycle(t *testing.T) {
	f := newEngineFixture(scenarioConfig())

	st, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)

	assert.Equal(t, domain.StateReady, st.State)
	assert.Equal(t, domain.CodeNone, st.ErrorCode)
	require.NotNil(t, st.Forecast)

	fc := st.Forecast
	assert.Equal(t, "Transporter", fc.Segments[0].From.Label)
	assert.Equal(t, "Donor", fc.Segments[0].To.Label)
	assert.Equal(t, "Recipient", fc.Segments[1].To.Label)
	assert.Equal(t, 600.0, fc.Segments[0].BaselineDurationSec)
	assert.Equal(t, 800.0, fc.Segments[1].BaselineDurationSec)
	assert.Equal(t, 4.0, fc.TotalDistanceKm)
	assert.Equal(t, 1400.0, fc.TotalBaselineDurationSec)
	require.NotNil(t, fc.TotalPredictedDurationSec)
	assert.Equal(t, 2100.0, *fc.TotalPredictedDurationSec)
	assert.Equal(t, epoch, fc.GeneratedAt)

	for _, req := range f.model.requests {
		assert.Equal(t, 8, req.Hour)
		assert.Equal(t, domain.WeatherRain, req.Weather)
		assert.Equal(t, domain.Bicycle, req.Vehicle)
	}
}

func TestOrchestratorHourUsesLocation(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Location = time.FixedZone("CET", 3600)
	f := newEngineFixture(cfg)

	_, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)
	require.NotEmpty(t, f.model.requests)
	assert.Equal(t, 9, f.model.requests[0].Hour)
}

func TestOrchestratorMissingWaypointMakesNoCalls(t *testing.T) {
	tests := []struct {
		name        string
		pickup      domain.Waypoint
		dropoff     domain.Waypoint
		transporter domain.Position
	}{
		{"pickup", domain.Waypoint{Label: "Donor"}, dropoffWP, transporterAt},
		{"drop-off", pickupWP, domain.Waypoint{Position: domain.NewPosition(10.23, 0, epoch)}, transporterAt},
		{"transporter", pickupWP, dropoffWP, domain.NewPosition(0, 0, epoch)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioConfig()
			cfg.Pickup, cfg.Dropoff = tt.pickup, tt.dropoff
			f := newEngineFixture(cfg)

			st, err := f.orch.Process(context.Background(), tt.transporter)
			require.NoError(t, err)

			assert.Equal(t, domain.StateFailed, st.State)
			assert.Equal(t, domain.CodeMissingWaypoint, st.ErrorCode)
			assert.ErrorIs(t, st.Err, domain.ErrMissingWaypoint)
			assert.Equal(t, 0, f.routes.Calls())
			assert.Equal(t, 0, f.weather.Calls())
			assert.Equal(t, 0, f.model.Calls())
		})
	}
}

func TestOrchestratorPartialPredictionIsDegraded(t *testing.T) {
	f := newEngineFixture(scenarioConfig())
	// segment 2 baseline is 800s; every attempt for it fails
	f.model.failFor = map[float64]bool{800: true}

	st, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)

	assert.Equal(t, domain.StateDegraded, st.State)
	fc := st.Forecast
	require.NotNil(t, fc.Segments[0].PredictedDurationSec)
	assert.Equal(t, 900.0, *fc.Segments[0].PredictedDurationSec)
	assert.Nil(t, fc.Segments[1].PredictedDurationSec, "baseline is not substituted")
	assert.Nil(t, fc.TotalPredictedDurationSec)
	assert.Equal(t, 1400.0, fc.TotalBaselineDurationSec)
	assert.Equal(t, 4, f.model.Calls(), "one success, three failed attempts")
}

func TestOrchestratorWeatherFailureIsAbsorbed(t *testing.T) {
	f := newEngineFixture(scenarioConfig())
	f.weather.err = errors.New("401 invalid api key")

	st, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)

	assert.Equal(t, domain.StateReady, st.State)
	for _, req := range f.model.requests {
		assert.Equal(t, domain.WeatherClear, req.Weather)
	}
}

func TestOrchestratorIdempotentCycles(t *testing.T) {
	f := newEngineFixture(scenarioConfig())

	first, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)
	f.clock.advanceNow(7 * time.Second)
	second, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)

	a, b := *first.Forecast, *second.Forecast
	assert.NotEqual(t, a.GeneratedAt, b.GeneratedAt)
	a.GeneratedAt, b.GeneratedAt = time.Time{}, time.Time{}
	assert.Equal(t, a, b)
	assert.Equal(t, uint64(2), second.Cycle)
}

func TestOrchestratorRoutingFailureRetainsForecast(t *testing.T) {
	f := newEngineFixture(scenarioConfig())

	ready, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)
	require.Equal(t, domain.StateReady, ready.State)

	f.routes.SetError(errors.New("503 service unavailable"))
	st, err := f.orch.Process(context.Background(), domain.NewPosition(10.205, 36.865, epoch))
	require.NoError(t, err)

	assert.Equal(t, domain.StateFailed, st.State)
	assert.Equal(t, domain.CodeRoutingError, st.ErrorCode)
	require.NotNil(t, st.Forecast)
	assert.Equal(t, *ready.Forecast, *st.Forecast)
	assert.Equal(t, *ready.Forecast, *f.orch.Status().Forecast)
}

func TestOrchestratorFailureWithoutPriorForecast(t *testing.T) {
	f := newEngineFixture(scenarioConfig())
	f.routes.SetError(errors.New("timeout"))

	st, err := f.orch.Process(context.Background(), transporterAt)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFailed, st.State)
	assert.False(t, st.HasForecast())
	assert.Equal(t, 0, f.model.Calls())
}

// blockingModel holds every prediction until release is closed.
type blockingModel struct {
	started chan struct{}
	release chan struct{}
}

func (m *blockingModel) PredictDuration(ctx context.Context, req ports.PredictionRequest) (float64, error) {
	select {
	case m.started <- struct{}{}:
	default:
	}
	<-m.release
	return req.BaselineDurationSec, nil
}

func TestOrchestratorSuppressesLateResults(t *testing.T) {
	log := logger.NewTest()
	model := &blockingModel{started: make(chan struct{}, 1), release: make(chan struct{})}
	published := &recordingPublisher{}
	store := NewForecastStore(func(st domain.ForecastStatus) {
		_ = published.Publish(context.Background(), "s", st)
	})

	cfg := scenarioConfig()
	cfg.Clock = newFakeClock(epoch)
	orch := NewRouteOrchestrator(
		cfg,
		NewWeatherResolver(nil, time.Second, log),
		NewRouteSegmentFetcher(scenarioRoutes(), nil, time.Second, log),
		NewDurationPredictor(model, NewRetryPolicy(0), 0, log),
		store,
		log,
	)

	type result struct {
		st  domain.ForecastStatus
		err error
	}
	done := make(chan result, 1)
	go func() {
		st, err := orch.Process(context.Background(), transporterAt)
		done <- result{st, err}
	}()

	<-model.started
	_, err := orch.Process(context.Background(), transporterAt)
	assert.ErrorIs(t, err, ErrCycleInFlight)

	orch.Stop()
	close(model.release)

	r := <-done
	assert.ErrorIs(t, r.err, ErrOrchestratorStopped)
	assert.Equal(t, 0, published.Len())
	assert.Equal(t, domain.StateComputing, orch.Status().State)
	assert.False(t, orch.Status().HasForecast())
}
