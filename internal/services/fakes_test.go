package services

import (
	"context"
	"delivery-eta-service/internal/adapters/routing"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"errors"
	"sync"
	"time"
)

var (
	transporterAt = domain.NewPosition(10.20, 36.86, epoch)
	pickupWP      = domain.Waypoint{Position: domain.NewPosition(10.21, 36.87, time.Time{}), Label: "Donor"}
	dropoffWP     = domain.Waypoint{Position: domain.NewPosition(10.23, 36.89, time.Time{}), Label: "Recipient"}
)

func scenarioRoutes() *routing.MockRouteProvider {
	return routing.NewMockRouteProvider([]routing.MockLeg{
		{From: transporterAt.Coordinates, To: pickupWP.Position.Coordinates, Meters: 1500, Seconds: 300},
		{From: pickupWP.Position.Coordinates, To: dropoffWP.Position.Coordinates, Meters: 2500, Seconds: 400},
	})
}

type fakeWeather struct {
	mu    sync.Mutex
	cond  string
	err   error
	calls int
}

func (w *fakeWeather) CurrentCondition(ctx context.Context, at domain.Coordinates) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return w.cond, w.err
}

func (w *fakeWeather) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// fakeModel answers with a fixed factor over the baseline and fails the
// first failFirst calls, or every call whose baseline is in failFor.
type fakeModel struct {
	mu        sync.Mutex
	factor    float64
	failFirst int
	failFor   map[float64]bool
	calls     int
	requests  []ports.PredictionRequest
}

var errModelDown = errors.New("model down")

func (m *fakeModel) PredictDuration(ctx context.Context, req ports.PredictionRequest) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.requests = append(m.requests, req)
	if m.calls <= m.failFirst || m.failFor[req.BaselineDurationSec] {
		return 0, errModelDown
	}
	return req.BaselineDurationSec * m.factor, nil
}

func (m *fakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recordingPublisher struct {
	mu       sync.Mutex
	statuses []domain.ForecastStatus
}

func (p *recordingPublisher) Publish(ctx context.Context, sessionID string, st domain.ForecastStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, st)
	return nil
}

func (p *recordingPublisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.statuses)
}

type engineFixture struct {
	routes  *routing.MockRouteProvider
	weather *fakeWeather
	model   *fakeModel
	clock   *fakeClock
	store   *ForecastStore
	orch    *RouteOrchestrator
}

func newEngineFixture(cfg OrchestratorConfig) *engineFixture {
	log := logger.NewTest()
	f := &engineFixture{
		routes:  scenarioRoutes(),
		weather: &fakeWeather{cond: "Rain"},
		model:   &fakeModel{factor: 1.5},
		clock:   newFakeClock(epoch),
		store:   NewForecastStore(),
	}
	cfg.Clock = f.clock
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	f.orch = NewRouteOrchestrator(
		cfg,
		NewWeatherResolver(f.weather, time.Second, log),
		NewRouteSegmentFetcher(f.routes, nil, time.Second, log),
		NewDurationPredictor(f.model, NewRetryPolicy(DefaultPredictionRetries), time.Second, log),
		f.store,
		log,
	)
	return f
}
