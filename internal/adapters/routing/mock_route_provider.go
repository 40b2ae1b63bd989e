package routing

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/ports"
	"fmt"
	"sync"
)

type MockLeg struct {
	From, To domain.Coordinates
	Meters   float64
	Seconds  float64
}

// MockRouteProvider serves fixed legs and counts calls. Err, when set, fails every call.
type MockRouteProvider struct {
	mu    sync.Mutex
	m     map[string]ports.RouteResult
	calls int
	Err   error
}

func NewMockRouteProvider(legs []MockLeg) *MockRouteProvider {
	m := make(map[string]ports.RouteResult, len(legs))
	for _, l := range legs {
		m[mockKey(l.From, l.To)] = ports.RouteResult{
			Geometry:        []domain.Coordinates{l.From, l.To},
			DistanceMeters:  l.Meters,
			DurationSeconds: l.Seconds,
		}
	}
	return &MockRouteProvider{m: m}
}

func (p *MockRouteProvider) Route(ctx context.Context, profile string, from, to domain.Coordinates) (ports.RouteResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.Err != nil {
		return ports.RouteResult{}, p.Err
	}

	r, ok := p.m[mockKey(from, to)]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing leg %v -> %v", from, to)
	}
	return r, nil
}

// SetError makes every later call fail with err; nil restores normal answers.
func (p *MockRouteProvider) SetError(err error) {
	p.mu.Lock()
	p.Err = err
	p.mu.Unlock()
}

// Calls returns the number of Route calls so far.
func (p *MockRouteProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func mockKey(from, to domain.Coordinates) string {
	return fmt.Sprintf("%v,%v|%v,%v", from.Lon, from.Lat, to.Lon, to.Lat)
}
