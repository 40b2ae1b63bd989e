package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session not found")

// Dependencies are the external collaborators shared by every session.
// RouteCache and Publisher are optional.
type Dependencies struct {
	Routes     ports.RouteProvider
	RouteCache ports.RouteCache
	Weather    ports.WeatherProvider
	Model      ports.DurationModel
	Publisher  ports.ForecastPublisher
}

// EngineOptions tune the engine. Zero durations and a negative retry count
// select the defaults.
type EngineOptions struct {
	DebounceWindow    time.Duration
	PredictionRetries int
	CallTimeout       time.Duration
	Location          *time.Location
	Clock             Clock
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = DefaultDebounceWindow
	}
	if o.PredictionRetries < 0 {
		o.PredictionRetries = DefaultPredictionRetries
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 5 * time.Second
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Clock == nil {
		o.Clock = RealClock()
	}
	return o
}

// Session tracks one delivery: a position stream feeding an orchestrator.
type Session struct {
	ID        string
	Delivery  domain.Delivery
	CreatedAt time.Time

	source   ports.PositionSource
	track    *Track
	orch     *RouteOrchestrator
	done     chan struct{}
	stopOnce sync.Once
}

// Source returns the position source the session is subscribed to.
func (s *Session) Source() ports.PositionSource { return s.source }

// Status returns the session's current forecast snapshot.
func (s *Session) Status() domain.ForecastStatus { return s.orch.Status() }

// Done is closed once the session's run loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Stop ends tracking and suppresses any result of a cycle still running.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.track.Stop()
		s.orch.Stop()
	})
}

func (s *Session) run(ctx context.Context, initial *domain.Position) {
	defer close(s.done)

	if initial != nil && initial.Valid() {
		_, _ = s.orch.Process(ctx, *initial)
	}
	for p := range s.track.Positions() {
		_, _ = s.orch.Process(ctx, p)
	}
	// The stream has ended; release the subscription so the source stops accepting positions.
	s.track.Stop()
	if err := s.track.Err(); err != nil {
		_, _ = s.orch.Fail(err)
	}
}

// SessionManager owns the live sessions of the service.
type SessionManager struct {
	tracker   *LocationTracker
	weather   *WeatherResolver
	fetcher   *RouteSegmentFetcher
	predictor *DurationPredictor
	publisher ports.ForecastPublisher
	opts      EngineOptions
	log       *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(deps Dependencies, opts EngineOptions, log *logger.Logger) *SessionManager {
	opts = opts.withDefaults()
	return &SessionManager{
		tracker:   NewLocationTracker(opts.DebounceWindow, opts.Clock, log),
		weather:   NewWeatherResolver(deps.Weather, opts.CallTimeout, log),
		fetcher:   NewRouteSegmentFetcher(deps.Routes, deps.RouteCache, opts.CallTimeout, log),
		predictor: NewDurationPredictor(deps.Model, NewRetryPolicy(opts.PredictionRetries), opts.CallTimeout, log),
		publisher: deps.Publisher,
		opts:      opts,
		log:       log.WithComponent("session_manager"),
		sessions:  make(map[string]*Session),
	}
}

// Open starts a session for d fed by src. When initial is a valid position a
// first cycle runs immediately instead of waiting for the debounce window.
func (m *SessionManager) Open(
	ctx context.Context,
	d domain.Delivery,
	src ports.PositionSource,
	initial *domain.Position,
) (*Session, error) {
	id := uuid.NewString()
	log := m.log.With(logrus.Fields{"session_id": id, "delivery_id": d.ID})

	// The session outlives the request that opened it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	track, err := m.tracker.Start(runCtx, src)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open session: %w", err)
	}

	store := NewForecastStore(m.publishListener(id, log))
	orch := NewRouteOrchestrator(OrchestratorConfig{
		Pickup:           d.Pickup,
		Dropoff:          d.Dropoff,
		TransporterLabel: d.Transporter,
		Vehicle:          d.Vehicle,
		Location:         m.opts.Location,
		Clock:            m.opts.Clock,
	}, m.weather, m.fetcher, m.predictor, store, log)

	s := &Session{
		ID:        id,
		Delivery:  d,
		CreatedAt: m.opts.Clock.Now(),
		source:    src,
		track:     track,
		orch:      orch,
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	go func() {
		defer cancel()
		s.run(runCtx, initial)
	}()

	log.WithField("vehicle", d.Vehicle).Info("session opened")
	return s, nil
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Close stops and forgets the session.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("close session %q: %w", id, ErrSessionNotFound)
	}
	s.Stop()
	m.log.WithField("session_id", id).Info("session closed")
	return nil
}

// CloseAll stops every session.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) publishListener(id string, log *logger.Logger) Listener {
	if m.publisher == nil {
		return func(domain.ForecastStatus) {}
	}
	return func(st domain.ForecastStatus) {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.CallTimeout)
		defer cancel()

		if err := m.publisher.Publish(ctx, id, st); err != nil {
			log.WithError(err).Warn("forecast publish failed")
		}
	}
}
