package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrCycleInFlight       = errors.New("orchestration cycle already in flight")
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)

// OrchestratorConfig holds the fixed inputs of one delivery session.
type OrchestratorConfig struct {
	Pickup           domain.Waypoint
	Dropoff          domain.Waypoint
	TransporterLabel string
	Vehicle          domain.VehicleProfile
	// Location is used for the hour-of-day feature. Defaults to time.Local.
	Location *time.Location
	Clock    Clock
}

// RouteOrchestrator recomputes the two-leg forecast for each transporter
// position and commits the outcome to its ForecastStore.
//
// Cycles never overlap: a Process call made while another is running
// returns ErrCycleInFlight without doing any work.
type RouteOrchestrator struct {
	cfg       OrchestratorConfig
	weather   *WeatherResolver
	fetcher   *RouteSegmentFetcher
	predictor *DurationPredictor
	store     *ForecastStore
	log       *logger.Logger
	inFlight  atomic.Bool
}

func NewRouteOrchestrator(
	cfg OrchestratorConfig,
	weather *WeatherResolver,
	fetcher *RouteSegmentFetcher,
	predictor *DurationPredictor,
	store *ForecastStore,
	log *logger.Logger,
) *RouteOrchestrator {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.TransporterLabel == "" {
		cfg.TransporterLabel = "Transporter"
	}
	if store == nil {
		store = NewForecastStore()
	}
	return &RouteOrchestrator{
		cfg:       cfg,
		weather:   weather,
		fetcher:   fetcher,
		predictor: predictor,
		store:     store,
		log:       log.WithComponent("route_orchestrator"),
	}
}

// Process runs one cycle for the transporter position and returns the
// committed status. The returned error is only ErrCycleInFlight or
// ErrOrchestratorStopped; cycle failures are reported in the status.
func (o *RouteOrchestrator) Process(ctx context.Context, transporter domain.Position) (domain.ForecastStatus, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return o.store.Snapshot(), ErrCycleInFlight
	}
	defer o.inFlight.Store(false)

	cycle, ok := o.store.Begin()
	if !ok {
		return domain.ForecastStatus{}, ErrOrchestratorStopped
	}
	log := o.log.With(logrus.Fields{"cycle": cycle})

	if err := o.validate(transporter); err != nil {
		return o.fail(log, err)
	}

	from := domain.Waypoint{Position: transporter, Label: o.cfg.TransporterLabel}
	legs := [domain.SegmentCount][2]domain.Waypoint{
		{from, o.cfg.Pickup},
		{o.cfg.Pickup, o.cfg.Dropoff},
	}

	var (
		weather  domain.WeatherCategory
		segments [domain.SegmentCount]domain.RouteSegment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weather = o.weather.Resolve(gctx, transporter)
		return nil
	})
	for i, leg := range legs {
		g.Go(func() error {
			s, err := o.fetcher.Fetch(gctx, leg[0], leg[1], o.cfg.Vehicle)
			if err != nil {
				return err
			}
			segments[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return o.fail(log, err)
	}

	hour := o.cfg.Clock.Now().In(o.cfg.Location).Hour()

	var pg errgroup.Group
	for i := range segments {
		pg.Go(func() error {
			s := &segments[i]
			v, err := o.predictor.Predict(ctx, s.BaselineDistanceKm, s.BaselineDurationSec, hour, weather, o.cfg.Vehicle)
			if err != nil {
				log.WithField("segment", i+1).WithError(err).Warn("predicted duration unavailable")
				return nil
			}
			s.PredictedDurationSec = &v
			return nil
		})
	}
	_ = pg.Wait()

	forecast := domain.NewRouteForecast(segments, o.cfg.Clock.Now())
	status, ok := o.store.Publish(forecast)
	if !ok {
		return domain.ForecastStatus{}, ErrOrchestratorStopped
	}

	log.WithFields(logrus.Fields{
		"state":             status.State,
		"weather":           weather,
		"hour":              hour,
		"total_distance_km": forecast.TotalDistanceKm,
		"total_baseline_s":  forecast.TotalBaselineDurationSec,
	}).Info("forecast published")

	return status, nil
}

// Fail moves the session to Failed with err, keeping the last forecast.
func (o *RouteOrchestrator) Fail(err error) (domain.ForecastStatus, error) {
	return o.fail(o.log, err)
}

// Status returns the current snapshot.
func (o *RouteOrchestrator) Status() domain.ForecastStatus { return o.store.Snapshot() }

// Stop suppresses every result committed after it returns.
func (o *RouteOrchestrator) Stop() { o.store.Close() }

func (o *RouteOrchestrator) validate(transporter domain.Position) error {
	var missing []string
	if !transporter.Valid() {
		missing = append(missing, "transporter")
	}
	if !o.cfg.Pickup.Valid() {
		missing = append(missing, "pickup")
	}
	if !o.cfg.Dropoff.Valid() {
		missing = append(missing, "drop-off")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", domain.ErrMissingWaypoint, missing)
	}
	return nil
}

func (o *RouteOrchestrator) fail(log *logger.Logger, err error) (domain.ForecastStatus, error) {
	status, ok := o.store.Fail(err)
	if !ok {
		return domain.ForecastStatus{}, ErrOrchestratorStopped
	}
	log.WithFields(logrus.Fields{
		"code":         status.ErrorCode,
		"has_forecast": status.HasForecast(),
	}).WithError(err).Error("forecast cycle failed")
	return status, nil
}
