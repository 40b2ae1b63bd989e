package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDebounceWindow bounds orchestration to one cycle per window.
const DefaultDebounceWindow = 5 * time.Second

// LocationTracker turns a raw position source into a debounced stream of valid positions.
type LocationTracker struct {
	window time.Duration
	clock  Clock
	log    *logger.Logger
}

func NewLocationTracker(window time.Duration, clock Clock, log *logger.Logger) *LocationTracker {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if clock == nil {
		clock = RealClock()
	}
	return &LocationTracker{
		window: window,
		clock:  clock,
		log:    log.WithComponent("location_tracker"),
	}
}

// Track is one running subscription started by LocationTracker.Start.
type Track struct {
	positions <-chan domain.Position
	sub       ports.Subscription
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	mu  sync.Mutex
	err error
}

// Start subscribes to src. A subscription failure is returned as ErrLocationUnavailable.
func (t *LocationTracker) Start(ctx context.Context, src ports.PositionSource) (*Track, error) {
	sub, err := src.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("start tracking: %w: %v", domain.ErrLocationUnavailable, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	tr := &Track{sub: sub, cancel: cancel}

	raw := make(chan domain.Position)
	out := NewDebouncer[domain.Position](t.window, t.clock).Run(ctx, raw)

	// The forwarder is the only sender on positions; Stop waits for it.
	positions := make(chan domain.Position)
	tr.positions = positions

	tr.wg.Add(2)
	go func() {
		defer tr.wg.Done()
		defer close(raw)
		t.pump(ctx, tr, raw)
	}()
	go func() {
		defer tr.wg.Done()
		defer close(positions)
		forward(ctx, out, positions)
	}()

	return tr, nil
}

// forward relays in to out holding at most one value. A value not yet taken
// by the consumer is replaced by the next one, so a busy consumer receives
// only the newest position.
func forward(ctx context.Context, in <-chan domain.Position, out chan<- domain.Position) {
	var (
		held   domain.Position
		sendCh chan<- domain.Position
	)
	for {
		select {
		case <-ctx.Done():
			return

		case p, ok := <-in:
			if !ok {
				if sendCh == nil {
					return
				}
				in = nil
				continue
			}
			held, sendCh = p, out

		case sendCh <- held:
			sendCh = nil
			if in == nil {
				return
			}
		}
	}
}

func (t *LocationTracker) pump(ctx context.Context, tr *Track, raw chan<- domain.Position) {
	updates := tr.sub.Updates()
	errs := tr.sub.Errors()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			tr.fail(fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err))
			t.log.WithError(err).Error("position source failed")
			return

		case u, ok := <-updates:
			if !ok {
				return
			}

			p := domain.NewPosition(u.Longitude, u.Latitude, u.Timestamp)
			if !p.Valid() {
				t.log.WithFields(logrus.Fields{
					"lon": u.Longitude,
					"lat": u.Latitude,
				}).Debug("dropping invalid position")
				continue
			}
			if p.Timestamp.IsZero() {
				p.Timestamp = t.clock.Now()
			}

			select {
			case raw <- p:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (tr *Track) fail(err error) {
	tr.mu.Lock()
	tr.err = err
	tr.mu.Unlock()
	tr.cancel()
}

// Positions returns the debounced stream. It is closed on Stop, on source
// end, or after a terminal source error.
func (tr *Track) Positions() <-chan domain.Position { return tr.positions }

// Err returns the terminal error, if any. It wraps domain.ErrLocationUnavailable.
func (tr *Track) Err() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.err
}

// Stop ends the stream and releases the subscription. No position is
// delivered after Stop returns.
func (tr *Track) Stop() {
	tr.stopOnce.Do(func() {
		tr.cancel()
		tr.wg.Wait()
		_ = tr.sub.Close()
	})
}
