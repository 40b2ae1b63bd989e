package services

import (
	"context"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscription struct {
	updates chan ports.RawPosition
	errs    chan error
	closed  atomic.Int32
}

func (s *fakeSubscription) Updates() <-chan ports.RawPosition { return s.updates }
func (s *fakeSubscription) Errors() <-chan error              { return s.errs }
func (s *fakeSubscription) Close() error {
	s.closed.Add(1)
	return nil
}

type fakeSource struct {
	sub *fakeSubscription
	err error
}

func newFakeSource() *fakeSource {
	return &fakeSource{sub: &fakeSubscription{
		updates: make(chan ports.RawPosition),
		errs:    make(chan error, 1),
	}}
}

func (s *fakeSource) Watch(ctx context.Context) (ports.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sub, nil
}

func TestTrackerDropsInvalidPositions(t *testing.T) {
	clock := newFakeClock(epoch)
	src := newFakeSource()

	tr, err := NewLocationTracker(5*time.Second, clock, logger.NewTest()).Start(context.Background(), src)
	require.NoError(t, err)
	defer tr.Stop()

	src.sub.updates <- ports.RawPosition{Longitude: 0, Latitude: 0, Timestamp: epoch}
	src.sub.updates <- ports.RawPosition{Longitude: 10.2, Latitude: 0, Timestamp: epoch}
	src.sub.updates <- ports.RawPosition{Longitude: 10.2, Latitude: 36.86, Timestamp: epoch}
	clock.BlockUntil(t, 1)
	clock.Advance(5 * time.Second)

	p, ok := receive(t, tr.Positions())
	require.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lon: 10.2, Lat: 36.86}, p.Coordinates)
	assert.Equal(t, epoch, p.Timestamp)
}

func TestTrackerSourceErrorIsTerminal(t *testing.T) {
	src := newFakeSource()
	tr, err := NewLocationTracker(time.Second, newFakeClock(epoch), logger.NewTest()).Start(context.Background(), src)
	require.NoError(t, err)
	defer tr.Stop()

	src.sub.errs <- errors.New("permission denied")

	_, ok := receive(t, tr.Positions())
	assert.False(t, ok)
	assert.ErrorIs(t, tr.Err(), domain.ErrLocationUnavailable)
	assert.ErrorContains(t, tr.Err(), "permission denied")
}

func TestTrackerWatchFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("no gps")}
	_, err := NewLocationTracker(time.Second, nil, logger.NewTest()).Start(context.Background(), src)
	assert.ErrorIs(t, err, domain.ErrLocationUnavailable)
}

func TestTrackerStopReleasesSubscription(t *testing.T) {
	clock := newFakeClock(epoch)
	src := newFakeSource()
	tr, err := NewLocationTracker(time.Second, clock, logger.NewTest()).Start(context.Background(), src)
	require.NoError(t, err)

	src.sub.updates <- ports.RawPosition{Longitude: 10.2, Latitude: 36.86}
	clock.BlockUntil(t, 1)

	tr.Stop()
	tr.Stop()

	_, ok := receive(t, tr.Positions())
	assert.False(t, ok, "no position after stop")
	assert.Equal(t, int32(1), src.sub.closed.Load())
	assert.NoError(t, tr.Err())
}

func TestTrackerStampsMissingTimestamp(t *testing.T) {
	clock := newFakeClock(epoch)
	src := newFakeSource()
	tr, err := NewLocationTracker(time.Second, clock, logger.NewTest()).Start(context.Background(), src)
	require.NoError(t, err)
	defer tr.Stop()

	src.sub.updates <- ports.RawPosition{Longitude: 10.2, Latitude: 36.86}
	clock.BlockUntil(t, 1)
	clock.Advance(time.Second)

	p, ok := receive(t, tr.Positions())
	require.True(t, ok)
	assert.Equal(t, epoch, p.Timestamp)
}

func TestForwardKeepsOnlyNewestForBusyConsumer(t *testing.T) {
	in := make(chan domain.Position)
	out := make(chan domain.Position)

	go forward(context.Background(), in, out)

	first := domain.NewPosition(10.201, 36.861, epoch)
	second := domain.NewPosition(10.209, 36.869, epoch)
	in <- first
	in <- second

	p, ok := receive[domain.Position](t, out)
	require.True(t, ok)
	assert.Equal(t, second, p)

	close(in)
	_, ok = receive[domain.Position](t, out)
	assert.False(t, ok)
}

func TestForwardFlushesHeldValueOnClose(t *testing.T) {
	in := make(chan domain.Position)
	out := make(chan domain.Position)

	go forward(context.Background(), in, out)

	in <- transporterAt
	close(in)

	p, ok := receive[domain.Position](t, out)
	require.True(t, ok)
	assert.Equal(t, transporterAt, p)

	_, ok = receive[domain.Position](t, out)
	assert.False(t, ok)
}
