package events

import (
	"context"
	"delivery-eta-service/internal/ports"
	"errors"
	"sync"
)

var (
	ErrNotWatching  = errors.New("position source has no subscriber")
	ErrAlreadyWatch = errors.New("position source already has a subscriber")
	ErrSourceBusy   = errors.New("position source buffer full")
)

const positionBuffer = 64

// ChannelPositionSource is a push-based PositionSource fed by callers such as
// the HTTP ingest handler. It supports one subscriber at a time.
type ChannelPositionSource struct {
	mu  sync.Mutex
	sub *channelSubscription
}

func NewChannelPositionSource() *ChannelPositionSource {
	return &ChannelPositionSource{}
}

func (s *ChannelPositionSource) Watch(ctx context.Context) (ports.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return nil, ErrAlreadyWatch
	}
	s.sub = &channelSubscription{
		owner:   s,
		updates: make(chan ports.RawPosition, positionBuffer),
		errs:    make(chan error, 1),
	}
	return s.sub, nil
}

// Push hands p to the subscriber without blocking.
func (s *ChannelPositionSource) Push(p ports.RawPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return ErrNotWatching
	}
	select {
	case s.sub.updates <- p:
		return nil
	default:
		return ErrSourceBusy
	}
}

// Fail reports a terminal availability error, e.g. permission denied.
func (s *ChannelPositionSource) Fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return ErrNotWatching
	}
	select {
	case s.sub.errs <- err:
	default:
	}
	return nil
}

// Channels are never closed; after Close the source just stops delivering.
type channelSubscription struct {
	owner   *ChannelPositionSource
	updates chan ports.RawPosition
	errs    chan error
}

func (c *channelSubscription) Updates() <-chan ports.RawPosition { return c.updates }

func (c *channelSubscription) Errors() <-chan error { return c.errs }

func (c *channelSubscription) Close() error {
	c.owner.mu.Lock()
	defer c.owner.mu.Unlock()

	if c.owner.sub == c {
		c.owner.sub = nil
	}
	return nil
}
