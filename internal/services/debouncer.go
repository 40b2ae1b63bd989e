package services

import (
	"context"
	"time"
)

// Debouncer collapses a burst of values into the latest one per window.
//
// A window opens on the first value received while idle and closes window
// later; the most recent value seen in that window is then emitted. If the
// consumer has not taken the previous emission yet, it is replaced, so a slow
// consumer always receives the newest value and never a backlog.
type Debouncer[T any] struct {
	window time.Duration
	clock  Clock
}

func NewDebouncer[T any](window time.Duration, clock Clock) *Debouncer[T] {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer[T]{window: window, clock: clock}
}

// Run consumes in until it is closed or ctx is done. The returned channel is
// closed when Run's goroutine exits. A value still pending when in closes is
// flushed at the end of its window; pending values are dropped on ctx cancel.
func (d *Debouncer[T]) Run(ctx context.Context, in <-chan T) <-chan T {
	out := make(chan T)

	go func() {
		defer close(out)

		var (
			pending    T
			hasPending bool
			timer      <-chan time.Time
			ready      T
			sendCh     chan<- T
		)

		for {
			select {
			case <-ctx.Done():
				return

			case v, ok := <-in:
				if !ok {
					in = nil
					if !hasPending && sendCh == nil {
						return
					}
					continue
				}
				pending = v
				if !hasPending {
					hasPending = true
					timer = d.clock.After(d.window)
				}

			case <-timer:
				var zero T
				ready, sendCh = pending, out
				pending, hasPending, timer = zero, false, nil

			case sendCh <- ready:
				var zero T
				ready, sendCh = zero, nil
				if in == nil && !hasPending {
					return
				}
			}
		}
	}()

	return out
}
