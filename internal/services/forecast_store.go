package services

import (
	"delivery-eta-service/internal/domain"
	"sync"
)

// Listener receives every committed status. It runs outside the store lock.
type Listener func(domain.ForecastStatus)

// ForecastStore is the single owner of a session's published forecast.
// Readers get deep copies; a failed cycle never replaces the last forecast.
type ForecastStore struct {
	mu        sync.Mutex
	status    domain.ForecastStatus
	closed    bool
	listeners []Listener
	notifying sync.WaitGroup
}

func NewForecastStore(listeners ...Listener) *ForecastStore {
	return &ForecastStore{
		status:    domain.ForecastStatus{State: domain.StateIdle},
		listeners: listeners,
	}
}

// Begin marks a new cycle as Computing. The previous forecast stays visible.
func (s *ForecastStore) Begin() (uint64, bool) {
	st, ok := s.commit(func(st *domain.ForecastStatus) {
		st.Cycle++
		st.State = domain.StateComputing
		st.Err = nil
		st.ErrorCode = domain.CodeNone
	}, false)
	return st.Cycle, ok
}

// Publish replaces the forecast and moves to Ready, or Degraded when any
// segment lacks a prediction.
func (s *ForecastStore) Publish(f domain.RouteForecast) (domain.ForecastStatus, bool) {
	f = f.Clone()
	return s.commit(func(st *domain.ForecastStatus) {
		st.Forecast = &f
		st.Err = nil
		st.ErrorCode = domain.CodeNone
		if f.Complete() {
			st.State = domain.StateReady
		} else {
			st.State = domain.StateDegraded
		}
	}, true)
}

// Fail moves to Failed with err, keeping the previous forecast.
func (s *ForecastStore) Fail(err error) (domain.ForecastStatus, bool) {
	return s.commit(func(st *domain.ForecastStatus) {
		st.State = domain.StateFailed
		st.Err = err
		st.ErrorCode = domain.ErrorCode(err)
	}, true)
}

// Snapshot returns a copy of the current status.
func (s *ForecastStore) Snapshot() domain.ForecastStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneStatus(s.status)
}

// Close rejects all later commits and waits for in-progress listener calls.
// Nothing is delivered to listeners once Close has returned.
func (s *ForecastStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.notifying.Wait()
}

func (s *ForecastStore) commit(apply func(*domain.ForecastStatus), notify bool) (domain.ForecastStatus, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ForecastStatus{}, false
	}
	apply(&s.status)
	out := cloneStatus(s.status)
	if notify {
		s.notifying.Add(1)
	}
	s.mu.Unlock()

	if notify {
		defer s.notifying.Done()
		for _, fn := range s.listeners {
			fn(cloneStatus(out))
		}
	}
	return out, true
}

func cloneStatus(st domain.ForecastStatus) domain.ForecastStatus {
	if st.Forecast != nil {
		f := st.Forecast.Clone()
		st.Forecast = &f
	}
	return st
}
