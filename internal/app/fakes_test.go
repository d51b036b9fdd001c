package app_test

import (
	"context"
	"sync"
	"time"

	"accessible_map/internal/domain"
)

// ---- fakes ----

type fakeClient struct {
	mu       sync.Mutex
	queries  []string
	elements []domain.RawElement
	err      error

	// when gate is set, Interpret signals started and blocks until gate is closed
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeClient) Interpret(ctx context.Context, query string) ([]domain.RawElement, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if gate != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elements, f.err
}

func (f *fakeClient) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

type manualTimer struct {
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

// manualScheduler fires timers only when the test says so.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
	delays []time.Duration
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) domain.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fire runs every pending timer.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// fireStopped runs a stopped timer's callback anyway, as a real timer can when
// Stop races with expiry.
func (s *manualScheduler) fireStopped(i int) {
	s.mu.Lock()
	t := s.timers[i]
	s.mu.Unlock()
	t.f()
}

func pf(f float64) *float64 { return &f }

var (
	b0 = domain.Bounds{South: 51.49, West: -0.12, North: 51.52, East: -0.06}
	b1 = domain.Bounds{South: 48.85, West: 2.33, North: 48.87, East: 2.36}
	b2 = domain.Bounds{South: 40.71, West: -74.01, North: 40.73, East: -73.98}
	b3 = domain.Bounds{South: -33.87, West: 151.20, North: -33.85, East: 151.22}
)
