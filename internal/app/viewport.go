package app

import (
	"sync"
	"time"

	"accessible_map/internal/domain"
)

// Signal is a viewport that is moved by explicit settle events. Sessions use it
// to stand in for the browser's map widget.
type Signal struct {
	mu     sync.Mutex
	bounds domain.Bounds
	nextID int
	subs   []handler
}

type handler struct {
	id int
	fn func(domain.Bounds)
}

func NewSignal(initial domain.Bounds) *Signal {
	return &Signal{bounds: initial}
}

func (s *Signal) Bounds() domain.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// OnSettle registers fn for every subsequent Emit.
func (s *Signal) OnSettle(fn func(domain.Bounds)) domain.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.subs = append(s.subs, handler{id: s.nextID, fn: fn})
	return &subscription{sig: s, id: s.nextID}
}

// Emit records b as the current viewport and notifies subscribers in
// registration order. Handlers run without the signal lock held.
func (s *Signal) Emit(b domain.Bounds) {
	s.mu.Lock()
	s.bounds = b
	subs := make([]handler, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, h := range subs {
		h.fn(b)
	}
}

// Subscribers reports how many handlers are registered.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Signal) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.subs {
		if h.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

type subscription struct {
	sig  *Signal
	id   int
	once sync.Once
}

func (s *subscription) Release() {
	s.once.Do(func() { s.sig.remove(s.id) })
}

// SystemScheduler schedules with time.AfterFunc.
type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) domain.Timer {
	return time.AfterFunc(d, f)
}
