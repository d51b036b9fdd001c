package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"accessible_map/internal/adapters/observability"
	"accessible_map/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

type SessionsConfig struct {
	Debounce      time.Duration
	MaxSessions   int
	IdleTTL       time.Duration
	PermalinkBase string
}

// View is a session's state as the renderer reads it.
type View struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
	Count   int             `json:"count"`
	Markers []domain.Marker `json:"markers"`
}

type session struct {
	id      string
	signal  *Signal
	coord   *Coordinator
	tracker *Tracker

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions owns one tracker and coordinator per open map.
type Sessions struct {
	ctx    context.Context
	client domain.GeoClient
	sched  domain.Scheduler
	cfg    SessionsConfig
	now    func() time.Time

	mu sync.Mutex
	m  map[string]*session
}

// NewSessions builds a registry. ctx bounds every fetch the sessions issue.
func NewSessions(ctx context.Context, c domain.GeoClient, sched domain.Scheduler, cfg SessionsConfig) *Sessions {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}
	return &Sessions{
		ctx:    ctx,
		client: c,
		sched:  sched,
		cfg:    cfg,
		now:    time.Now,
		m:      map[string]*session{},
	}
}

// Open creates a session at b and runs its initial fetch before returning.
// If ctx ends before the fetch does, the session is discarded and ctx's error
// returned, since no caller will ever learn its id. The fetch itself runs
// under the registry context.
func (s *Sessions) Open(ctx context.Context, b domain.Bounds) (View, error) {
	id := uuid.NewString()
	l := log.With().Str("session", id).Logger()
	coord := NewCoordinator(s.client, l)
	sess := &session{
		id:       id,
		signal:   NewSignal(b),
		coord:    coord,
		tracker:  NewTracker(coord, s.sched, s.cfg.Debounce, l),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	if len(s.m) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		return View{}, ErrTooManySessions
	}
	s.m[id] = sess
	n := len(s.m)
	s.mu.Unlock()
	observability.SetSessions(n)

	if err := sess.tracker.Activate(s.ctx, sess.signal); err != nil {
		_ = s.Close(id)
		return View{}, err
	}
	if err := ctx.Err(); err != nil {
		_ = s.Close(id)
		l.Debug().Err(err).Msg("session discarded, caller gone")
		return View{}, err
	}
	l.Info().Interface("bounds", b).Msg("session opened")
	return s.view(sess), nil
}

// Settle reports that the session's viewport came to rest at b.
func (s *Sessions) Settle(id string, b domain.Bounds) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.touch(s.now())
	sess.signal.Emit(b)
	return nil
}

func (s *Sessions) View(id string) (View, error) {
	sess, err := s.get(id)
	if err != nil {
		return View{}, err
	}
	sess.touch(s.now())
	return s.view(sess), nil
}

// Close deactivates and forgets the session.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.m[id]
	delete(s.m, id)
	n := len(s.m)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	observability.SetSessions(n)
	sess.tracker.Deactivate()
	log.Info().Str("session", id).Msg("session closed")
	return nil
}

// Reap closes sessions not seen for longer than the idle TTL and returns how many.
func (s *Sessions) Reap(now time.Time) int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	var stale []string
	s.mu.Lock()
	for id, sess := range s.m {
		if now.Sub(sess.idleSince()) > s.cfg.IdleTTL {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	closed := 0
	for _, id := range stale {
		if s.Close(id) == nil {
			closed++
		}
	}
	return closed
}

// RunReaper calls Reap every interval until ctx is done.
func (s *Sessions) RunReaper(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if n := s.Reap(now); n > 0 {
				log.Info().Int("closed", n).Msg("idle sessions reaped")
			}
		}
	}
}

// CloseAll deactivates every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		_ = s.Close(id)
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Sessions) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Sessions) view(sess *session) View {
	st := sess.coord.State()
	return View{
		ID:      sess.id,
		Status:  st.Phase.String(),
		Loading: st.Loading(),
		Error:   st.Err,
		Count:   len(st.Venues),
		Markers: NewMarkers(st.Venues, s.cfg.PermalinkBase),
	}
}
