package app

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"accessible_map/internal/adapters/observability"
	"accessible_map/internal/domain"
)

var errAborted = errors.New("fetch aborted")

// FailureMessage is the user-visible text for a failed fetch.
func FailureMessage(err error) string {
	return "Failed to load venue data: " + err.Error()
}

// Coordinator runs at most one venue fetch at a time. A request that arrives
// while a fetch is in flight is dropped, never queued.
type Coordinator struct {
	client domain.GeoClient
	log    zerolog.Logger

	mu    sync.Mutex
	state State
	prev  State
	gen   uint64
}

func NewCoordinator(c domain.GeoClient, l zerolog.Logger) *Coordinator {
	return &Coordinator{client: c, log: l}
}

// RequestSync fetches venues for b and blocks until the result is applied.
// It returns false without doing anything if a fetch is already running.
func (c *Coordinator) RequestSync(ctx context.Context, b domain.Bounds) bool {
	return c.RequestSyncIf(ctx, b, nil)
}

// RequestSyncIf is RequestSync gated on live, which is evaluated while the
// generation token is taken. A caller whose teardown flips live and then calls
// Invalidate can never have a fetch applied after that teardown. live must not
// call back into the coordinator.
func (c *Coordinator) RequestSyncIf(ctx context.Context, b domain.Bounds, live func() bool) bool {
	c.mu.Lock()
	if live != nil && !live() {
		c.mu.Unlock()
		observability.ObserveSync("inactive")
		c.log.Debug().Interface("bounds", b).Msg("sync skipped, caller inactive")
		return false
	}
	next, ok := c.state.Begin()
	if !ok {
		c.mu.Unlock()
		observability.ObserveSync("dropped")
		c.log.Debug().Interface("bounds", b).Msg("sync dropped, fetch in flight")
		return false
	}
	c.prev = c.state
	c.state = next
	c.gen++
	token := c.gen
	c.mu.Unlock()

	observability.ObserveSync("accepted")
	c.fetch(ctx, b, token)
	return true
}

func (c *Coordinator) fetch(ctx context.Context, b domain.Bounds, token uint64) {
	var (
		venues []domain.Venue
		err    = errAborted
	)
	// runs on panic too, so loading is always cleared
	defer func() { c.finish(token, b, venues, err) }()

	raw, ferr := c.client.Interpret(ctx, BuildQuery(b))
	if ferr != nil {
		err = ferr
		return
	}
	venues, err = Normalize(raw), nil
	c.log.Debug().Int("elements", len(raw)).Int("venues", len(venues)).Msg("venues normalized")
}

func (c *Coordinator) finish(token uint64, b domain.Bounds, venues []domain.Venue, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case token != c.gen:
		c.state = c.state.Abandon(c.prev)
		observability.ObserveSync("stale")
		c.log.Debug().Interface("bounds", b).Msg("stale fetch result discarded")
	case err != nil:
		c.state = c.state.Fail(FailureMessage(err))
		observability.ObserveSync("failure")
		c.log.Warn().Err(err).Interface("bounds", b).Msg("venue fetch failed")
	default:
		c.state = c.state.Succeed(venues)
		observability.ObserveSync("success")
		c.log.Info().Int("venues", len(venues)).Interface("bounds", b).Msg("venues updated")
	}
}

// Invalidate marks any in-flight fetch as stale; its result is dropped on arrival.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

// State returns a deep copy of the current state, tags included.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if n := len(s.Venues); n > 0 {
		s.Venues = make([]domain.Venue, n)
		for i, v := range c.state.Venues {
			v.Tags = maps.Clone(v.Tags)
			s.Venues[i] = v
		}
	}
	return s
}
