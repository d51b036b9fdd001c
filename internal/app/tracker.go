package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"accessible_map/internal/adapters/observability"
	"accessible_map/internal/domain"
)

// DefaultDebounce is the quiescence delay between the last settle event and the fetch.
const DefaultDebounce = 1000 * time.Millisecond

var ErrAlreadyActive = errors.New("tracker already active")

// Syncer is the part of Coordinator the tracker drives.
type Syncer interface {
	RequestSyncIf(ctx context.Context, b domain.Bounds, live func() bool) bool
	Invalidate()
}

// Tracker binds a viewport's settle events to a Syncer through a trailing-edge
// debounce. It holds a single timer slot: each settle replaces the pending call.
type Tracker struct {
	syncer Syncer
	sched  domain.Scheduler
	delay  time.Duration
	log    zerolog.Logger

	mu     sync.Mutex
	active bool
	epoch  uint64 // bumped per activation
	ctx    context.Context
	sub    domain.Subscription
	timer  domain.Timer
	slot   uint64
}

func NewTracker(s Syncer, sched domain.Scheduler, delay time.Duration, l zerolog.Logger) *Tracker {
	if sched == nil {
		sched = SystemScheduler{}
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Tracker{syncer: s, sched: sched, delay: delay, log: l}
}

// Activate subscribes to vp and syncs the current bounds once, without
// debounce. ctx is used for every fetch the tracker triggers.
func (t *Tracker) Activate(ctx context.Context, vp domain.Viewport) error {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return ErrAlreadyActive
	}
	t.active = true
	t.epoch++
	epoch := t.epoch
	t.ctx = ctx
	t.sub = vp.OnSettle(t.settle)
	t.mu.Unlock()

	t.syncer.RequestSyncIf(ctx, vp.Bounds(), t.liveAt(epoch))
	return nil
}

// liveAt reports whether the activation numbered epoch is still current.
func (t *Tracker) liveAt(epoch uint64) func() bool {
	return func() bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.active && t.epoch == epoch
	}
}

// Deactivate releases the subscription, cancels any pending call and marks an
// in-flight fetch stale. Settle events missed during teardown are not replayed.
func (t *Tracker) Deactivate() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	sub := t.sub
	t.sub = nil
	t.cancelPending()
	t.mu.Unlock()

	sub.Release()
	t.syncer.Invalidate()
}

// Active reports whether the tracker is subscribed.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Tracker) settle(b domain.Bounds) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	if t.cancelPending() {
		observability.ObserveDebounce("rescheduled")
	} else {
		observability.ObserveDebounce("scheduled")
	}
	slot := t.slot
	t.timer = t.sched.AfterFunc(t.delay, func() { t.fire(slot, b) })
}

// cancelPending stops the timer in the slot and advances the slot so a
// callback that already started is ignored. Caller holds t.mu.
func (t *Tracker) cancelPending() bool {
	t.slot++
	if t.timer == nil {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	return true
}

func (t *Tracker) fire(slot uint64, b domain.Bounds) {
	t.mu.Lock()
	if !t.active || slot != t.slot {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	ctx, epoch := t.ctx, t.epoch
	t.mu.Unlock()

	observability.ObserveDebounce("fired")
	t.log.Debug().Interface("bounds", b).Msg("viewport settled")
	// Deactivate may run from here on; liveAt is rechecked under the coordinator lock
	t.syncer.RequestSyncIf(ctx, b, t.liveAt(epoch))
}
