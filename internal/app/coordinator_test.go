package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"accessible_map/internal/app"
	"accessible_map/internal/domain"
)

func TestCoordinator_SuccessReplacesVenues(t *testing.T) {
	fc := &fakeClient{elements: []domain.RawElement{
		{Type: domain.KindNode, ID: 10, Lat: pf(51.5), Lon: pf(-0.1), Tags: map[string]string{"name": "A"}},
		{Type: domain.KindWay, ID: 11},
	}}
	c := app.NewCoordinator(fc, zerolog.Nop())

	if !c.RequestSync(context.Background(), b0) {
		t.Fatal("request on idle coordinator was dropped")
	}
	if q := fc.calls(); len(q) != 1 || q[0] != app.BuildQuery(b0) {
		t.Fatalf("expected one query for b0, got %d", len(q))
	}
	st := c.State()
	if st.Phase != app.PhaseSuccess || st.Err != "" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if len(st.Venues) != 1 || st.Venues[0].Lat != 51.5 || st.Venues[0].Lon != -0.1 {
		t.Fatalf("unexpected venues: %+v", st.Venues)
	}

	// next fetch fully replaces the set
	fc.elements = []domain.RawElement{{Type: domain.KindNode, ID: 12, Lat: pf(1), Lon: pf(2)}}
	c.RequestSync(context.Background(), b1)
	st = c.State()
	if len(st.Venues) != 1 || st.Venues[0].ID != 12 {
		t.Fatalf("venues not replaced: %+v", st.Venues)
	}
}

func TestCoordinator_FailureClearsVenues(t *testing.T) {
	fc := &fakeClient{elements: []domain.RawElement{{Type: domain.KindNode, ID: 1, Lat: pf(1), Lon: pf(1)}}}
	c := app.NewCoordinator(fc, zerolog.Nop())
	c.RequestSync(context.Background(), b0)

	fc.err = fmt.Errorf("%w: interpreter returned 504 Gateway Timeout", domain.ErrNetwork)
	c.RequestSync(context.Background(), b1)

	st := c.State()
	if st.Loading() {
		t.Fatal("loading must be cleared after failure")
	}
	if st.Phase != app.PhaseFailure || len(st.Venues) != 0 {
		t.Fatalf("unexpected state: %+v", st)
	}
	if !strings.HasPrefix(st.Err, "Failed to load venue data: ") || !strings.Contains(st.Err, "504") {
		t.Fatalf("unexpected error message: %q", st.Err)
	}
}

func TestCoordinator_ParseFailure(t *testing.T) {
	fc := &fakeClient{err: fmt.Errorf("%w: unexpected EOF", domain.ErrParse)}
	c := app.NewCoordinator(fc, zerolog.Nop())
	c.RequestSync(context.Background(), b0)

	st := c.State()
	if st.Phase != app.PhaseFailure || st.Err == "" || len(st.Venues) != 0 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestCoordinator_DropsWhileLoading(t *testing.T) {
	fc := &fakeClient{
		elements: []domain.RawElement{{Type: domain.KindNode, ID: 1, Lat: pf(1), Lon: pf(1)}},
		gate:     make(chan struct{}),
		started:  make(chan struct{}, 1),
	}
	c := app.NewCoordinator(fc, zerolog.Nop())

	done := make(chan bool)
	go func() { done <- c.RequestSync(context.Background(), b0) }()
	<-fc.started

	if c.RequestSync(context.Background(), b1) {
		t.Fatal("second request must be dropped while the first is in flight")
	}
	if st := c.State(); !st.Loading() {
		t.Fatalf("dropped request changed state: %+v", st)
	}

	close(fc.gate)
	if !<-done {
		t.Fatal("first request reported as dropped")
	}
	if q := fc.calls(); len(q) != 1 || q[0] != app.BuildQuery(b0) {
		t.Fatalf("expected exactly the first query, got %d calls", len(q))
	}
	if st := c.State(); st.Phase != app.PhaseSuccess || len(st.Venues) != 1 {
		t.Fatalf("unexpected final state: %+v", st)
	}
}

func TestCoordinator_InvalidateDiscardsInFlight(t *testing.T) {
	fc := &fakeClient{
		elements: []domain.RawElement{{Type: domain.KindNode, ID: 1, Lat: pf(1), Lon: pf(1)}},
		gate:     make(chan struct{}),
		started:  make(chan struct{}, 1),
	}
	c := app.NewCoordinator(fc, zerolog.Nop())

	done := make(chan struct{})
	go func() { c.RequestSync(context.Background(), b0); close(done) }()
	<-fc.started
	c.Invalidate()
	close(fc.gate)
	<-done

	st := c.State()
	if st.Loading() {
		t.Fatal("stale completion must still clear loading")
	}
	if st.Phase != app.PhaseIdle || len(st.Venues) != 0 {
		t.Fatalf("stale result applied: %+v", st)
	}
}

type panicClient struct{}

func (panicClient) Interpret(context.Context, string) ([]domain.RawElement, error) {
	panic("transport exploded")
}

func TestCoordinator_PanicStillLeavesLoading(t *testing.T) {
	c := app.NewCoordinator(panicClient{}, zerolog.Nop())
	func() {
		defer func() { _ = recover() }()
		c.RequestSync(context.Background(), b0)
	}()
	st := c.State()
	if st.Loading() || st.Phase != app.PhaseFailure {
		t.Fatalf("unexpected state after panic: %+v", st)
	}
}

func TestCoordinator_StateIsACopy(t *testing.T) {
	fc := &fakeClient{elements: []domain.RawElement{{Type: domain.KindNode, ID: 1, Lat: pf(1), Lon: pf(1)}}}
	c := app.NewCoordinator(fc, zerolog.Nop())
	c.RequestSync(context.Background(), b0)

	st := c.State()
	st.Venues[0].ID = 99
	if c.State().Venues[0].ID != 1 {
		t.Fatal("caller mutated coordinator state")
	}
}

func TestCoordinator_StateCopiesTags(t *testing.T) {
	fc := &fakeClient{elements: []domain.RawElement{
		{Type: domain.KindNode, ID: 1, Lat: pf(1), Lon: pf(1), Tags: map[string]string{"name": "Library"}},
	}}
	c := app.NewCoordinator(fc, zerolog.Nop())
	c.RequestSync(context.Background(), b0)

	st := c.State()
	st.Venues[0].Tags["name"] = "changed"
	st.Venues[0].Tags["wheelchair"] = "no"
	got := c.State().Venues[0].Tags
	if got["name"] != "Library" || len(got) != 1 {
		t.Fatalf("caller mutated coordinator tags: %v", got)
	}
}

func TestCoordinator_RequestSyncIfInactive(t *testing.T) {
	fc := &fakeClient{}
	c := app.NewCoordinator(fc, zerolog.Nop())

	if c.RequestSyncIf(context.Background(), b0, func() bool { return false }) {
		t.Fatal("inactive caller must be rejected")
	}
	if len(fc.calls()) != 0 {
		t.Fatal("no fetch expected")
	}
	if st := c.State(); st.Phase != app.PhaseIdle || st.Loading() {
		t.Fatalf("state must be untouched: %+v", st)
	}
}

func TestFailureMessage(t *testing.T) {
	got := app.FailureMessage(errors.New("Gateway Timeout"))
	if got != "Failed to load venue data: Gateway Timeout" {
		t.Fatalf("got %q", got)
	}
}
