package app_test

import (
	"testing"

	"accessible_map/internal/app"
	"accessible_map/internal/domain"
)

func TestState_BeginRejectsWhileLoading(t *testing.T) {
	s, ok := app.State{}.Begin()
	if !ok || !s.Loading() {
		t.Fatalf("begin from idle: ok=%v state=%+v", ok, s)
	}
	again, ok := s.Begin()
	if ok {
		t.Fatal("begin while loading must be rejected")
	}
	if again.Phase != app.PhaseLoading {
		t.Fatalf("rejected begin changed state: %+v", again)
	}
}

func TestState_BeginClearsErrorKeepsVenues(t *testing.T) {
	v := []domain.Venue{{ID: 1, Kind: domain.KindNode, Lat: 1, Lon: 1}}
	prev := app.State{Phase: app.PhaseFailure, Venues: v, Err: "boom"}
	s, ok := prev.Begin()
	if !ok || s.Err != "" || len(s.Venues) != 1 {
		t.Fatalf("unexpected state after begin: %+v", s)
	}
}

func TestState_SucceedAndFail(t *testing.T) {
	loading, _ := app.State{}.Begin()

	ok := loading.Succeed(nil)
	if ok.Phase != app.PhaseSuccess || ok.Venues == nil || ok.Err != "" {
		t.Fatalf("succeed: %+v", ok)
	}

	failed := app.State{Phase: app.PhaseLoading, Venues: []domain.Venue{{ID: 1}}}.Fail("down")
	if failed.Phase != app.PhaseFailure || len(failed.Venues) != 0 || failed.Err != "down" {
		t.Fatalf("fail: %+v", failed)
	}
	if failed.Loading() || ok.Loading() {
		t.Fatal("terminal states must not be loading")
	}
}

func TestState_AbandonRestoresPrevious(t *testing.T) {
	prev := app.State{Phase: app.PhaseFailure, Venues: []domain.Venue{}, Err: "old"}
	loading, _ := prev.Begin()

	got := loading.Abandon(prev)
	if got.Phase != app.PhaseFailure || got.Err != "old" {
		t.Fatalf("abandon: %+v", got)
	}

	idle := app.State{}
	if got := idle.Abandon(prev); got.Phase != app.PhaseIdle {
		t.Fatalf("abandon on a non-loading state must be a no-op, got %+v", got)
	}
}

func TestPhase_String(t *testing.T) {
	for p, want := range map[app.Phase]string{
		app.PhaseIdle: "idle", app.PhaseLoading: "loading",
		app.PhaseSuccess: "success", app.PhaseFailure: "failure",
	} {
		if p.String() != want {
			t.Fatalf("%d: got %s want %s", p, p.String(), want)
		}
	}
}
