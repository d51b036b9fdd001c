package app

import "accessible_map/internal/domain"

// Phase is where a coordinator sits in its fetch cycle.
type Phase int

const (
	PhaseIdle Phase = iota // nothing fetched yet
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "idle"
	}
}

// State is the coordinator's {status, venues, error} tuple. Transitions are
// value methods so they can be tested without a coordinator.
type State struct {
	Phase  Phase
	Venues []domain.Venue
	Err    string
}

func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Begin moves to loading and clears the error. ok is false if a fetch is
// already in flight, in which case s is returned unchanged. Venues stay
// visible until the fetch replaces them.
func (s State) Begin() (next State, ok bool) {
	if s.Loading() {
		return s, false
	}
	return State{Phase: PhaseLoading, Venues: s.Venues}, true
}

// Succeed replaces the venue set.
func (s State) Succeed(venues []domain.Venue) State {
	if venues == nil {
		venues = []domain.Venue{}
	}
	return State{Phase: PhaseSuccess, Venues: venues}
}

// Fail clears the venue set and records msg.
func (s State) Fail(msg string) State {
	return State{Phase: PhaseFailure, Venues: []domain.Venue{}, Err: msg}
}

// Abandon leaves loading without applying a result, restoring prev, the
// state that was current when the fetch began.
func (s State) Abandon(prev State) State {
	if !s.Loading() {
		return s
	}
	if prev.Loading() {
		prev.Phase = PhaseIdle
	}
	return prev
}
