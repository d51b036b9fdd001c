package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork covers non-2xx responses and transport failures.
	ErrNetwork = errors.New("network failure")
	// ErrParse covers response bodies that are not a valid element list.
	ErrParse = errors.New("parse failure")
)

// GeoClient runs one query against the remote geodata interpreter.
type GeoClient interface {
	Interpret(ctx context.Context, query string) ([]RawElement, error)
}

// Timer is a pending deferred call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc satisfies it through SystemScheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Subscription is a live registration on a settle signal.
type Subscription interface {
	Release()
}

// Viewport is the map widget as the tracker sees it.
type Viewport interface {
	Bounds() Bounds
	OnSettle(fn func(Bounds)) Subscription
}
