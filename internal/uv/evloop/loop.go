// Package evloop is the native event loop that internal/uv's Handle
// bindings run on top of: a single events channel fed by timer and
// network goroutines, drained by exactly one consumer goroutine so that
// callback quotations never re-enter the interpreter concurrently.
package evloop

import (
	"net"
	"sync/atomic"
)

// Kind distinguishes the shape of an Event's payload.
type Kind int

const (
	EventTimerTick Kind = iota
	EventTCPAccept
	EventTCPConnect
	EventTCPConnectError
	EventTCPRead
	EventTCPEOF
	EventTCPReadError
)

// Event is one occurrence dispatched to the loop's single consumer.
// Only the fields relevant to Kind are populated.
type Event struct {
	HandleID string
	Kind     Kind
	Data     []byte
	Conn     net.Conn
}

// Loop is a bare channel plus an active-handle count: producer
// goroutines (timers, accept loops, read loops) only ever send Events;
// Run is the sole consumer and the only place that may block waiting
// for one. ActiveCount reaching zero with no buffered events ends Run,
// mirroring libuv's "no more active handles or requests" exit rule.
type Loop struct {
	events chan Event
	wake   chan struct{}
	active atomic.Int64
}

// New returns an idle Loop ready to have handles registered on it.
func New() *Loop {
	return &Loop{events: make(chan Event, 64), wake: make(chan struct{}, 1)}
}

// Pin marks a handle as active, keeping Run from returning while it is
// registered, armed, or otherwise still doing work on the loop's
// behalf.
func (l *Loop) Pin() {
	l.active.Add(1)
}

// Unpin releases one active reference, taken by Pin, and nudges Run to
// re-check whether it can now return. Unpin carries no Event of its
// own — a bare atomic decrement gives Run nothing to wake it up on — so
// without this signal a decrement landing just after Run consumed its
// last event and re-parked on the events channel would never be
// noticed, leaving uv:run blocked forever on an otherwise-idle loop.
func (l *Loop) Unpin() {
	l.active.Add(-1)
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// ActiveCount reports the current number of pinned handles/requests.
func (l *Loop) ActiveCount() int64 {
	return l.active.Load()
}

// Emit enqueues an event for the consumer. Never called from the
// consumer goroutine itself.
func (l *Loop) Emit(ev Event) {
	l.events <- ev
}

// Run drains events, calling dispatch for each, until no handle keeps
// the loop pinned and the event queue is empty, or dispatch reports an
// error. dispatch is only ever called from this goroutine, so callback
// quotations never race with each other (spec: "the loop is not
// re-entered from within a callback"). A fatal error from a script
// callback must stop the loop immediately rather than wait for
// ActiveCount to drain — a repeating timer or an open TCP read never
// reaches zero on its own, and the source's `exit(1)`-on-error behavior
// has no "keep ticking after the crash" equivalent.
//
// The blocking wait selects on both the events channel and the wake
// channel Unpin signals, rather than blocking on events alone: the
// idle-exit condition can only become true via an Unpin, so Run must be
// woken by one even when no further Event is ever coming.
func (l *Loop) Run(dispatch func(Event) error) error {
	for {
		if l.ActiveCount() <= 0 && len(l.events) == 0 {
			return nil
		}
		select {
		case ev := <-l.events:
			if err := dispatch(ev); err != nil {
				return err
			}
		case <-l.wake:
		}
	}
}
