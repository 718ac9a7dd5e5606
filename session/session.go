package session

import (
	"context"
	"sync"
	"time"

	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/pipeline"
)

// Session is the unit of conversational concurrency control. It carries a
// key/value store and the history of events (with their parsed args)
// attached so far. At most one handler body is ever actively executing
// inside a session, including across suspension points.
//
// Sessions are created by the Registry; a session without a rule (one-shot,
// from Once) supports the store and history but cannot suspend.
type Session struct {
	id      string
	space   *space // nil for one-shot sessions
	created time.Time

	// recMu guards the record fields, which the active body reads while
	// the registry appends on attach.
	recMu  sync.Mutex
	store  map[string]any
	events []core.Event
	args   []*pipeline.ParseArgs

	// The fields below are guarded by space.mu.
	busy    bool
	refs    int
	expired bool
	waiters []*waiter
	park    *parkedWait
}

// waiter is an event queued behind a busy session, holding a reference so
// the session is not evicted before the hand-off.
type waiter struct {
	e    core.Event
	args *pipeline.ParseArgs
	// granted is set under space.mu before grant closes: true means
	// ownership was handed off, false means the session expired and the
	// waiter must re-resolve.
	granted bool
	grant   chan struct{}
}

// parkedWait is the two-phase suspension record: the wake predicate plus
// the channel the parked body resumes on.
type parkedWait struct {
	filter func(core.Event) bool
	wake   chan core.Event
	since  time.Time
}

func newSession(sp *space, e core.Event, args *pipeline.ParseArgs) *Session {
	s := &Session{
		id:      core.NewID(),
		space:   sp,
		created: time.Now(),
		store:   make(map[string]any),
	}
	if e != nil {
		s.events = append(s.events, e)
		s.args = append(s.args, args)
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Created returns when the session was created.
func (s *Session) Created() time.Time { return s.created }

// attachRecords appends a newly accepted event and its parsed args.
func (s *Session) attachRecords(e core.Event, args *pipeline.ParseArgs) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	s.events = append(s.events, e)
	s.args = append(s.args, args)
}

// Event returns the most recently attached event.
func (s *Session) Event() core.Event {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

// Args returns the parsed arguments of the most recently attached event,
// which may be nil for handlers without a command parser.
func (s *Session) Args() *pipeline.ParseArgs {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	if len(s.args) == 0 {
		return nil
	}
	return s.args[len(s.args)-1]
}

// Events returns a copy of the attached event history.
func (s *Session) Events() []core.Event {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	out := make([]core.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Get reads a value from the session store.
func (s *Session) Get(key string) (any, bool) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	v, ok := s.store[key]
	return v, ok
}

// Set writes a value to the session store.
func (s *Session) Set(key string, v any) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	s.store[key] = v
}

// Delete removes a key from the session store.
func (s *Session) Delete(key string) {
	s.recMu.Lock()
	defer s.recMu.Unlock()
	delete(s.store, key)
}

// Expire marks the session for eviction once the current body exits.
// Subsequent events for the same conversation key create a fresh session.
func (s *Session) Expire() {
	if s.space == nil {
		return
	}
	s.space.mu.Lock()
	defer s.space.mu.Unlock()
	s.expired = true
}

// Suspend parks the executing handler body until a follow-up event of the
// same conversation arrives, optionally narrowed by filter, or the bound
// elapses. On resume the returned event has already been attached to the
// session and exclusive session access is retained throughout: no other
// body for this session runs while the wait is pending.
//
// On timeout the session is released (marked expired) and ErrSuspendTimeout
// is returned; context cancellation behaves the same with the context's
// error.
func (s *Session) Suspend(ctx context.Context, bound time.Duration, filter func(core.Event) bool) (core.Event, error) {
	if s.space == nil {
		return nil, ErrNotSuspendable
	}

	sp := s.space
	sp.mu.Lock()
	pw := &parkedWait{filter: filter, wake: make(chan core.Event, 1), since: time.Now()}
	s.park = pw
	sp.moveToParked(s)
	sp.mu.Unlock()

	timer := time.NewTimer(bound)
	defer timer.Stop()

	select {
	case e := <-pw.wake:
		return e, nil
	case <-timer.C:
		return s.abandonWait(pw, ErrSuspendTimeout)
	case <-ctx.Done():
		return s.abandonWait(pw, ctx.Err())
	}
}

// abandonWait withdraws a pending suspension. If a wake raced the
// withdrawal, the wake wins and the body resumes normally.
func (s *Session) abandonWait(pw *parkedWait, cause error) (core.Event, error) {
	sp := s.space
	sp.mu.Lock()
	if s.park == nil {
		// Already woken; the event is buffered.
		sp.mu.Unlock()
		return <-pw.wake, nil
	}
	s.park = nil
	s.expired = true
	sp.moveToLive(s)
	sp.mu.Unlock()
	return nil, cause
}
