package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/logging"
	"github.com/wirebot/wirebot/pipeline"
)

// space holds the sessions of one registration. Every mutation of its
// session set and of per-session control state happens under mu, so
// concurrent create-if-absent resolutions for the same conversation key
// cannot race.
type space struct {
	mu     sync.Mutex
	rule   Rule
	live   []*Session // attachable: free or busy, not parked
	parked []*Session // suspended, awaiting a follow-up event
}

func (sp *space) moveToParked(s *Session) {
	sp.live = removeSession(sp.live, s)
	sp.parked = append(sp.parked, s)
}

func (sp *space) moveToLive(s *Session) {
	sp.parked = removeSession(sp.parked, s)
	sp.live = append(sp.live, s)
}

func removeSession(list []*Session, s *Session) []*Session {
	for i, x := range list {
		if x == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// Registry owns the live session set. Each registration (owner) gets a
// disjoint session namespace keyed by its rule.
type Registry struct {
	mu     sync.Mutex
	spaces map[any]*space
	closed atomic.Bool
	logger logging.Logger
}

// NewRegistry constructs an empty registry with optional overrides.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{spaces: make(map[any]*space), logger: opts.Logger}
}

// Shutdown puts the registry in drain mode: Resolve refuses new session
// acquisition with ErrShuttingDown while in-flight sessions (including
// parked ones awaiting resume) continue to completion.
func (r *Registry) Shutdown() {
	r.closed.Store(true)
}

func (r *Registry) spaceFor(owner any, rule Rule) *space {
	r.mu.Lock()
	defer r.mu.Unlock()
	sp, ok := r.spaces[owner]
	if !ok {
		sp = &space{rule: rule}
		r.spaces[owner] = sp
	}
	return sp
}

// Once builds a one-shot session that is not tracked in any space: it
// carries the store and record accessors but cannot suspend and needs no
// Exit. Used for handlers without a session rule and for conflict
// callbacks.
func (r *Registry) Once(e core.Event, args *pipeline.ParseArgs) *Session {
	return newSession(nil, e, args)
}

// Resolve finds or creates the session the event belongs to in the owner's
// namespace and acquires it for one handler body execution.
//
// Outcomes:
//   - (sess, false, nil): the caller now holds the session exclusively and
//     must call Exit when the body completes.
//   - (nil, true, nil): the event woke a suspended body, which resumes
//     holding the session; the caller must not run a new body.
//   - (nil, false, nil): the session is busy and the registration declined
//     to wait (conflict drop).
//   - ErrShuttingDown: the registry is draining.
//
// With wait true the call suspends behind the busy session and acquires it
// in FIFO order once the current body exits.
func (r *Registry) Resolve(ctx context.Context, owner any, rule Rule, e core.Event, args *pipeline.ParseArgs, wait bool) (*Session, bool, error) {
	sp := r.spaceFor(owner, rule)

	sp.mu.Lock()

	// Parked sessions take precedence: a follow-up event that satisfies
	// the wake predicate resumes the suspended body rather than starting
	// a new one.
	for _, s := range sp.parked {
		if !rule.Same(s.Event(), e) {
			continue
		}
		if s.park.filter == nil || s.park.filter(e) {
			pw := s.park
			s.park = nil
			s.attachRecords(e, args)
			sp.moveToLive(s)
			sp.mu.Unlock()
			pw.wake <- e
			return nil, true, nil
		}
		// Same conversation but the follow-up predicate rejects it:
		// exclusivity must span the suspension, so no fresh session
		// may be created. Queue behind the parked body or drop.
		return r.joinOrDrop(ctx, owner, sp, s, e, args, wait)
	}

	for _, s := range sp.live {
		if s.expired || !rule.Same(s.Event(), e) {
			continue
		}
		if !s.busy {
			s.busy = true
			s.refs++
			s.attachRecords(e, args)
			sp.mu.Unlock()
			return s, false, nil
		}
		return r.joinOrDrop(ctx, owner, sp, s, e, args, wait)
	}

	// No session for this conversation yet.
	if r.closed.Load() {
		sp.mu.Unlock()
		return nil, false, ErrShuttingDown
	}
	s := newSession(sp, e, args)
	s.busy = true
	s.refs = 1
	sp.live = append(sp.live, s)
	sp.mu.Unlock()
	return s, false, nil
}

// joinOrDrop handles an event that maps to a session currently held by
// another body. Called with sp.mu held; always releases it.
func (r *Registry) joinOrDrop(ctx context.Context, owner any, sp *space, s *Session, e core.Event, args *pipeline.ParseArgs, wait bool) (*Session, bool, error) {
	if !wait {
		sp.mu.Unlock()
		return nil, false, nil
	}
	if r.closed.Load() {
		sp.mu.Unlock()
		return nil, false, ErrShuttingDown
	}
	w := &waiter{e: e, args: args, grant: make(chan struct{})}
	s.refs++
	s.waiters = append(s.waiters, w)
	sp.mu.Unlock()

	select {
	case <-w.grant:
		if w.granted {
			// Ownership was handed off under sp.mu; records are
			// attached.
			return s, false, nil
		}
		// The session expired while we queued; start over against a
		// fresh conversation.
		return r.Resolve(ctx, owner, sp.rule, e, args, wait)
	case <-ctx.Done():
		sp.mu.Lock()
		for i, x := range s.waiters {
			if x == w {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				s.refs--
				r.evictIfDoneLocked(sp, s)
				sp.mu.Unlock()
				return nil, false, ctx.Err()
			}
		}
		granted := w.granted
		sp.mu.Unlock()
		if granted {
			// The grant raced the cancellation; we own the session
			// and must give it back.
			r.Exit(s)
		}
		return nil, false, ctx.Err()
	}
}

// Exit releases a session after one handler body execution. The next
// queued waiter (if any) acquires it directly; otherwise the session is
// freed and evicted once its reference count reaches zero. One-shot
// sessions ignore Exit.
func (r *Registry) Exit(s *Session) {
	if s == nil || s.space == nil {
		return
	}
	sp := s.space
	sp.mu.Lock()
	defer sp.mu.Unlock()

	s.refs--
	if len(s.waiters) > 0 && !s.expired {
		w := s.waiters[0]
		s.waiters = s.waiters[1:]
		s.attachRecords(w.e, w.args)
		w.granted = true
		close(w.grant) // busy stays true: direct hand-off
		return
	}
	// An expired session sheds its waiters: they re-resolve and start a
	// fresh conversation.
	if len(s.waiters) > 0 {
		for _, w := range s.waiters {
			s.refs--
			close(w.grant)
		}
		s.waiters = nil
	}
	s.busy = false
	r.evictIfDoneLocked(sp, s)
}

// evictIfDoneLocked removes a session with no remaining references and no
// pending suspension from its space. Caller holds sp.mu.
func (r *Registry) evictIfDoneLocked(sp *space, s *Session) {
	if s.refs <= 0 && s.park == nil && !s.busy {
		sp.live = removeSession(sp.live, s)
	}
}

// LiveCount reports the number of tracked sessions (live plus parked) for
// an owner. Intended for tests and introspection.
func (r *Registry) LiveCount(owner any) int {
	r.mu.Lock()
	sp, ok := r.spaces[owner]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.live) + len(sp.parked)
}

// ParkedCount reports the number of suspended sessions for an owner.
// Intended for tests and introspection.
func (r *Registry) ParkedCount(owner any) int {
	r.mu.Lock()
	sp, ok := r.spaces[owner]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.parked)
}
