package session

import "errors"

var (
	// ErrSuspendTimeout is returned by Suspend when no matching follow-up
	// event arrived within the bound. The session is released.
	ErrSuspendTimeout = errors.New("session suspension timed out")

	// ErrShuttingDown is returned by Resolve once the registry has been
	// shut down: new session acquisition is refused so in-flight
	// sessions can drain.
	ErrShuttingDown = errors.New("shutting down: session acquisition refused")

	// ErrNotSuspendable is returned by Suspend on a one-shot session,
	// which has no rule to act as a wake predicate.
	ErrNotSuspendable = errors.New("session without a rule cannot suspend")
)
