package dispatch

import (
	"fmt"
	"time"

	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/pipeline"
	"github.com/wirebot/wirebot/session"
)

// HandlerFunc is a handler body. It runs as an independent concurrent unit
// of work; a returned error is reported on the registration's error path
// but never crashes the dispatcher.
type HandlerFunc func(ctx *Context) error

// ErrorFunc receives pipeline failures (ParseError, FormatError) and
// handler body errors attributed to this registration, so a collaborator
// can message the originating user.
type ErrorFunc func(e core.Event, err error)

// Registration declares one handler: which events it wants, how they are
// preprocessed, how its conversations are keyed, and the body to run. The
// set of registrations is established during bootstrap and never mutated at
// runtime.
type Registration struct {
	// Name identifies the registration in logs and errors.
	Name string

	// Types filters which event categories reach the pipeline. Empty
	// means message events only.
	Types []core.EventType

	// Priority orders evaluation: higher first, ties broken by
	// registration order.
	Priority core.PriorLevel

	// Pipeline holds the match/parse, check and format stages.
	Pipeline pipeline.Spec

	// Rule, when set, keys this handler's conversations. Without a rule
	// every accepted event runs in a one-shot session.
	Rule session.Rule

	// ConflictWait queues an event behind its busy session instead of
	// dropping it.
	ConflictWait bool

	// ConflictHandler, when set, runs in a one-shot session for events
	// dropped by a busy session.
	ConflictHandler HandlerFunc

	// Block stops lower-priority registrations from seeing an event this
	// registration accepted.
	Block bool

	// Temp disables the registration after its first accepted event.
	Temp bool

	// Timeout bounds each handler body execution. Zero means unbounded.
	Timeout time.Duration

	// OvertimeHandler, when set, runs after a body misses its Timeout.
	OvertimeHandler HandlerFunc

	// OnError receives failures attributed to this registration. When
	// nil they are logged.
	OnError ErrorFunc

	// Handler is the body.
	Handler HandlerFunc
}

// validate rejects contradictory declarations at bootstrap.
func (r *Registration) validate() error {
	if r.Handler == nil {
		return fmt.Errorf("registration %q: handler body required", r.Name)
	}
	if err := r.Pipeline.Validate(); err != nil {
		return fmt.Errorf("registration %q: %w", r.Name, err)
	}
	if r.ConflictWait && r.ConflictHandler != nil {
		return fmt.Errorf("registration %q: conflict wait and conflict handler are mutually exclusive", r.Name)
	}
	if r.OvertimeHandler != nil && r.Timeout <= 0 {
		return fmt.Errorf("registration %q: overtime handler requires a timeout", r.Name)
	}
	if r.Priority < core.PriorMin || r.Priority > core.PriorMax {
		return fmt.Errorf("registration %q: priority %d out of range", r.Name, r.Priority)
	}
	return nil
}

// types returns the effective event-type filter.
func (r *Registration) types() []core.EventType {
	if len(r.Types) == 0 {
		return []core.EventType{core.EventMessage}
	}
	return r.Types
}
