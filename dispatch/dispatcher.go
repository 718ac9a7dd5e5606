package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wirebot/wirebot/async"
	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/lifecycle"
	"github.com/wirebot/wirebot/logging"
	"github.com/wirebot/wirebot/pipeline"
	"github.com/wirebot/wirebot/session"
)

// Options configures a Dispatcher.
type Options struct {
	// Registry manages conversation sessions. Defaults to a fresh one.
	Registry *session.Registry
	// Gate is consulted before each dispatch decision. Defaults to a
	// gate already in the running state.
	Gate *lifecycle.Gate
	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
	// PauseQueueSize bounds how many events are held while the gate is
	// paused; overflow drops the oldest.
	PauseQueueSize int
}

// entry pairs a registration with its runtime flags. disabled flips once
// for temp registrations.
type entry struct {
	reg      *Registration
	disabled atomic.Bool
}

// Dispatcher routes connector events to handler registrations. The
// registration snapshot is immutable after New; all runtime state lives in
// the session registry and the per-entry disabled flags.
type Dispatcher struct {
	byType   map[core.EventType][]*entry
	registry *session.Registry
	gate     *lifecycle.Gate
	logger   logging.Logger

	pauseQ   []core.Event
	pauseMax int
	resumeCh chan struct{}
	bodies   sync.WaitGroup
}

// New validates the registrations and builds the dispatch snapshot:
// per event type, ordered by descending priority with registration order
// breaking ties.
func New(regs []*Registration, optFns ...func(o *Options)) (*Dispatcher, error) {
	opts := Options{
		Logger:         logging.NoOpLogger{},
		PauseQueueSize: 128,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Registry == nil {
		opts.Registry = session.NewRegistry()
	}
	if opts.Gate == nil {
		opts.Gate = lifecycle.NewGate()
		if err := opts.Gate.To(lifecycle.Running); err != nil {
			return nil, err
		}
	}

	byType := make(map[core.EventType][]*entry)
	for _, reg := range regs {
		if err := reg.validate(); err != nil {
			return nil, err
		}
		en := &entry{reg: reg}
		for _, t := range reg.types() {
			byType[t] = append(byType[t], en)
		}
	}
	for _, entries := range byType {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].reg.Priority > entries[j].reg.Priority
		})
	}

	return &Dispatcher{
		byType:   byType,
		registry: opts.Registry,
		gate:     opts.Gate,
		logger:   opts.Logger,
		pauseMax: opts.PauseQueueSize,
		resumeCh: make(chan struct{}, 1),
	}, nil
}

// Registry returns the session registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *session.Registry { return d.registry }

// NotifyResume tells the dispatcher the gate returned to running so queued
// events can drain. Safe to call from lifecycle hooks.
func (d *Dispatcher) NotifyResume() {
	select {
	case d.resumeCh <- struct{}{}:
	default:
	}
}

// Run consumes events from the connector until the context ends, the
// connector closes, or the gate reaches a terminal state. A clean connector
// close or context cancellation returns nil.
func (d *Dispatcher) Run(ctx context.Context, conn core.Connector) error {
	events := make(chan core.Event)
	recvErr := make(chan error, 1)

	rctx, cancelRecv := context.WithCancel(ctx)
	defer cancelRecv()
	go func() {
		for {
			e, err := conn.Receive(rctx)
			if err != nil {
				recvErr <- err
				return
			}
			select {
			case events <- e:
			case <-rctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-d.resumeCh:
			d.drainPaused(ctx, conn)
		case err := <-recvErr:
			if errors.Is(err, core.ErrConnectorClosed) {
				d.logger.Info("connector closed, dispatch loop ending")
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		case e := <-events:
			d.offer(ctx, conn, e)
			if d.gate.State() == lifecycle.Stopped {
				return nil
			}
		}
	}
}

// Wait blocks until every scheduled handler body has completed. Used to
// drain during shutdown.
func (d *Dispatcher) Wait() { d.bodies.Wait() }

// offer applies the lifecycle policy to one event: dispatch when running
// (draining any pause backlog first, preserving arrival order), queue when
// paused, drop otherwise.
func (d *Dispatcher) offer(ctx context.Context, conn core.Connector, e core.Event) {
	switch d.gate.State() {
	case lifecycle.Running:
		d.drainPaused(ctx, conn)
		d.dispatch(ctx, conn, e)
	case lifecycle.Paused:
		if len(d.pauseQ) >= d.pauseMax {
			dropped := d.pauseQ[0]
			d.pauseQ = d.pauseQ[1:]
			d.logger.Warn("pause queue full, dropping oldest event", "event_id", dropped.ID())
		}
		d.pauseQ = append(d.pauseQ, e)
	default:
		d.logger.Debug("event dropped by lifecycle gate",
			"event_id", e.ID(), "state", d.gate.State().String())
	}
}

func (d *Dispatcher) drainPaused(ctx context.Context, conn core.Connector) {
	if d.gate.State() != lifecycle.Running {
		return
	}
	for _, e := range d.pauseQ {
		d.dispatch(ctx, conn, e)
	}
	d.pauseQ = nil
}

// dispatch evaluates candidate registrations for one event in priority
// order. A blocking registration that accepts the event stops evaluation of
// strictly lower priorities; equal priorities still run.
func (d *Dispatcher) dispatch(ctx context.Context, conn core.Connector, e core.Event) {
	permit := core.PriorMin
	for _, en := range d.byType[e.Type()] {
		if en.reg.Priority < permit {
			continue
		}
		if en.disabled.Load() {
			continue
		}
		res, err := en.reg.Pipeline.Run(e)
		if err != nil {
			d.reportError(en.reg, e, err)
			continue
		}
		if !res.Accepted {
			continue
		}
		if en.reg.Temp && !en.disabled.CompareAndSwap(false, true) {
			continue
		}

		d.bodies.Add(1)
		go d.execute(ctx, conn, en.reg, e, res.Args)

		if en.reg.Block && en.reg.Priority > permit {
			permit = en.reg.Priority
		}
	}
}

// execute is one isolated handler-body unit of work: it resolves the
// session, runs the body (optionally under a deadline), and releases the
// session. Panics and errors are contained and reported; they never reach
// the dispatch loop.
func (d *Dispatcher) execute(ctx context.Context, conn core.Connector, reg *Registration, e core.Event, args *pipeline.ParseArgs) {
	defer d.bodies.Done()
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("handler panicked",
				"handler", reg.Name, "event_id", e.ID(),
				"panic", fmt.Sprint(rec), "stack", string(debug.Stack()))
		}
	}()

	var sess *session.Session
	if reg.Rule != nil {
		resolved, attached, err := d.registry.Resolve(ctx, reg, reg.Rule, e, args, reg.ConflictWait)
		switch {
		case errors.Is(err, session.ErrShuttingDown):
			d.logger.Debug("session refused during drain", "handler", reg.Name, "event_id", e.ID())
			return
		case err != nil:
			return
		case attached:
			// The event resumed a suspended body, which owns the
			// session now.
			return
		case resolved == nil:
			// Conflict drop.
			if reg.ConflictHandler != nil {
				once := d.registry.Once(e, args)
				d.runBody(ctx, conn, reg, once, e, args, reg.ConflictHandler)
			}
			return
		}
		sess = resolved
		defer d.registry.Exit(sess)
	} else {
		sess = d.registry.Once(e, args)
	}

	d.runBody(ctx, conn, reg, sess, e, args, reg.Handler)
}

func (d *Dispatcher) runBody(ctx context.Context, conn core.Connector, reg *Registration, sess *session.Session, e core.Event, args *pipeline.ParseArgs, body HandlerFunc) {
	start := time.Now()
	run := func(c context.Context) error {
		return body(newContext(c, reg, sess, conn, d.logger, e, args))
	}

	var err error
	if reg.Timeout > 0 {
		err = async.WithTimeout(ctx, reg.Timeout, run)
	} else {
		err = run(ctx)
	}

	if errors.Is(err, async.ErrTimeout) {
		d.logger.Warn("handler exceeded its deadline",
			"handler", reg.Name, "event_id", e.ID(), "timeout", reg.Timeout)
		if reg.OvertimeHandler != nil {
			octx := newContext(ctx, reg, sess, conn, d.logger, e, args)
			if oerr := reg.OvertimeHandler(octx); oerr != nil {
				d.reportError(reg, e, oerr)
			}
		}
		return
	}
	if err != nil {
		d.reportError(reg, e, err)
		return
	}
	d.logger.Debug("handler completed",
		"handler", reg.Name, "event_id", e.ID(), "duration", time.Since(start))
}

// reportError delivers a failure to the registration's error path, falling
// back to the log.
func (d *Dispatcher) reportError(reg *Registration, e core.Event, err error) {
	if reg.OnError != nil {
		reg.OnError(e, err)
		return
	}
	d.logger.Error("handler error", "handler", reg.Name, "event_id", e.ID(), "error", err.Error())
}
