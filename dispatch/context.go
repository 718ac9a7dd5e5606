package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/logging"
	"github.com/wirebot/wirebot/pipeline"
	"github.com/wirebot/wirebot/session"
)

// Context is the invocation context handed to a handler body: the accepted
// event with its parsed arguments, the session it runs in, and helpers for
// sending actions and suspending.
type Context struct {
	context.Context

	reg    *Registration
	sess   *session.Session
	conn   core.Connector
	logger logging.Logger

	event core.Event
	args  *pipeline.ParseArgs
}

func newContext(ctx context.Context, reg *Registration, sess *session.Session, conn core.Connector, logger logging.Logger, e core.Event, args *pipeline.ParseArgs) *Context {
	return &Context{
		Context: ctx,
		reg:     reg,
		sess:    sess,
		conn:    conn,
		logger:  logger,
		event:   e,
		args:    args,
	}
}

// Event returns the event currently driving this body. After a resumed
// suspension it is the follow-up event.
func (c *Context) Event() core.Event { return c.event }

// Args returns the parsed command arguments, nil for handlers without a
// parser.
func (c *Context) Args() *pipeline.ParseArgs { return c.args }

// Session returns the session this body holds.
func (c *Context) Session() *session.Session { return c.sess }

// Get reads from the session store.
func (c *Context) Get(key string) (any, bool) { return c.sess.Get(key) }

// Set writes to the session store.
func (c *Context) Set(key string, v any) { c.sess.Set(key, v) }

// Do hands an action to the connector. Use Action.WithEcho to wait for the
// protocol result.
func (c *Context) Do(a core.Action) (*core.ActionResult, error) {
	return c.conn.Send(c.Context, a)
}

// ErrNoReplyTarget is returned by Send when the current event is not a
// message and therefore has no origin to reply to.
var ErrNoReplyTarget = errors.New("current event has no reply target")

// Send replies with text to the origin of the current event, which must be
// a message event.
func (c *Context) Send(text string) error {
	msg, ok := c.event.(*core.MessageEvent)
	if !ok {
		return ErrNoReplyTarget
	}
	_, err := c.conn.Send(c.Context, core.NewReplyAction(msg, text))
	return err
}

// SendWait is Send but blocks for the protocol result.
func (c *Context) SendWait(text string) (*core.ActionResult, error) {
	msg, ok := c.event.(*core.MessageEvent)
	if !ok {
		return nil, ErrNoReplyTarget
	}
	return c.conn.Send(c.Context, core.NewReplyAction(msg, text).WithEcho())
}

// Suspend parks this body until a follow-up event of the same conversation
// arrives (optionally narrowed by filter) or the bound elapses. On resume
// the context's Event and Args are replaced by the follow-up and the
// returned event is the same follow-up; the session remains exclusively
// held throughout. On timeout the session is released and
// session.ErrSuspendTimeout is returned.
func (c *Context) Suspend(bound time.Duration, filter func(core.Event) bool) (core.Event, error) {
	e, err := c.sess.Suspend(c.Context, bound, filter)
	if err != nil {
		return nil, err
	}
	c.event = e
	c.args = c.sess.Args()
	return e, nil
}

// Expire marks the session so the next event of this conversation starts a
// fresh one.
func (c *Context) Expire() { c.sess.Expire() }

// Logger returns a logger scoped to this invocation.
func (c *Context) Logger() logging.Logger { return c.logger }
