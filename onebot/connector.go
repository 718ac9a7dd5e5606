package onebot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wirebot/wirebot/async"
	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/logging"
)

// Options configures a Connector.
type Options struct {
	// AccessToken is sent as a bearer token on the upgrade request.
	AccessToken string
	// ReconnectDelay is the pause before each redial attempt.
	ReconnectDelay time.Duration
	// MaxRetry bounds redial attempts per outage. Negative means retry
	// forever; zero means give up on the first drop.
	MaxRetry int
	// SendCooldown throttles outbound actions. Zero disables throttling.
	SendCooldown time.Duration
	// CallTimeout bounds how long Send waits for an echo-tagged response.
	CallTimeout time.Duration
	// EventBuffer is the capacity of the inbound event queue.
	EventBuffer int
	Logger      logging.Logger
}

// Connector is a forward-WebSocket OneBot client implementing
// core.Connector.
type Connector struct {
	url      string
	opts     Options
	logger   logging.Logger
	cooldown *async.Cooldown

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan *core.ActionResult
	closed  bool

	writeMu sync.Mutex

	events chan core.Event
	done   chan struct{}
}

// Dial connects to a OneBot forward-WebSocket endpoint and starts the read
// loop. The initial dial honors the same retry policy as reconnects.
func Dial(ctx context.Context, url string, optFns ...func(o *Options)) (*Connector, error) {
	opts := Options{
		ReconnectDelay: 5 * time.Second,
		MaxRetry:       -1,
		CallTimeout:    30 * time.Second,
		EventBuffer:    256,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Connector{
		url:     url,
		opts:    opts,
		logger:  opts.Logger,
		pending: make(map[string]chan *core.ActionResult),
		events:  make(chan core.Event, opts.EventBuffer),
		done:    make(chan struct{}),
	}
	if opts.SendCooldown > 0 {
		c.cooldown = async.NewCooldown(opts.SendCooldown, async.CooldownWait)
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	go c.readLoop(conn)
	return c, nil
}

func (c *Connector) dial(ctx context.Context) (*websocket.Conn, error) {
	var header http.Header
	if c.opts.AccessToken != "" {
		header = http.Header{"Authorization": []string{"Bearer " + c.opts.AccessToken}}
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	c.logger.Info("connected", "url", c.url)
	return conn, nil
}

// redial attempts to restore a dropped connection within the retry bound.
func (c *Connector) redial() (*websocket.Conn, error) {
	for attempt := 0; c.opts.MaxRetry < 0 || attempt < c.opts.MaxRetry; attempt++ {
		timer := time.NewTimer(c.opts.ReconnectDelay)
		select {
		case <-timer.C:
		case <-c.done:
			timer.Stop()
			return nil, core.ErrConnectorClosed
		}
		conn, err := c.dial(context.Background())
		if err == nil {
			return conn, nil
		}
		c.logger.Warn("redial failed", "attempt", attempt+1, "error", err.Error())
	}
	return nil, fmt.Errorf("redial %s: retries exhausted", c.url)
}

func (c *Connector) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.failPending()
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			c.logger.Warn("connection lost", "error", err.Error())
			next, rerr := c.redial()
			if rerr != nil {
				c.logger.Error("reconnect abandoned", "error", rerr.Error())
				c.shutdown()
				return
			}
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				next.Close()
				return
			}
			c.conn = next
			c.mu.Unlock()
			conn = next
			continue
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.logger.Warn("undecodable frame", "error", err.Error())
			continue
		}
		if f.isResponse() {
			c.deliver(decodeResult(&f))
			continue
		}
		e, err := decodeEvent(&f, data)
		if err != nil {
			c.logger.Debug("skipping frame", "reason", err.Error())
			continue
		}
		select {
		case c.events <- e:
		case <-c.done:
			return
		}
	}
}

func (c *Connector) deliver(res *core.ActionResult) {
	c.mu.Lock()
	ch, ok := c.pending[res.Echo]
	if ok {
		delete(c.pending, res.Echo)
	}
	c.mu.Unlock()
	if ok {
		ch <- res
	} else {
		c.logger.Debug("unmatched response", "echo", res.Echo)
	}
}

// failPending sheds every waiter registered on the current connection.
// Closing the channel tells the waiter no response is coming.
func (c *Connector) failPending() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan *core.ActionResult)
	c.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

// Receive returns the next inbound event. It returns ErrConnectorClosed
// once the connector is closed and the queue is drained.
func (c *Connector) Receive(ctx context.Context) (core.Event, error) {
	select {
	case e := <-c.events:
		return e, nil
	default:
	}
	select {
	case e := <-c.events:
		return e, nil
	case <-c.done:
		return nil, core.ErrConnectorClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send writes an action to the endpoint. An action without an echo is
// fire-and-forget and returns a nil result; an echo-tagged action waits
// for the correlated response up to CallTimeout.
func (c *Connector) Send(ctx context.Context, a core.Action) (*core.ActionResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, core.ErrConnectorClosed
	}
	conn := c.conn
	c.mu.Unlock()

	if c.cooldown != nil {
		if err := c.cooldown.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	var resCh chan *core.ActionResult
	if a.Echo != "" {
		resCh = make(chan *core.ActionResult, 1)
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil, core.ErrConnectorClosed
		}
		c.pending[a.Echo] = resCh
		c.mu.Unlock()
	}

	req := request{Action: a.Type, Params: a.Params, Echo: a.Echo}
	c.writeMu.Lock()
	err := conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.unregister(a.Echo)
		return nil, fmt.Errorf("send %s: %w", a.Type, err)
	}
	if resCh == nil {
		return nil, nil
	}

	timer := time.NewTimer(c.opts.CallTimeout)
	defer timer.Stop()
	select {
	case res, ok := <-resCh:
		if !ok {
			return nil, core.ErrConnectorClosed
		}
		return res, nil
	case <-timer.C:
		c.unregister(a.Echo)
		return nil, fmt.Errorf("send %s: %w", a.Type, async.ErrTimeout)
	case <-ctx.Done():
		c.unregister(a.Echo)
		return nil, ctx.Err()
	}
}

func (c *Connector) unregister(echo string) {
	if echo == "" {
		return
	}
	c.mu.Lock()
	delete(c.pending, echo)
	c.mu.Unlock()
}

// Close tears down the connection. Pending Send calls fail with
// ErrConnectorClosed; queued events remain readable until drained.
func (c *Connector) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	close(c.done)
	var err error
	if conn != nil {
		err = conn.Close()
	}
	c.failPending()
	return err
}

// shutdown is the read loop's terminal path when reconnects are exhausted.
func (c *Connector) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)
}
