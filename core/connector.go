package core

import (
	"context"
	"errors"
)

// ErrConnectorClosed is returned by Connector.Receive once the underlying
// transport has terminally closed and no further events will arrive.
var ErrConnectorClosed = errors.New("connector closed")

// Connector is the wire boundary: it turns raw transport traffic into typed
// events and typed actions back into transport traffic. Implementations own
// reconnection and retry policy; the core never retries a failed Send.
type Connector interface {
	// Receive blocks until the next event is available, the context is
	// cancelled, or the connection closes terminally (ErrConnectorClosed).
	Receive(ctx context.Context) (Event, error)

	// Send delivers an action to the protocol. When the action carries an
	// Echo, Send waits for and returns the correlated result; otherwise
	// the result is nil. Transport failures are reported to the caller,
	// never swallowed.
	Send(ctx context.Context, a Action) (*ActionResult, error)
}
