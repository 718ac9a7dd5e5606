package onebot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebot/wirebot/core"
)

// fakeEndpoint is a minimal OneBot server: it pushes scripted events and
// answers every action with a canned ok response.
type fakeEndpoint struct {
	srv    *httptest.Server
	conns  chan *websocket.Conn
	tokens chan string
}

func newFakeEndpoint(t *testing.T) *fakeEndpoint {
	t.Helper()
	ep := &fakeEndpoint{
		conns:  make(chan *websocket.Conn, 4),
		tokens: make(chan string, 4),
	}
	ep.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep.tokens <- r.Header.Get("Authorization")
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ep.conns <- c
	}))
	t.Cleanup(ep.srv.Close)
	return ep
}

func (ep *fakeEndpoint) url() string {
	return "ws" + strings.TrimPrefix(ep.srv.URL, "http")
}

func (ep *fakeEndpoint) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-ep.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected")
		return nil
	}
}

func dialTest(t *testing.T, ep *fakeEndpoint, optFns ...func(o *Options)) *Connector {
	t.Helper()
	c, err := Dial(context.Background(), ep.url(), optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConnectorReceivesEvents(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep)
	server := ep.accept(t)
	defer server.Close()

	event := `{"post_type":"message","message_type":"private","user_id":7,"raw_message":"hi"}`
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte(event)))

	e, err := c.Receive(context.Background())
	require.NoError(t, err)
	msg := e.(*core.MessageEvent)
	assert.Equal(t, "hi", msg.Text)
}

func TestConnectorSendFireAndForget(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep)
	server := ep.accept(t)
	defer server.Close()

	res, err := c.Send(context.Background(), core.NewRecallAction(5))
	require.NoError(t, err)
	assert.Nil(t, res, "no echo means no response wait")

	var req request
	require.NoError(t, server.ReadJSON(&req))
	assert.Equal(t, "delete_msg", req.Action)
	assert.Empty(t, req.Echo)
}

func TestConnectorSendEchoCorrelation(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep)
	server := ep.accept(t)
	defer server.Close()

	go func() {
		var req request
		if err := server.ReadJSON(&req); err != nil {
			return
		}
		resp, _ := json.Marshal(map[string]any{
			"status": "ok", "retcode": 0, "echo": req.Echo,
			"data": map[string]any{"message_id": 11},
		})
		_ = server.WriteMessage(websocket.TextMessage, resp)
	}()

	a := core.NewSendAction("hello", true, 7, 0).WithEcho()
	res, err := c.Send(context.Background(), a)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.OK())
	assert.Equal(t, a.Echo, res.Echo)
	assert.Equal(t, float64(11), res.Data["message_id"])
}

func TestConnectorSendsAccessToken(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep, func(o *Options) { o.AccessToken = "sekrit" })
	server := ep.accept(t)
	defer server.Close()
	_ = c

	assert.Equal(t, "Bearer sekrit", <-ep.tokens)
}

func TestConnectorCloseUnblocksReceive(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep)
	server := ep.accept(t)
	defer server.Close()

	got := make(chan error, 1)
	go func() {
		_, err := c.Receive(context.Background())
		got <- err
	}()

	require.NoError(t, c.Close())
	select {
	case err := <-got:
		assert.ErrorIs(t, err, core.ErrConnectorClosed)
	case <-time.After(time.Second):
		t.Fatal("Receive never unblocked after Close")
	}

	_, err := c.Send(context.Background(), core.NewRecallAction(1))
	assert.ErrorIs(t, err, core.ErrConnectorClosed)
}

func TestConnectorReconnects(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep, func(o *Options) {
		o.ReconnectDelay = 10 * time.Millisecond
		o.MaxRetry = 20
	})
	first := ep.accept(t)
	first.Close() // drop the connection

	second := ep.accept(t)
	defer second.Close()

	event := `{"post_type":"message","message_type":"private","user_id":7,"raw_message":"back"}`
	require.NoError(t, second.WriteMessage(websocket.TextMessage, []byte(event)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "back", e.(*core.MessageEvent).Text)
}

func TestConnectorRetriesExhausted(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep, func(o *Options) {
		o.ReconnectDelay = time.Millisecond
		o.MaxRetry = 0
	})
	server := ep.accept(t)
	server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Receive(ctx)
	assert.ErrorIs(t, err, core.ErrConnectorClosed)
}

func TestConnectorSendCooldown(t *testing.T) {
	ep := newFakeEndpoint(t)
	c := dialTest(t, ep, func(o *Options) { o.SendCooldown = 50 * time.Millisecond })
	server := ep.accept(t)
	defer server.Close()

	start := time.Now()
	_, err := c.Send(context.Background(), core.NewRecallAction(1))
	require.NoError(t, err)
	_, err = c.Send(context.Background(), core.NewRecallAction(2))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond,
		"second send waits out the cooldown")
}
