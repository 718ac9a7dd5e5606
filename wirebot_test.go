package wirebot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirebot/wirebot/config"
	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/dispatch"
	"github.com/wirebot/wirebot/lifecycle"
	"github.com/wirebot/wirebot/pipeline"
)

type memConn struct {
	events chan core.Event

	mu   sync.Mutex
	sent []core.Action
}

func newMemConn() *memConn {
	return &memConn{events: make(chan core.Event, 16)}
}

func (c *memConn) Receive(ctx context.Context) (core.Event, error) {
	select {
	case e, ok := <-c.events:
		if !ok {
			return nil, core.ErrConnectorClosed
		}
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *memConn) Send(ctx context.Context, a core.Action) (*core.ActionResult, error) {
	c.mu.Lock()
	c.sent = append(c.sent, a)
	c.mu.Unlock()
	return nil, nil
}

func (c *memConn) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, a := range c.sent {
		if m, ok := a.Params["message"].(string); ok {
			out = append(out, m)
		}
	}
	return out
}

func newTestBot(t *testing.T, conn core.Connector) *Bot {
	t.Helper()
	b, err := New(config.Default(), func(o *Options) { o.Connector = conn })
	require.NoError(t, err)
	return b
}

func TestBotRunsRegisteredHandlers(t *testing.T) {
	conn := newMemConn()
	b := newTestBot(t, conn)

	require.NoError(t, b.OnFullMatch("ping", func(ctx *dispatch.Context) error {
		return ctx.Send("pong")
	}))
	require.NoError(t, b.OnCommand("add", func(ctx *dispatch.Context) error {
		a := ctx.Args().Vals[0].(int64)
		bv := ctx.Args().Vals[1].(int64)
		if a+bv == 5 {
			return ctx.Send("five")
		}
		return ctx.Send("not five")
	},
		&pipeline.ArgFormatter{Name: "a", Type: pipeline.ArgInt, Required: true},
		&pipeline.ArgFormatter{Name: "b", Type: pipeline.ArgInt, Required: true},
	))

	conn.events <- core.NewPrivateMessage(1, "ping")
	conn.events <- core.NewPrivateMessage(1, "/add 2 3")
	close(conn.events)

	require.NoError(t, b.Run(context.Background()))
	assert.ElementsMatch(t, []string{"pong", "five"}, conn.texts())
	assert.Equal(t, lifecycle.Stopped, b.State())
}

func TestBotRejectsRegistrationAfterStart(t *testing.T) {
	conn := newMemConn()
	b := newTestBot(t, conn)
	require.NoError(t, b.OnFullMatch("x", func(*dispatch.Context) error { return nil }))

	close(conn.events)
	require.NoError(t, b.Run(context.Background()))

	err := b.OnFullMatch("late", func(*dispatch.Context) error { return nil })
	assert.Error(t, err)
}

func TestBotRunTwiceFails(t *testing.T) {
	conn := newMemConn()
	b := newTestBot(t, conn)
	require.NoError(t, b.OnFullMatch("x", func(*dispatch.Context) error { return nil }))
	close(conn.events)
	require.NoError(t, b.Run(context.Background()))
	assert.Error(t, b.Run(context.Background()))
}

func TestBotLifecycleHooks(t *testing.T) {
	conn := newMemConn()
	b := newTestBot(t, conn)
	require.NoError(t, b.OnFullMatch("x", func(*dispatch.Context) error { return nil }))

	var mu sync.Mutex
	var states []lifecycle.State
	b.OnLifecycle(func(from, to lifecycle.State) {
		mu.Lock()
		states = append(states, to)
		mu.Unlock()
	})

	close(conn.events)
	require.NoError(t, b.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []lifecycle.State{
		lifecycle.Running, lifecycle.Stopping, lifecycle.Stopped,
	}, states)
}

func TestBotPauseResume(t *testing.T) {
	conn := newMemConn()
	b := newTestBot(t, conn)

	got := make(chan string, 4)
	require.NoError(t, b.OnFullMatch("hello", func(ctx *dispatch.Context) error {
		got <- ctx.Event().(*core.MessageEvent).Text
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return b.State() == lifecycle.Running
	}, time.Second, time.Millisecond)

	require.NoError(t, b.Pause())
	conn.events <- core.NewPrivateMessage(1, "hello")

	select {
	case <-got:
		t.Fatal("handler ran while paused")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, b.Resume())
	select {
	case text := <-got:
		assert.Equal(t, "hello", text)
	case <-time.After(time.Second):
		t.Fatal("queued event never dispatched after resume")
	}

	close(conn.events)
	require.NoError(t, <-done)
}

func TestBotRunCleanOnSignalCancel(t *testing.T) {
	conn := newMemConn()
	b := newTestBot(t, conn)
	require.NoError(t, b.OnFullMatch("x", func(*dispatch.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool {
		return b.State() == lifecycle.Running
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bot did not stop on cancellation")
	}
	assert.Equal(t, lifecycle.Stopped, b.State())
}

func TestBotAccessCheckerFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Access.Owner = 1
	cfg.Access.BlackUsers = []int64{4}

	b, err := New(cfg, func(o *Options) { o.Connector = newMemConn() })
	require.NoError(t, err)

	c := b.AccessChecker(core.LevelUser)
	assert.True(t, c.Check(core.NewPrivateMessage(1, "hi")))
	assert.True(t, c.Check(core.NewPrivateMessage(2, "hi")))
	assert.False(t, c.Check(core.NewPrivateMessage(4, "hi")))
}
