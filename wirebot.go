// Package wirebot assembles the event dispatch engine into a runnable bot:
// configuration, connector, lifecycle gate, session registry and
// dispatcher, wired together behind a small facade.
package wirebot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wirebot/wirebot/config"
	"github.com/wirebot/wirebot/core"
	"github.com/wirebot/wirebot/dispatch"
	"github.com/wirebot/wirebot/lifecycle"
	"github.com/wirebot/wirebot/logging"
	"github.com/wirebot/wirebot/onebot"
	"github.com/wirebot/wirebot/pipeline"
	"github.com/wirebot/wirebot/session"
)

// Options configures a Bot beyond its config file.
type Options struct {
	// Logger replaces the config-derived logger.
	Logger *logging.BotLogger
	// Connector replaces the config-derived OneBot connector. The bot
	// does not close a caller-supplied connector.
	Connector core.Connector
}

// Bot owns one connector and the handlers registered against it.
// Registration happens during bootstrap; Run freezes the handler set.
type Bot struct {
	name     string
	cfg      *config.Config
	logger   *logging.BotLogger
	gate     *lifecycle.Gate
	registry *session.Registry

	conn    core.Connector
	ownConn bool

	mu      sync.Mutex
	regs    []*dispatch.Registration
	started bool

	dispatcher *dispatch.Dispatcher
}

// New builds a bot from a configuration.
func New(cfg *config.Config, optFns ...func(o *Options)) (*Bot, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(&logging.Config{
			Level:  logLevel(cfg.LogLevel()),
			Format: cfg.Log.Format,
			Output: logging.DefaultConfig().Output,
		})
	}

	b := &Bot{
		name:   cfg.Bot.Name,
		cfg:    cfg,
		logger: logger,
		gate:   lifecycle.NewGate(),
		registry: session.NewRegistry(func(o *session.Options) {
			o.Logger = logger.WithComponent("session")
		}),
		conn: opts.Connector,
	}
	return b, nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Name returns the configured bot name.
func (b *Bot) Name() string { return b.name }

// Logger returns the bot's root logger.
func (b *Bot) Logger() *logging.BotLogger { return b.logger }

// State returns the current lifecycle state.
func (b *Bot) State() lifecycle.State { return b.gate.State() }

// OnLifecycle registers a hook observing lifecycle transitions. Bootstrap
// only.
func (b *Bot) OnLifecycle(h lifecycle.Hook) { b.gate.OnTransition(h) }

// Register adds a handler registration. It fails once Run has started.
func (b *Bot) Register(reg *dispatch.Registration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return fmt.Errorf("bot %s: registration after start", b.name)
	}
	b.regs = append(b.regs, reg)
	return nil
}

// OnCommand registers a handler for a named command, parsed with the
// configured start and separator tokens. Formatters coerce and validate
// the command arguments positionally.
func (b *Bot) OnCommand(cmd string, handler dispatch.HandlerFunc, formatters ...*pipeline.ArgFormatter) error {
	parser, err := pipeline.NewCmdParser(b.cfg.Command.Start, b.cfg.Command.Sep, []string{cmd}, formatters...)
	if err != nil {
		return err
	}
	return b.Register(&dispatch.Registration{
		Name:     "cmd:" + cmd,
		Priority: core.PriorMean,
		Pipeline: pipeline.Spec{Parser: parser},
		Handler:  handler,
	})
}

// OnFullMatch registers a handler triggered by an exact message text.
func (b *Bot) OnFullMatch(text string, handler dispatch.HandlerFunc) error {
	return b.Register(&dispatch.Registration{
		Name:     "full:" + text,
		Priority: core.PriorMean,
		Pipeline: pipeline.Spec{Matcher: &pipeline.FullMatcher{Target: text}},
		Handler:  handler,
	})
}

// AccessChecker builds a checker from the config's access section.
func (b *Bot) AccessChecker(required core.UserLevel) *pipeline.AccessChecker {
	owner, superUsers, whiteUsers, blackUsers, whiteGroups := b.cfg.AccessLists()
	return &pipeline.AccessChecker{
		Required:    required,
		Owner:       owner,
		SuperUsers:  superUsers,
		WhiteUsers:  whiteUsers,
		BlackUsers:  blackUsers,
		WhiteGroups: whiteGroups,
	}
}

// Run connects and dispatches until the context ends or the connector
// closes, then drains sessions and running handlers before returning.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return fmt.Errorf("bot %s: already started", b.name)
	}
	b.started = true
	regs := b.regs
	b.mu.Unlock()

	d, err := dispatch.New(regs, func(o *dispatch.Options) {
		o.Registry = b.registry
		o.Gate = b.gate
		o.Logger = b.logger.WithComponent("dispatch")
	})
	if err != nil {
		return err
	}
	b.dispatcher = d
	b.gate.OnTransition(func(from, to lifecycle.State) {
		if from == lifecycle.Paused && to == lifecycle.Running {
			d.NotifyResume()
		}
	})

	if b.conn == nil {
		cc := b.cfg.Connector
		conn, err := onebot.Dial(ctx, cc.URL, func(o *onebot.Options) {
			o.AccessToken = cc.AccessToken
			o.ReconnectDelay = cc.ReconnectDelay
			o.MaxRetry = cc.MaxRetry
			o.SendCooldown = cc.SendCooldown
			o.Logger = b.logger.WithComponent("connector")
		})
		if err != nil {
			return err
		}
		b.conn = conn
		b.ownConn = true
	}

	if err := b.gate.To(lifecycle.Running); err != nil {
		return err
	}
	b.logger.Info("bot running", "name", b.name)

	runErr := d.Run(ctx, b.conn)

	if err := b.gate.To(lifecycle.Stopping); err != nil {
		b.logger.Warn("stop transition rejected", "error", err.Error())
	}
	b.registry.Shutdown()
	d.Wait()
	if b.ownConn {
		if closer, ok := b.conn.(io.Closer); ok {
			closer.Close()
		}
	}
	if err := b.gate.To(lifecycle.Stopped); err != nil {
		b.logger.Warn("stopped transition rejected", "error", err.Error())
	}
	b.logger.Info("bot stopped", "name", b.name)
	return runErr
}

// Pause moves the bot to the paused state. Inbound events queue up to the
// dispatcher's pause bound.
func (b *Bot) Pause() error { return b.gate.To(lifecycle.Paused) }

// Resume returns a paused bot to running and drains queued events.
func (b *Bot) Resume() error { return b.gate.To(lifecycle.Running) }
