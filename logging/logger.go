package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal logging interface for wirebot. Users may
// provide their own implementation or use the built-in adapters.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// Config configures construction of a BotLogger.
type Config struct {
	Level     slog.Level
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns a baseline text info-level configuration.
func DefaultConfig() *Config {
	return &Config{Level: slog.LevelInfo, Format: "text", Output: os.Stderr}
}

// BotLogger wraps slog.Logger adding contextual cloning helpers and domain
// convenience methods. The With* methods are cheap and return copies.
type BotLogger struct {
	logger    *slog.Logger
	component string
	attrs     []slog.Attr
}

// NewLogger builds a BotLogger from a config (or defaults if nil).
func NewLogger(cfg *Config) *BotLogger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return &BotLogger{logger: slog.New(handler), component: cfg.Component}
}

func (l *BotLogger) clone() *BotLogger {
	nl := *l
	nl.attrs = append([]slog.Attr(nil), l.attrs...)
	return &nl
}

// WithComponent sets the logical component (dispatcher, session, connector).
func (l *BotLogger) WithComponent(c string) *BotLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithEvent attaches the event identifier to every entry.
func (l *BotLogger) WithEvent(eventID string) *BotLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, slog.String("event_id", eventID))
	return nl
}

// WithSession attaches the session identifier to every entry.
func (l *BotLogger) WithSession(sessionID string) *BotLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, slog.String("session_id", sessionID))
	return nl
}

// WithHandler attaches the handler registration name to every entry.
func (l *BotLogger) WithHandler(name string) *BotLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, slog.String("handler", name))
	return nl
}

func (l *BotLogger) log(level slog.Level, msg string, args []any) {
	attrs := make([]slog.Attr, 0, len(l.attrs)+1+len(args)/2)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	attrs = append(attrs, l.attrs...)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Debug logs at debug level.
func (l *BotLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }

// Info logs at info level.
func (l *BotLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func (l *BotLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args) }

// Error logs at error level.
func (l *BotLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

// LogHandler records the outcome of one handler body execution.
func (l *BotLogger) LogHandler(name string, dur time.Duration, err error) {
	if err != nil {
		l.Error("handler failed", "handler", name, "duration", dur, "error", err.Error())
		return
	}
	l.Debug("handler completed", "handler", name, "duration", dur)
}

// LogAction records the outcome of sending an outbound action.
func (l *BotLogger) LogAction(actionType string, dur time.Duration, err error) {
	if err != nil {
		l.Error("action send failed", "action", actionType, "duration", dur, "error", err.Error())
		return
	}
	l.Debug("action sent", "action", actionType, "duration", dur)
}
