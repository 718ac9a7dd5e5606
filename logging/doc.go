// Package logging provides a tiny abstraction over slog so the rest of
// wirebot depends on a minimal interface (Logger) while users can plug any
// structured logger. BotLogger adds contextual helpers (component, event,
// session, handler) and domain-specific helpers for dispatch, handler and
// action logging.
package logging
