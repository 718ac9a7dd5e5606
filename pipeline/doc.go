// Package pipeline implements the per-handler preprocessing stages applied
// to each incoming event: match-or-parse, check, format.
//
// For message events the first stage is either a boolean Matcher (does the
// text satisfy a pattern) or a structured command Parser (extract a command
// name and arguments) - mutually exclusive per handler; non-message events
// skip it. The check stage is a boolean predicate, optionally a LogicMode
// combination of several. The format stage coerces parsed arguments against
// declared specs.
//
// Stage rejections (matcher miss, checker fail) are silent no-ops for the
// handler; malformed input and failed coercion surface as ParseError and
// FormatError respectively.
package pipeline
