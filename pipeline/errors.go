package pipeline

import "fmt"

// ParseError reports malformed command input. The handler whose parser
// rejected the input is skipped, and the error is delivered to the
// registration's error path so a collaborator can message the user.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Input, e.Reason)
}

// FormatError reports an argument that failed coercion or validation
// against its declared spec. Unlike a checker rejection it is not silent:
// it is surfaced to the handler-invocation error path.
type FormatError struct {
	Cmd    string
	Index  int
	Name   string
	Reason string
	Cause  error
}

func (e *FormatError) Error() string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("format arg %s of command %q: %s", name, e.Cmd, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Cause }
