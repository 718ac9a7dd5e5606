package pipeline

import (
	"fmt"

	"github.com/wirebot/wirebot/core"
)

// Spec declares the preprocessing stages of one handler registration. For
// message events exactly one of Matcher or Parser may be set; non-message
// events skip that stage entirely. Checker is optional.
type Spec struct {
	Matcher Matcher
	Parser  *CmdParser
	Checker Checker
}

// Validate rejects contradictory stage declarations at bootstrap.
func (s *Spec) Validate() error {
	if s.Matcher != nil && s.Parser != nil {
		return fmt.Errorf("pipeline: matcher and parser are mutually exclusive")
	}
	return nil
}

// Result is the pipeline outcome for one (event, registration) pair.
type Result struct {
	// Accepted is false when any stage rejected the event for this
	// handler (a silent no-op, not an error).
	Accepted bool
	// Args is non-nil only when a command parser matched; after Run it
	// has been through the format stage.
	Args *ParseArgs
}

// Run applies the stages in order: match-or-parse, check, format. Any stage
// may short-circuit the rest. A non-nil error is a genuine failure
// (*ParseError or *FormatError) that the dispatcher reports on the
// registration's error path; a rejected Result is silent.
func (s *Spec) Run(e core.Event) (Result, error) {
	var args *ParseArgs

	if msg, ok := e.(*core.MessageEvent); ok {
		switch {
		case s.Matcher != nil:
			if !s.Matcher.Match(msg) {
				return Result{}, nil
			}
		case s.Parser != nil:
			parsed, err := s.Parser.Parse(msg.Text)
			if err != nil {
				return Result{}, err
			}
			if parsed == nil {
				return Result{}, nil
			}
			args = parsed
		}
	}

	if s.Checker != nil && !s.Checker.Check(e) {
		return Result{}, nil
	}

	if args != nil && s.Parser != nil {
		if err := s.Parser.Format(args); err != nil {
			return Result{}, err
		}
	}

	return Result{Accepted: true, Args: args}, nil
}
