package pipeline

import (
	"regexp"
	"strings"

	"github.com/wirebot/wirebot/core"
)

// Matcher is the boolean text-matching form of the first pipeline stage:
// does this message's text satisfy a pattern. A handler declares a Matcher
// or a Parser, never both.
type Matcher interface {
	Match(e *core.MessageEvent) bool
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(e *core.MessageEvent) bool

// Match implements Matcher.
func (f MatcherFunc) Match(e *core.MessageEvent) bool { return f(e) }

// StartMatcher matches messages whose text starts with the target.
type StartMatcher struct{ Target string }

// Match implements Matcher.
func (m *StartMatcher) Match(e *core.MessageEvent) bool {
	return strings.HasPrefix(e.Text, m.Target)
}

// EndMatcher matches messages whose text ends with the target.
type EndMatcher struct{ Target string }

// Match implements Matcher.
func (m *EndMatcher) Match(e *core.MessageEvent) bool {
	return strings.HasSuffix(e.Text, m.Target)
}

// FullMatcher matches messages whose text equals the target exactly.
type FullMatcher struct{ Target string }

// Match implements Matcher.
func (m *FullMatcher) Match(e *core.MessageEvent) bool {
	return e.Text == m.Target
}

// ContainMatcher matches messages containing the target. Freq > 1 requires
// that many occurrences; the default of 0 or 1 requires at least one.
type ContainMatcher struct {
	Target string
	Freq   int
}

// Match implements Matcher.
func (m *ContainMatcher) Match(e *core.MessageEvent) bool {
	if m.Freq <= 1 {
		return strings.Contains(e.Text, m.Target)
	}
	return strings.Count(e.Text, m.Target) == m.Freq
}

// RegexMatcher matches messages whose text contains the compiled pattern.
type RegexMatcher struct{ Pattern *regexp.Regexp }

// NewRegexMatcher compiles the expression, panicking on an invalid pattern
// (registrations are static, so this surfaces at bootstrap).
func NewRegexMatcher(expr string) *RegexMatcher {
	return &RegexMatcher{Pattern: regexp.MustCompile(expr)}
}

// Match implements Matcher.
func (m *RegexMatcher) Match(e *core.MessageEvent) bool {
	return m.Pattern.MatchString(e.Text)
}

// MatcherGroup combines child matchers under a LogicMode, mirroring
// CheckerGroup for the matching stage.
type MatcherGroup struct {
	Mode     LogicMode
	Matchers []Matcher
}

// NewMatcherGroup builds a combinator node over the given children.
func NewMatcherGroup(mode LogicMode, matchers ...Matcher) *MatcherGroup {
	return &MatcherGroup{Mode: mode, Matchers: matchers}
}

// Match implements Matcher.
func (g *MatcherGroup) Match(e *core.MessageEvent) bool {
	return evalSeq(g.Mode, len(g.Matchers), func(i int) bool {
		return g.Matchers[i].Match(e)
	})
}
