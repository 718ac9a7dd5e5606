package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wirebot/wirebot/core"
)

func msg(text string) *core.MessageEvent {
	return core.NewPrivateMessage(42, text)
}

func TestMatchers(t *testing.T) {
	tests := []struct {
		name    string
		matcher Matcher
		text    string
		want    bool
	}{
		{"start hit", &StartMatcher{Target: "!"}, "!help", true},
		{"start miss", &StartMatcher{Target: "!"}, "help!", false},
		{"end hit", &EndMatcher{Target: "?"}, "anyone there?", true},
		{"end miss", &EndMatcher{Target: "?"}, "?anyone", false},
		{"full hit", &FullMatcher{Target: "ping"}, "ping", true},
		{"full miss", &FullMatcher{Target: "ping"}, "ping ", false},
		{"contain hit", &ContainMatcher{Target: "bot"}, "hey bot!", true},
		{"contain miss", &ContainMatcher{Target: "bot"}, "hey", false},
		{"contain freq hit", &ContainMatcher{Target: "ha", Freq: 2}, "haha", true},
		{"contain freq miss", &ContainMatcher{Target: "ha", Freq: 2}, "hahaha", false},
		{"regex hit", NewRegexMatcher(`^\d+$`), "12345", true},
		{"regex miss", NewRegexMatcher(`^\d+$`), "12a45", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Match(msg(tt.text)))
		})
	}
}

func TestMatcherGroupModes(t *testing.T) {
	yes := MatcherFunc(func(*core.MessageEvent) bool { return true })
	no := MatcherFunc(func(*core.MessageEvent) bool { return false })
	e := msg("x")

	assert.True(t, NewMatcherGroup(LogicAnd, yes, yes).Match(e))
	assert.False(t, NewMatcherGroup(LogicAnd, yes, no).Match(e))
	assert.True(t, NewMatcherGroup(LogicOr, no, yes).Match(e))
	assert.False(t, NewMatcherGroup(LogicOr, no, no).Match(e))
	assert.True(t, NewMatcherGroup(LogicNot, no).Match(e))
	assert.False(t, NewMatcherGroup(LogicNot, yes).Match(e))
	assert.True(t, NewMatcherGroup(LogicXor, yes, no).Match(e))
	assert.False(t, NewMatcherGroup(LogicXor, yes, yes).Match(e))
	assert.True(t, NewMatcherGroup(LogicXor, yes, yes, yes).Match(e))

	// Empty groups never match.
	assert.False(t, NewMatcherGroup(LogicAnd).Match(e))
}

func TestMatcherGroupShortCircuit(t *testing.T) {
	calls := 0
	counting := MatcherFunc(func(*core.MessageEvent) bool { calls++; return false })
	never := MatcherFunc(func(*core.MessageEvent) bool {
		t.Fatal("operand after short-circuit evaluated")
		return false
	})
	assert.False(t, NewMatcherGroup(LogicAnd, counting, never).Match(msg("x")))
	assert.Equal(t, 1, calls)
}
