package session

import "github.com/wirebot/wirebot/core"

// Rule decides whether two events belong to the same conversation. Rules
// are user-supplied; each registration's sessions form a disjoint
// namespace, so comparison need not be transitive across different rules.
type Rule interface {
	Same(a, b core.Event) bool
}

// RuleFunc adapts a plain function to the Rule interface.
type RuleFunc func(a, b core.Event) bool

// Same implements Rule.
func (f RuleFunc) Same(a, b core.Event) bool { return f(a, b) }

// SenderRule groups message events by sender and chat: two messages belong
// to the same conversation iff they come from the same user in the same
// place (same group, or both private).
func SenderRule() Rule {
	return RuleFunc(func(a, b core.Event) bool {
		ma, ok1 := a.(*core.MessageEvent)
		mb, ok2 := b.(*core.MessageEvent)
		if !ok1 || !ok2 {
			return false
		}
		return ma.UserID == mb.UserID && ma.GroupID == mb.GroupID
	})
}

// GroupRule groups message events by group chat alone: every member of one
// group shares a single conversation.
func GroupRule() Rule {
	return RuleFunc(func(a, b core.Event) bool {
		ma, ok1 := a.(*core.MessageEvent)
		mb, ok2 := b.(*core.MessageEvent)
		if !ok1 || !ok2 {
			return false
		}
		return ma.IsGroup() && mb.IsGroup() && ma.GroupID == mb.GroupID
	})
}
