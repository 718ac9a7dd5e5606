package pipeline

import (
	"slices"

	"github.com/wirebot/wirebot/core"
)

// Checker is the boolean predicate stage: evaluated against the event and
// ambient bot state, a failing check silently discards the handler for this
// event.
type Checker interface {
	Check(e core.Event) bool
}

// CheckerFunc adapts a plain function to the Checker interface.
type CheckerFunc func(e core.Event) bool

// Check implements Checker.
func (f CheckerFunc) Check(e core.Event) bool { return f(e) }

// CheckerGroup combines child checkers under a LogicMode, forming a small
// combinator tree evaluated by one recursive evaluator. AND/OR short-
// circuit left-to-right; NOT uses only the first child.
type CheckerGroup struct {
	Mode     LogicMode
	Checkers []Checker
}

// NewCheckerGroup builds a combinator node over the given children.
func NewCheckerGroup(mode LogicMode, checkers ...Checker) *CheckerGroup {
	return &CheckerGroup{Mode: mode, Checkers: checkers}
}

// Check implements Checker.
func (g *CheckerGroup) Check(e core.Event) bool {
	return evalSeq(g.Mode, len(g.Checkers), func(i int) bool {
		return g.Checkers[i].Check(e)
	})
}

// AccessChecker gates message events on the sender's standing with the bot:
// blacklisted senders never pass, and the sender's level must reach
// Required. A non-empty group whitelist additionally confines group
// messages to the listed groups.
type AccessChecker struct {
	Required    core.UserLevel
	Owner       int64
	SuperUsers  []int64
	WhiteUsers  []int64
	BlackUsers  []int64
	WhiteGroups []int64
}

// Check implements Checker. Non-message events never pass.
func (c *AccessChecker) Check(e core.Event) bool {
	msg, ok := e.(*core.MessageEvent)
	if !ok {
		return false
	}
	if len(c.WhiteGroups) > 0 && msg.IsGroup() && !slices.Contains(c.WhiteGroups, msg.GroupID) {
		return false
	}
	lvl := c.Level(msg.UserID)
	return lvl > 0 && lvl >= c.Required
}

// Level resolves a sender's user level from the configured lists.
func (c *AccessChecker) Level(userID int64) core.UserLevel {
	switch {
	case slices.Contains(c.BlackUsers, userID):
		return core.LevelBlack
	case userID == c.Owner && c.Owner != 0:
		return core.LevelOwner
	case slices.Contains(c.SuperUsers, userID):
		return core.LevelSuper
	case slices.Contains(c.WhiteUsers, userID):
		return core.LevelWhite
	default:
		return core.LevelUser
	}
}

// PrivateMsgChecker passes only private message events.
func PrivateMsgChecker() Checker {
	return CheckerFunc(func(e core.Event) bool {
		msg, ok := e.(*core.MessageEvent)
		return ok && msg.IsPrivate()
	})
}

// GroupMsgChecker passes only group message events.
func GroupMsgChecker() Checker {
	return CheckerFunc(func(e core.Event) bool {
		msg, ok := e.(*core.MessageEvent)
		return ok && msg.IsGroup()
	})
}

// NoticeTypeChecker passes notice events of the given type.
func NoticeTypeChecker(noticeType string) Checker {
	return CheckerFunc(func(e core.Event) bool {
		n, ok := e.(*core.NoticeEvent)
		return ok && n.NoticeType == noticeType
	})
}

// RequestTypeChecker passes request events of the given type.
func RequestTypeChecker(requestType string) Checker {
	return CheckerFunc(func(e core.Event) bool {
		r, ok := e.(*core.RequestEvent)
		return ok && r.RequestType == requestType
	})
}
