package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyActionTargetsOrigin(t *testing.T) {
	private := NewPrivateMessage(7, "hi")
	a := NewReplyAction(private, "hello")
	assert.Equal(t, "send_msg", a.Type)
	assert.Equal(t, "private", a.Params["message_type"])
	assert.Equal(t, int64(7), a.Params["user_id"])
	assert.Equal(t, private.ID(), a.TriggerID)

	group := NewGroupMessage(99, 7, "hi")
	a = NewReplyAction(group, "hello")
	assert.Equal(t, "group", a.Params["message_type"])
	assert.Equal(t, int64(99), a.Params["group_id"])
}

func TestWithEchoAssignsFreshID(t *testing.T) {
	a := NewSendAction("x", true, 1, 0)
	assert.Empty(t, a.Echo)
	e1 := a.WithEcho()
	e2 := a.WithEcho()
	assert.NotEmpty(t, e1.Echo)
	assert.NotEqual(t, e1.Echo, e2.Echo)
	assert.Empty(t, a.Echo, "WithEcho copies, the original stays fire-and-forget")
}

func TestActionResultOK(t *testing.T) {
	assert.True(t, (&ActionResult{Status: "ok"}).OK())
	assert.False(t, (&ActionResult{Status: "failed", RetCode: 100}).OK())
}

func TestGroupApproveActionReasonOnlyOnReject(t *testing.T) {
	approved := NewGroupApproveAction("f", "invite", true, "ignored")
	_, hasReason := approved.Params["reason"]
	assert.False(t, hasReason)

	rejected := NewGroupApproveAction("f", "invite", false, "spam")
	assert.Equal(t, "spam", rejected.Params["reason"])
}

func TestEventTypeAccessors(t *testing.T) {
	msg := NewGroupMessage(99, 7, "hi")
	assert.Equal(t, EventMessage, msg.Type())
	assert.True(t, msg.IsGroup())
	assert.False(t, msg.IsPrivate())
	assert.NotEmpty(t, msg.ID())
	assert.False(t, msg.Timestamp().IsZero())
}

func TestUserLevelOrdering(t *testing.T) {
	assert.Less(t, LevelBlack, LevelUser)
	assert.Less(t, LevelUser, LevelWhite)
	assert.Less(t, LevelWhite, LevelSuper)
	assert.Less(t, LevelSuper, LevelOwner)
}
