package core

// Action is an immutable record of an outbound effect. Handler code creates
// actions and hands them off to the connector; the core never interprets
// their params beyond routing.
type Action struct {
	// Type is the protocol operation name (e.g. "send_msg").
	Type string `json:"action"`
	// Params are the operation arguments as the protocol expects them.
	Params map[string]any `json:"params,omitempty"`
	// Echo correlates the action with its eventual result. Empty means
	// fire-and-forget: the connector will not wait for a response.
	Echo string `json:"echo,omitempty"`
	// TriggerID is the ID of the event this action responds to, carried
	// for tracing only.
	TriggerID string `json:"-"`
}

// WithEcho returns a copy of the action tagged with a fresh correlation ID,
// asking the connector to wait for and return the protocol response.
func (a Action) WithEcho() Action {
	a.Echo = NewID()
	return a
}

// ActionResult is the protocol's response to an echo-tagged action.
type ActionResult struct {
	Status  string         `json:"status"`
	RetCode int            `json:"retcode"`
	Data    map[string]any `json:"data,omitempty"`
	Echo    string         `json:"echo,omitempty"`
}

// OK reports whether the protocol accepted the action.
func (r *ActionResult) OK() bool { return r.RetCode == 0 }

// NewSendAction builds a send-message action targeting either a user
// (private) or a group chat.
func NewSendAction(text string, private bool, userID, groupID int64) Action {
	params := map[string]any{"message": text}
	if private {
		params["message_type"] = "private"
		params["user_id"] = userID
	} else {
		params["message_type"] = "group"
		params["group_id"] = groupID
	}
	return Action{Type: "send_msg", Params: params}
}

// NewReplyAction builds a send-message action addressed back at the origin
// of the given message event.
func NewReplyAction(e *MessageEvent, text string) Action {
	a := NewSendAction(text, e.IsPrivate(), e.UserID, e.GroupID)
	a.TriggerID = e.ID()
	return a
}

// NewRecallAction builds a message-recall action.
func NewRecallAction(messageID int64) Action {
	return Action{Type: "delete_msg", Params: map[string]any{"message_id": messageID}}
}

// NewGroupBanAction builds a group mute action. A zero duration lifts the
// mute.
func NewGroupBanAction(groupID, userID int64, durationSec int64) Action {
	return Action{Type: "set_group_ban", Params: map[string]any{
		"group_id": groupID,
		"user_id":  userID,
		"duration": durationSec,
	}}
}

// NewGroupKickAction builds a group kick action.
func NewGroupKickAction(groupID, userID int64, rejectAddRequest bool) Action {
	return Action{Type: "set_group_kick", Params: map[string]any{
		"group_id":           groupID,
		"user_id":            userID,
		"reject_add_request": rejectAddRequest,
	}}
}

// NewFriendApproveAction answers a friend-add request.
func NewFriendApproveAction(flag string, approve bool) Action {
	return Action{Type: "set_friend_add_request", Params: map[string]any{
		"flag":    flag,
		"approve": approve,
	}}
}

// NewGroupApproveAction answers a group join/invite request. The reason is
// only delivered on rejection.
func NewGroupApproveAction(flag, subType string, approve bool, reason string) Action {
	params := map[string]any{
		"flag":     flag,
		"sub_type": subType,
		"approve":  approve,
	}
	if !approve && reason != "" {
		params["reason"] = reason
	}
	return Action{Type: "set_group_add_request", Params: params}
}
