package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType tags the four categories of inbound events delivered by a
// connector. The dispatcher uses it to select candidate handlers.
type EventType string

const (
	// EventMessage is a chat message (private or group).
	EventMessage EventType = "message"
	// EventRequest is an approval request (friend add, group join/invite).
	EventRequest EventType = "request"
	// EventNotice is a protocol notification (member joined, message
	// recalled, poke, ...).
	EventNotice EventType = "notice"
	// EventMeta is connector housekeeping (lifecycle, heartbeat).
	EventMeta EventType = "meta"
)

// Event is an immutable record of something that happened on the protocol
// side. Events are produced exclusively by a Connector and must be treated
// as read-only by everything downstream.
type Event interface {
	// ID returns a stable identifier for this occurrence. Connectors
	// assign one when the protocol does not provide its own.
	ID() string
	// Type returns the event category.
	Type() EventType
	// Timestamp returns when the event occurred (UTC).
	Timestamp() time.Time
}

// NewID generates a unique identifier usable for events, sessions and
// action correlation.
func NewID() string { return uuid.NewString() }

// Meta carries the fields every event shares. Concrete event types embed it.
type Meta struct {
	EventID string    `json:"id"`
	Time    time.Time `json:"time"`
	// SelfID is the account the connector is logged in as.
	SelfID int64 `json:"self_id"`
	// Raw is the payload exactly as the connector delivered it, for
	// handlers that need protocol fields the typed view does not surface.
	Raw []byte `json:"-"`
}

// ID returns the stable event identifier.
func (m Meta) ID() string { return m.EventID }

// Timestamp returns the event occurrence time.
func (m Meta) Timestamp() time.Time { return m.Time }

// NewMeta builds event metadata with a fresh ID. A zero t means "now".
func NewMeta(t time.Time) Meta {
	if t.IsZero() {
		t = time.Now()
	}
	return Meta{EventID: NewID(), Time: t.UTC()}
}

// Sender describes the author of a message event.
type Sender struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	// Role is the sender's standing in a group chat ("owner", "admin",
	// "member"); empty for private messages.
	Role string `json:"role,omitempty"`
}

// MessageEvent is an inbound chat message.
type MessageEvent struct {
	Meta
	MessageID   int64  `json:"message_id"`
	MessageType string `json:"message_type"` // "private" or "group"
	SubType     string `json:"sub_type,omitempty"`
	UserID      int64  `json:"user_id"`
	GroupID     int64  `json:"group_id,omitempty"`
	Sender      Sender `json:"sender"`
	// Text is the plain-text view of the message, the input to matchers
	// and command parsers.
	Text string `json:"text"`
}

// Type implements Event.
func (e *MessageEvent) Type() EventType { return EventMessage }

// IsPrivate reports whether the message arrived in a private chat.
func (e *MessageEvent) IsPrivate() bool { return e.MessageType == "private" }

// IsGroup reports whether the message arrived in a group chat.
func (e *MessageEvent) IsGroup() bool { return e.MessageType == "group" }

// RequestEvent is an inbound approval request.
type RequestEvent struct {
	Meta
	RequestType string `json:"request_type"` // "friend" or "group"
	SubType     string `json:"sub_type,omitempty"`
	UserID      int64  `json:"user_id"`
	GroupID     int64  `json:"group_id,omitempty"`
	// Flag identifies the request when approving or rejecting it.
	Flag    string `json:"flag"`
	Comment string `json:"comment,omitempty"`
}

// Type implements Event.
func (e *RequestEvent) Type() EventType { return EventRequest }

// IsFriend reports whether this is a friend-add request.
func (e *RequestEvent) IsFriend() bool { return e.RequestType == "friend" }

// IsGroup reports whether this is a group join/invite request.
func (e *RequestEvent) IsGroup() bool { return e.RequestType == "group" }

// NoticeEvent is an inbound protocol notification.
type NoticeEvent struct {
	Meta
	NoticeType string `json:"notice_type"`
	SubType    string `json:"sub_type,omitempty"`
	UserID     int64  `json:"user_id,omitempty"`
	GroupID    int64  `json:"group_id,omitempty"`
	OperatorID int64  `json:"operator_id,omitempty"`
	// TargetID is the subject of the notice when it differs from UserID
	// (e.g. the poked member).
	TargetID int64 `json:"target_id,omitempty"`
}

// Type implements Event.
func (e *NoticeEvent) Type() EventType { return EventNotice }

// MetaEvent is connector housekeeping: lifecycle announcements and
// heartbeats. Most bots ignore these; they are dispatchable so monitoring
// handlers can observe connector health.
type MetaEvent struct {
	Meta
	MetaType string `json:"meta_event_type"` // "lifecycle" or "heartbeat"
	SubType  string `json:"sub_type,omitempty"`
	// Interval is the heartbeat period in milliseconds, when applicable.
	Interval int64 `json:"interval,omitempty"`
}

// Type implements Event.
func (e *MetaEvent) Type() EventType { return EventMeta }

// NewPrivateMessage builds a private chat message event. Primarily useful
// in tests and examples; connectors construct events from wire payloads.
func NewPrivateMessage(userID int64, text string) *MessageEvent {
	return &MessageEvent{
		Meta:        NewMeta(time.Time{}),
		MessageType: "private",
		UserID:      userID,
		Sender:      Sender{UserID: userID},
		Text:        text,
	}
}

// NewGroupMessage builds a group chat message event.
func NewGroupMessage(groupID, userID int64, text string) *MessageEvent {
	return &MessageEvent{
		Meta:        NewMeta(time.Time{}),
		MessageType: "group",
		UserID:      userID,
		GroupID:     groupID,
		Sender:      Sender{UserID: userID},
		Text:        text,
	}
}
