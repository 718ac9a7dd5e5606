package onebot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wirebot/wirebot/core"
)

// frame is the superset of fields a OneBot endpoint sends. Events carry
// post_type; action responses carry status and echo.
type frame struct {
	PostType string `json:"post_type"`

	Time   int64 `json:"time"`
	SelfID int64 `json:"self_id"`

	MessageID   json.Number     `json:"message_id"`
	MessageType string          `json:"message_type"`
	SubType     string          `json:"sub_type"`
	UserID      int64           `json:"user_id"`
	GroupID     int64           `json:"group_id"`
	Sender      core.Sender     `json:"sender"`
	RawMessage  string          `json:"raw_message"`
	Message     json.RawMessage `json:"message"`

	RequestType string `json:"request_type"`
	Flag        string `json:"flag"`
	Comment     string `json:"comment"`

	NoticeType string `json:"notice_type"`
	OperatorID int64  `json:"operator_id"`
	TargetID   int64  `json:"target_id"`

	MetaEventType string `json:"meta_event_type"`
	Interval      int64  `json:"interval"`

	Status  string          `json:"status"`
	RetCode int             `json:"retcode"`
	Data    json.RawMessage `json:"data"`
	Echo    string          `json:"echo"`
}

func (f *frame) isResponse() bool { return f.PostType == "" && (f.Echo != "" || f.Status != "") }

// decodeEvent turns an event frame into its typed representation. Unknown
// post_type values yield an error so the read loop can log and skip them.
func decodeEvent(f *frame, raw []byte) (core.Event, error) {
	meta := core.Meta{
		EventID: core.NewID(),
		Time:    time.Unix(f.Time, 0).UTC(),
		SelfID:  f.SelfID,
		Raw:     raw,
	}
	if f.Time == 0 {
		meta.Time = time.Now().UTC()
	}

	switch f.PostType {
	case "message":
		msgID, _ := f.MessageID.Int64()
		text := f.RawMessage
		if text == "" {
			text = messageText(f.Message)
		}
		return &core.MessageEvent{
			Meta:        meta,
			MessageID:   msgID,
			MessageType: f.MessageType,
			SubType:     f.SubType,
			UserID:      f.UserID,
			GroupID:     f.GroupID,
			Sender:      f.Sender,
			Text:        text,
		}, nil
	case "request":
		return &core.RequestEvent{
			Meta:        meta,
			RequestType: f.RequestType,
			SubType:     f.SubType,
			UserID:      f.UserID,
			GroupID:     f.GroupID,
			Flag:        f.Flag,
			Comment:     f.Comment,
		}, nil
	case "notice":
		return &core.NoticeEvent{
			Meta:       meta,
			NoticeType: f.NoticeType,
			SubType:    f.SubType,
			UserID:     f.UserID,
			GroupID:    f.GroupID,
			OperatorID: f.OperatorID,
			TargetID:   f.TargetID,
		}, nil
	case "meta_event":
		return &core.MetaEvent{
			Meta:     meta,
			MetaType: f.MetaEventType,
			SubType:  f.SubType,
			Interval: f.Interval,
		}, nil
	default:
		return nil, fmt.Errorf("unknown post_type %q", f.PostType)
	}
}

// messageText extracts plain text from a message field that is either a
// CQ string or a segment array.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var segs []struct {
		Type string `json:"type"`
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &segs); err != nil {
		return ""
	}
	var out string
	for _, seg := range segs {
		if seg.Type == "text" {
			out += seg.Data.Text
		}
	}
	return out
}

// decodeResult turns a response frame into an ActionResult.
func decodeResult(f *frame) *core.ActionResult {
	res := &core.ActionResult{
		Status:  f.Status,
		RetCode: f.RetCode,
		Echo:    f.Echo,
	}
	if len(f.Data) > 0 {
		var data map[string]any
		if err := json.Unmarshal(f.Data, &data); err == nil {
			res.Data = data
		}
	}
	return res
}

// request is the outbound action envelope.
type request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
	Echo   string         `json:"echo,omitempty"`
}
