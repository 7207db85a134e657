// Package event classifies server pushes and republishes them to
// registered observers. Events are named by dot-paths rooted at one
// of four categories; observers may subscribe to a category, a
// prefix, or an exact name, with persistent or fire-once semantics.
package event

import (
	"strings"

	"github.com/mirageim/mirage-go/pkg/cache"
)

// Post types: the primary event categories.
const (
	PostSystem  = "system"
	PostRequest = "request"
	PostMessage = "message"
	PostNotice  = "notice"
)

// Anonymous identifies an anonymous group message sender.
type Anonymous struct {
	ID   int64  `cbor:"id" json:"id"`
	Name string `cbor:"name" json:"name"`
	Flag string `cbor:"flag" json:"flag"`
}

// Event is the envelope handed to observers. It is a discriminated
// record: PostType selects the category, DetailType and SubType
// refine it, and the variant fields are populated per event name.
// Events are transient; the dispatcher does not retain them after
// delivery.
type Event struct {
	SelfID     int64  `cbor:"self_id" json:"self_id"`
	Time       int64  `cbor:"time" json:"time"`
	PostType   string `cbor:"post_type" json:"post_type"`
	DetailType string `cbor:"detail_type,omitempty" json:"detail_type,omitempty"`
	SubType    string `cbor:"sub_type,omitempty" json:"sub_type,omitempty"`

	// Message events.
	Message    string `cbor:"message,omitempty" json:"message,omitempty"`
	RawMessage string `cbor:"raw_message,omitempty" json:"raw_message,omitempty"`
	MessageID  string `cbor:"message_id,omitempty" json:"message_id,omitempty"`
	Font       string `cbor:"font,omitempty" json:"font,omitempty"`
	AutoReply  bool   `cbor:"auto_reply,omitempty" json:"auto_reply,omitempty"`

	// Participants.
	UserID    int64             `cbor:"user_id,omitempty" json:"user_id,omitempty"`
	Nickname  string            `cbor:"nickname,omitempty" json:"nickname,omitempty"`
	GroupID   int64             `cbor:"group_id,omitempty" json:"group_id,omitempty"`
	GroupName string            `cbor:"group_name,omitempty" json:"group_name,omitempty"`
	DiscussID int64             `cbor:"discuss_id,omitempty" json:"discuss_id,omitempty"`
	Sender    *cache.MemberInfo `cbor:"sender,omitempty" json:"sender,omitempty"`
	Member    *cache.MemberInfo `cbor:"member,omitempty" json:"member,omitempty"`
	Anonymous *Anonymous        `cbor:"anonymous,omitempty" json:"anonymous,omitempty"`

	// Request events.
	Flag    string `cbor:"flag,omitempty" json:"flag,omitempty"`
	Comment string `cbor:"comment,omitempty" json:"comment,omitempty"`
	Role    string `cbor:"role,omitempty" json:"role,omitempty"`

	// Notice events.
	OperatorID int64  `cbor:"operator_id,omitempty" json:"operator_id,omitempty"`
	InviterID  int64  `cbor:"inviter_id,omitempty" json:"inviter_id,omitempty"`
	Duration   int64  `cbor:"duration,omitempty" json:"duration,omitempty"`
	Set        bool   `cbor:"set,omitempty" json:"set,omitempty"`
	Dismiss    bool   `cbor:"dismiss,omitempty" json:"dismiss,omitempty"`
	Title      string `cbor:"title,omitempty" json:"title,omitempty"`
	Content    string `cbor:"content,omitempty" json:"content,omitempty"`
	Action     string `cbor:"action,omitempty" json:"action,omitempty"`
	Suffix     string `cbor:"suffix,omitempty" json:"suffix,omitempty"`

	// System events.
	Image   []byte `cbor:"image,omitempty" json:"image,omitempty"`
	URL     string `cbor:"url,omitempty" json:"url,omitempty"`
	ErrCode int    `cbor:"err_code,omitempty" json:"err_code,omitempty"`
	ErrMsg  string `cbor:"err_msg,omitempty" json:"err_msg,omitempty"`
}

// Name returns the full dot-path event name, e.g.
// "notice.group.decrease".
func (e *Event) Name() string {
	var b strings.Builder
	b.WriteString(e.PostType)
	if e.DetailType != "" {
		b.WriteByte('.')
		b.WriteString(e.DetailType)
	}
	if e.SubType != "" {
		b.WriteByte('.')
		b.WriteString(e.SubType)
	}
	return b.String()
}
