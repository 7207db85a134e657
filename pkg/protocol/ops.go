package protocol

// Request bodies for operation commands. All are small CBOR maps; zero
// fields are omitted on the wire.

// MsgKind discriminates the three conversation types.
type MsgKind uint8

const (
	MsgPrivate MsgKind = 0x01
	MsgGroup   MsgKind = 0x02
	MsgDiscuss MsgKind = 0x03
)

// SendMsgRequest is the body of the three send-message commands.
// Shard and ShardCount are zero for an unsharded send; the degraded
// fallback re-submits the message split across numbered shards with
// FlagFinal on the last frame.
type SendMsgRequest struct {
	TargetID   int64   `cbor:"target_id"`
	Kind       MsgKind `cbor:"kind"`
	Message    string  `cbor:"message"`
	AutoEscape bool    `cbor:"auto_escape,omitempty"`
	Shard      int     `cbor:"shard,omitempty"`
	ShardCount int     `cbor:"shard_count,omitempty"`
}

// SendMsgResponse carries the server-assigned message identifier.
type SendMsgResponse struct {
	MessageID string `cbor:"message_id"`
}

// MsgRefRequest addresses a message by identifier (delete, fetch).
type MsgRefRequest struct {
	MessageID string `cbor:"message_id"`
}

// StoredMsg is the body answering CmdGetMsg.
type StoredMsg struct {
	MessageID  string `cbor:"message_id"`
	SenderID   int64  `cbor:"sender_id"`
	GroupID    int64  `cbor:"group_id,omitempty"`
	Time       int64  `cbor:"time"`
	Message    string `cbor:"message"`
	RawMessage string `cbor:"raw_message,omitempty"`
}

// StatusRequest is the body of CmdSetStatus.
type StatusRequest struct {
	Status int `cbor:"status"`
}

// RosterQuery addresses roster fetches: user, group, or group+user.
type RosterQuery struct {
	UserID  int64 `cbor:"user_id,omitempty"`
	GroupID int64 `cbor:"group_id,omitempty"`
}

// GroupSetRequest covers the boolean and string group administration
// commands; unused fields are omitted.
type GroupSetRequest struct {
	GroupID  int64  `cbor:"group_id"`
	UserID   int64  `cbor:"user_id,omitempty"`
	Enable   bool   `cbor:"enable,omitempty"`
	Value    string `cbor:"value,omitempty"`
	Duration int64  `cbor:"duration,omitempty"` // seconds, bans and titles
	Dismiss  bool   `cbor:"dismiss,omitempty"`  // leave-and-dismiss
	Reject   bool   `cbor:"reject,omitempty"`   // kick: reject re-add
	Blob     []byte `cbor:"blob,omitempty"`     // portrait image bytes
}

// RelationRequest covers friend/group relationship commands.
type RelationRequest struct {
	UserID  int64  `cbor:"user_id,omitempty"`
	GroupID int64  `cbor:"group_id,omitempty"`
	Comment string `cbor:"comment,omitempty"`
	Block   bool   `cbor:"block,omitempty"`
	Times   int    `cbor:"times,omitempty"` // SendLike repetitions
}

// RequestVerdict answers a pending friend/group add request.
type RequestVerdict struct {
	Flag    string `cbor:"flag"`
	Approve bool   `cbor:"approve"`
	Remark  string `cbor:"remark,omitempty"` // friend approval remark
	Reason  string `cbor:"reason,omitempty"` // group denial reason
	Block   bool   `cbor:"block,omitempty"`
}

// ProfileSetRequest covers the profile mutation commands.
type ProfileSetRequest struct {
	Text   string `cbor:"text,omitempty"`
	Number int64  `cbor:"number,omitempty"`
	Blob   []byte `cbor:"blob,omitempty"` // portrait image bytes
}

// WebCredRequest is the body of CmdGetCookies.
type WebCredRequest struct {
	Domain string `cbor:"domain,omitempty"`
}

// WebCredResponse answers the web-credential commands.
type WebCredResponse struct {
	Cookies string `cbor:"cookies,omitempty"`
	Token   string `cbor:"token,omitempty"`
}

// CleanCacheRequest is the body of CmdCleanCache.
type CleanCacheRequest struct {
	Kind string `cbor:"kind,omitempty"` // "image", "record", or empty for all
}
