// Package cache holds the client's authoritative view of the social
// graph: friends, strangers, groups, and per-group members. The maps
// are mutated by the session's sequential inbound-processing path and
// by explicit refresh operations; readers in arbitrary goroutines see
// either the pre- or post-mutation snapshot, never a torn state.
package cache

// StrangerInfo is the profile of a user outside the friend list.
type StrangerInfo struct {
	UserID      int64  `cbor:"user_id" json:"user_id"`
	Nickname    string `cbor:"nickname" json:"nickname"`
	Sex         string `cbor:"sex,omitempty" json:"sex,omitempty"`
	Age         int    `cbor:"age,omitempty" json:"age,omitempty"`
	Area        string `cbor:"area,omitempty" json:"area,omitempty"`
	Signature   string `cbor:"signature,omitempty" json:"signature,omitempty"`
	Description string `cbor:"description,omitempty" json:"description,omitempty"`
	GroupID     int64  `cbor:"group_id,omitempty" json:"group_id,omitempty"`
}

// FriendInfo is a stranger profile plus the local remark.
type FriendInfo struct {
	StrangerInfo
	Remark string `cbor:"remark,omitempty" json:"remark,omitempty"`
}

// GroupInfo is the profile and counters of a joined group.
type GroupInfo struct {
	GroupID         int64  `cbor:"group_id" json:"group_id"`
	GroupName       string `cbor:"group_name" json:"group_name"`
	MemberCount     int    `cbor:"member_count,omitempty" json:"member_count,omitempty"`
	MaxMemberCount  int    `cbor:"max_member_count,omitempty" json:"max_member_count,omitempty"`
	OwnerID         int64  `cbor:"owner_id,omitempty" json:"owner_id,omitempty"`
	LastJoinTime    int64  `cbor:"last_join_time,omitempty" json:"last_join_time,omitempty"`
	LastSentTime    int64  `cbor:"last_sent_time,omitempty" json:"last_sent_time,omitempty"`
	ShutupTimeWhole int64  `cbor:"shutup_time_whole,omitempty" json:"shutup_time_whole,omitempty"`
	ShutupTimeMe    int64  `cbor:"shutup_time_me,omitempty" json:"shutup_time_me,omitempty"`
	CreateTime      int64  `cbor:"create_time,omitempty" json:"create_time,omitempty"`
	Grade           int    `cbor:"grade,omitempty" json:"grade,omitempty"`
	MaxAdminCount   int    `cbor:"max_admin_count,omitempty" json:"max_admin_count,omitempty"`
	ActiveCount     int    `cbor:"active_member_count,omitempty" json:"active_member_count,omitempty"`
	UpdateTime      int64  `cbor:"update_time,omitempty" json:"update_time,omitempty"`
}

// MemberInfo describes one user's membership in one group.
type MemberInfo struct {
	GroupID         int64  `cbor:"group_id" json:"group_id"`
	UserID          int64  `cbor:"user_id" json:"user_id"`
	Nickname        string `cbor:"nickname" json:"nickname"`
	Card            string `cbor:"card,omitempty" json:"card,omitempty"`
	Sex             string `cbor:"sex,omitempty" json:"sex,omitempty"`
	Age             int    `cbor:"age,omitempty" json:"age,omitempty"`
	Area            string `cbor:"area,omitempty" json:"area,omitempty"`
	JoinTime        int64  `cbor:"join_time,omitempty" json:"join_time,omitempty"`
	LastSentTime    int64  `cbor:"last_sent_time,omitempty" json:"last_sent_time,omitempty"`
	Level           int    `cbor:"level,omitempty" json:"level,omitempty"`
	Rank            string `cbor:"rank,omitempty" json:"rank,omitempty"`
	Role            string `cbor:"role,omitempty" json:"role,omitempty"` // "owner", "admin", "member"
	Unfriendly      bool   `cbor:"unfriendly,omitempty" json:"unfriendly,omitempty"`
	Title           string `cbor:"title,omitempty" json:"title,omitempty"`
	TitleExpireTime int64  `cbor:"title_expire_time,omitempty" json:"title_expire_time,omitempty"`
	CardChangeable  bool   `cbor:"card_changeable,omitempty" json:"card_changeable,omitempty"`
	ShutupTime      int64  `cbor:"shutup_time,omitempty" json:"shutup_time,omitempty"`
	UpdateTime      int64  `cbor:"update_time,omitempty" json:"update_time,omitempty"`
}

// Wire list bodies for the roster commands. The protocol layer is
// agnostic to body shape; these are the shapes the Mirage gateway
// sends.

// FriendListBody answers CmdFriendList.
type FriendListBody struct {
	Friends []FriendInfo `cbor:"friends"`
}

// GroupListBody answers CmdGroupList.
type GroupListBody struct {
	Groups []GroupInfo `cbor:"groups"`
}

// MemberListBody answers CmdMemberList.
type MemberListBody struct {
	GroupID int64        `cbor:"group_id"`
	Members []MemberInfo `cbor:"members"`
}
