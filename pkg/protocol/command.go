package protocol

// Command identifies a logical operation on the wire. The command code
// is carried in the frame header of a Request and echoed on its
// Response.
type Command uint16

const (
	CmdNone Command = 0x0000

	// Session lifecycle.
	CmdLogin         Command = 0x0010 // Credential submission
	CmdSubmitCaptcha Command = 0x0011 // Challenge answer submission
	CmdLogoff        Command = 0x0012 // Graceful logout
	CmdHeartbeat     Command = 0x0013 // Connection health probe
	CmdSetStatus     Command = 0x0014 // Online status change

	// Roster queries.
	CmdFriendList   Command = 0x0020
	CmdGroupList    Command = 0x0021
	CmdMemberList   Command = 0x0022
	CmdStrangerInfo Command = 0x0023
	CmdGroupInfo    Command = 0x0024
	CmdMemberInfo   Command = 0x0025

	// Messaging.
	CmdSendPrivateMsg Command = 0x0030
	CmdSendGroupMsg   Command = 0x0031
	CmdSendDiscussMsg Command = 0x0032
	CmdDeleteMsg      Command = 0x0033
	CmdGetMsg         Command = 0x0034

	// Group administration.
	CmdGroupNotice       Command = 0x0040
	CmdGroupName         Command = 0x0041
	CmdGroupAnonymous    Command = 0x0042
	CmdGroupWholeBan     Command = 0x0043
	CmdGroupAdmin        Command = 0x0044
	CmdGroupSpecialTitle Command = 0x0045
	CmdGroupCard         Command = 0x0046
	CmdGroupKick         Command = 0x0047
	CmdGroupBan          Command = 0x0048
	CmdGroupLeave        Command = 0x0049
	CmdGroupPoke         Command = 0x004A
	CmdGroupPortrait     Command = 0x004B

	// Relationship management.
	CmdFriendRequest Command = 0x0050 // Approve/deny friend add request
	CmdGroupRequest  Command = 0x0051 // Approve/deny group add/invite request
	CmdAddGroup      Command = 0x0052
	CmdAddFriend     Command = 0x0053
	CmdDeleteFriend  Command = 0x0054
	CmdInviteFriend  Command = 0x0055
	CmdSendLike      Command = 0x0056

	// Profile management.
	CmdSetNickname    Command = 0x0060
	CmdSetGender      Command = 0x0061
	CmdSetBirthday    Command = 0x0062
	CmdSetDescription Command = 0x0063
	CmdSetSignature   Command = 0x0064
	CmdSetPortrait    Command = 0x0065

	// Web credentials and maintenance.
	CmdGetCookies   Command = 0x0070
	CmdGetCSRFToken Command = 0x0071
	CmdCleanCache   Command = 0x0072
)

// String returns the string representation of the command.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "Unknown"
}

var commandNames = map[Command]string{
	CmdNone:              "None",
	CmdLogin:             "Login",
	CmdSubmitCaptcha:     "SubmitCaptcha",
	CmdLogoff:            "Logoff",
	CmdHeartbeat:         "Heartbeat",
	CmdSetStatus:         "SetStatus",
	CmdFriendList:        "FriendList",
	CmdGroupList:         "GroupList",
	CmdMemberList:        "MemberList",
	CmdStrangerInfo:      "StrangerInfo",
	CmdGroupInfo:         "GroupInfo",
	CmdMemberInfo:        "MemberInfo",
	CmdSendPrivateMsg:    "SendPrivateMsg",
	CmdSendGroupMsg:      "SendGroupMsg",
	CmdSendDiscussMsg:    "SendDiscussMsg",
	CmdDeleteMsg:         "DeleteMsg",
	CmdGetMsg:            "GetMsg",
	CmdGroupNotice:       "GroupNotice",
	CmdGroupName:         "GroupName",
	CmdGroupAnonymous:    "GroupAnonymous",
	CmdGroupWholeBan:     "GroupWholeBan",
	CmdGroupAdmin:        "GroupAdmin",
	CmdGroupSpecialTitle: "GroupSpecialTitle",
	CmdGroupCard:         "GroupCard",
	CmdGroupKick:         "GroupKick",
	CmdGroupBan:          "GroupBan",
	CmdGroupLeave:        "GroupLeave",
	CmdGroupPoke:         "GroupPoke",
	CmdGroupPortrait:     "GroupPortrait",
	CmdFriendRequest:     "FriendRequest",
	CmdGroupRequest:      "GroupRequest",
	CmdAddGroup:          "AddGroup",
	CmdAddFriend:         "AddFriend",
	CmdDeleteFriend:      "DeleteFriend",
	CmdInviteFriend:      "InviteFriend",
	CmdSendLike:          "SendLike",
	CmdSetNickname:       "SetNickname",
	CmdSetGender:         "SetGender",
	CmdSetBirthday:       "SetBirthday",
	CmdSetDescription:    "SetDescription",
	CmdSetSignature:      "SetSignature",
	CmdSetPortrait:       "SetPortrait",
	CmdGetCookies:        "GetCookies",
	CmdGetCSRFToken:      "GetCSRFToken",
	CmdCleanCache:        "CleanCache",
}
