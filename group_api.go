package mirage

import (
	"context"

	"github.com/mirageim/mirage-go/pkg/protocol"
)

// SendGroupNotice posts a group announcement.
func (c *Client) SendGroupNotice(ctx context.Context, groupID int64, content string) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupNotice, &protocol.GroupSetRequest{
		GroupID: groupID,
		Value:   content,
	})
}

// SetGroupName renames a group. The cached record is updated on
// acknowledgement.
func (c *Client) SetGroupName(ctx context.Context, groupID int64, name string) *Ret {
	r := c.simpleOp(ctx, protocol.CmdGroupName, &protocol.GroupSetRequest{
		GroupID: groupID,
		Value:   name,
	})
	if r.OK() {
		if g, cached := c.roster.Group(groupID); cached {
			updated := *g
			updated.GroupName = name
			c.roster.SetGroup(&updated)
		}
	}
	return r
}

// SetGroupAnonymous toggles anonymous chatting in a group.
func (c *Client) SetGroupAnonymous(ctx context.Context, groupID int64, enable bool) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupAnonymous, &protocol.GroupSetRequest{
		GroupID: groupID,
		Enable:  enable,
	})
}

// SetGroupWholeBan mutes or unmutes everyone in a group.
func (c *Client) SetGroupWholeBan(ctx context.Context, groupID int64, enable bool) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupWholeBan, &protocol.GroupSetRequest{
		GroupID: groupID,
		Enable:  enable,
	})
}

// SetGroupAdmin grants or revokes a member's administrator role.
func (c *Client) SetGroupAdmin(ctx context.Context, groupID, userID int64, enable bool) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupAdmin, &protocol.GroupSetRequest{
		GroupID: groupID,
		UserID:  userID,
		Enable:  enable,
	})
}

// SetGroupSpecialTitle sets a member's special title; duration is the
// validity in seconds, -1 for permanent.
func (c *Client) SetGroupSpecialTitle(ctx context.Context, groupID, userID int64, title string, duration int64) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupSpecialTitle, &protocol.GroupSetRequest{
		GroupID:  groupID,
		UserID:   userID,
		Value:    title,
		Duration: duration,
	})
}

// SetGroupCard sets a member's group card (display name within the
// group). The cached member record is updated on acknowledgement.
func (c *Client) SetGroupCard(ctx context.Context, groupID, userID int64, card string) *Ret {
	r := c.simpleOp(ctx, protocol.CmdGroupCard, &protocol.GroupSetRequest{
		GroupID: groupID,
		UserID:  userID,
		Value:   card,
	})
	if r.OK() {
		if m, cached := c.roster.Member(groupID, userID); cached {
			updated := *m
			updated.Card = card
			c.roster.SetMember(&updated)
		}
	}
	return r
}

// SetGroupKick removes a member from a group; reject also blocks
// re-joining. The cached member record is evicted on acknowledgement.
func (c *Client) SetGroupKick(ctx context.Context, groupID, userID int64, reject bool) *Ret {
	r := c.simpleOp(ctx, protocol.CmdGroupKick, &protocol.GroupSetRequest{
		GroupID: groupID,
		UserID:  userID,
		Reject:  reject,
	})
	if r.OK() {
		c.roster.DeleteMember(groupID, userID)
	}
	return r
}

// SetGroupBan mutes a member for duration seconds; zero unmutes.
func (c *Client) SetGroupBan(ctx context.Context, groupID, userID int64, duration int64) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupBan, &protocol.GroupSetRequest{
		GroupID:  groupID,
		UserID:   userID,
		Duration: duration,
	})
}

// SetGroupLeave leaves a group; dismiss dissolves it instead (owner
// only). The cached group and its member map are evicted on
// acknowledgement.
func (c *Client) SetGroupLeave(ctx context.Context, groupID int64, dismiss bool) *Ret {
	r := c.simpleOp(ctx, protocol.CmdGroupLeave, &protocol.GroupSetRequest{
		GroupID: groupID,
		Dismiss: dismiss,
	})
	if r.OK() {
		c.roster.DeleteGroup(groupID)
	}
	return r
}

// SendGroupPoke pokes a group member.
func (c *Client) SendGroupPoke(ctx context.Context, groupID, userID int64) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupPoke, &protocol.GroupSetRequest{
		GroupID: groupID,
		UserID:  userID,
	})
}

// SetGroupPortrait uploads a group avatar image.
func (c *Client) SetGroupPortrait(ctx context.Context, groupID int64, image []byte) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupPortrait, &protocol.GroupSetRequest{
		GroupID: groupID,
		Blob:    image,
	})
}
