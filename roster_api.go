package mirage

import (
	"context"

	"github.com/mirageim/mirage-go/pkg/cache"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/session"
)

// GetFriendList returns a snapshot of the cached friend list. No
// network access; the cache is authoritative after login.
func (c *Client) GetFriendList() *Ret {
	return ok(c.roster.Friends())
}

// GetStrangerList returns a snapshot of the cached strangers.
func (c *Client) GetStrangerList() *Ret {
	return ok(c.roster.Strangers())
}

// GetGroupList returns a snapshot of the cached group list.
func (c *Client) GetGroupList() *Ret {
	return ok(c.roster.Groups())
}

// GetStrangerInfo fetches a user's profile, cache-first unless
// noCache forces a refresh. Concurrent misses of the same id collapse
// onto one network fetch.
func (c *Client) GetStrangerInfo(ctx context.Context, userID int64, noCache bool) *Ret {
	if !c.sess.Ready() {
		if !noCache {
			if s, cached := c.roster.Stranger(userID); cached {
				return ok(s)
			}
		}
		return retFromErr(session.ErrNotReady)
	}

	s, err := c.roster.FetchStranger(userID, noCache, func() (*cache.StrangerInfo, error) {
		var info cache.StrangerInfo
		if err := c.call(ctx, protocol.CmdStrangerInfo, &protocol.RosterQuery{UserID: userID}, &info); err != nil {
			return nil, err
		}
		if info.UserID == 0 {
			return nil, nil
		}
		return &info, nil
	})
	if err != nil {
		return retFromErr(err)
	}
	if s == nil {
		return &Ret{
			Retcode: RetFailed,
			Status:  "failed",
			Error:   &ErrInfo{Code: RetFailed, Message: "no such user"},
		}
	}
	return ok(s)
}

// GetGroupInfo fetches a group's profile, cache-first unless noCache.
func (c *Client) GetGroupInfo(ctx context.Context, groupID int64, noCache bool) *Ret {
	if !c.sess.Ready() {
		if !noCache {
			if g, cached := c.roster.Group(groupID); cached {
				return ok(g)
			}
		}
		return retFromErr(session.ErrNotReady)
	}

	g, err := c.roster.FetchGroup(groupID, noCache, func() (*cache.GroupInfo, error) {
		var info cache.GroupInfo
		if err := c.call(ctx, protocol.CmdGroupInfo, &protocol.RosterQuery{GroupID: groupID}, &info); err != nil {
			return nil, err
		}
		if info.GroupID == 0 {
			return nil, nil
		}
		return &info, nil
	})
	if err != nil {
		return retFromErr(err)
	}
	if g == nil {
		return &Ret{
			Retcode: RetFailed,
			Status:  "failed",
			Error:   &ErrInfo{Code: RetFailed, Message: "no such group"},
		}
	}
	return ok(g)
}

// GetGroupMemberInfo fetches one member's record, cache-first unless
// noCache.
func (c *Client) GetGroupMemberInfo(ctx context.Context, groupID, userID int64, noCache bool) *Ret {
	if !c.sess.Ready() {
		if !noCache {
			if m, cached := c.roster.Member(groupID, userID); cached {
				return ok(m)
			}
		}
		return retFromErr(session.ErrNotReady)
	}

	m, err := c.roster.FetchMember(groupID, userID, noCache, func() (*cache.MemberInfo, error) {
		var info cache.MemberInfo
		q := &protocol.RosterQuery{GroupID: groupID, UserID: userID}
		if err := c.call(ctx, protocol.CmdMemberInfo, q, &info); err != nil {
			return nil, err
		}
		if info.UserID == 0 {
			return nil, nil
		}
		return &info, nil
	})
	if err != nil {
		return retFromErr(err)
	}
	if m == nil {
		return &Ret{
			Retcode: RetFailed,
			Status:  "failed",
			Error:   &ErrInfo{Code: RetFailed, Message: "no such member"},
		}
	}
	return ok(m)
}

// GetGroupMemberList fetches a group's full member map, cache-first
// unless noCache. A loaded-but-empty member map satisfies a cached
// read; an unloaded one triggers the fetch.
func (c *Client) GetGroupMemberList(ctx context.Context, groupID int64, noCache bool) *Ret {
	if !c.sess.Ready() {
		if !noCache {
			if members, loaded := c.roster.Members(groupID); loaded {
				return ok(members)
			}
		}
		return retFromErr(session.ErrNotReady)
	}

	members, err := c.roster.FetchMembers(groupID, noCache, func() ([]cache.MemberInfo, error) {
		var body cache.MemberListBody
		if err := c.call(ctx, protocol.CmdMemberList, &protocol.RosterQuery{GroupID: groupID}, &body); err != nil {
			return nil, err
		}
		return body.Members, nil
	})
	if err != nil {
		return retFromErr(err)
	}
	return ok(members)
}

// AddFriend asks a group member to become a friend; comment is the
// request message shown to them.
func (c *Client) AddFriend(ctx context.Context, groupID, userID int64, comment string) *Ret {
	return c.simpleOp(ctx, protocol.CmdAddFriend, &protocol.RelationRequest{
		GroupID: groupID,
		UserID:  userID,
		Comment: comment,
	})
}

// DeleteFriend removes a friend; block also adds them to the block
// list. The cache entry is evicted on acknowledgement.
func (c *Client) DeleteFriend(ctx context.Context, userID int64, block bool) *Ret {
	r := c.simpleOp(ctx, protocol.CmdDeleteFriend, &protocol.RelationRequest{
		UserID: userID,
		Block:  block,
	})
	if r.OK() {
		c.roster.DeleteFriend(userID)
	}
	return r
}

// AddGroup applies to join a group.
func (c *Client) AddGroup(ctx context.Context, groupID int64, comment string) *Ret {
	return c.simpleOp(ctx, protocol.CmdAddGroup, &protocol.RelationRequest{
		GroupID: groupID,
		Comment: comment,
	})
}

// InviteFriend invites a friend into a group.
func (c *Client) InviteFriend(ctx context.Context, groupID, userID int64) *Ret {
	return c.simpleOp(ctx, protocol.CmdInviteFriend, &protocol.RelationRequest{
		GroupID: groupID,
		UserID:  userID,
	})
}

// SendLike sends up to 20 profile likes to a user.
func (c *Client) SendLike(ctx context.Context, userID int64, times int) *Ret {
	if times < 1 {
		times = 1
	}
	if times > 20 {
		times = 20
	}
	return c.simpleOp(ctx, protocol.CmdSendLike, &protocol.RelationRequest{
		UserID: userID,
		Times:  times,
	})
}

// SetFriendAddRequest answers a pending friend request by its flag.
func (c *Client) SetFriendAddRequest(ctx context.Context, flag string, approve bool, remark string, block bool) *Ret {
	return c.simpleOp(ctx, protocol.CmdFriendRequest, &protocol.RequestVerdict{
		Flag:    flag,
		Approve: approve,
		Remark:  remark,
		Block:   block,
	})
}

// SetGroupAddRequest answers a pending group join or invite request.
func (c *Client) SetGroupAddRequest(ctx context.Context, flag string, approve bool, reason string, block bool) *Ret {
	return c.simpleOp(ctx, protocol.CmdGroupRequest, &protocol.RequestVerdict{
		Flag:    flag,
		Approve: approve,
		Reason:  reason,
		Block:   block,
	})
}
