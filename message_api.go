package mirage

import (
	"context"
	"fmt"

	"github.com/mirageim/mirage-go/pkg/protocol"
)

// maxShardBytes is the per-shard payload size of the degraded send
// fallback. Shards stay comfortably under the gateway's single-frame
// message limit.
const maxShardBytes = 2048

// SendPrivateMsg sends a message to a friend or recent contact. The
// envelope data is the server-assigned message identifier.
func (c *Client) SendPrivateMsg(ctx context.Context, userID int64, message string) *Ret {
	return c.sendMsg(ctx, protocol.CmdSendPrivateMsg, userID, protocol.MsgPrivate, message)
}

// SendGroupMsg sends a message to a group.
func (c *Client) SendGroupMsg(ctx context.Context, groupID int64, message string) *Ret {
	return c.sendMsg(ctx, protocol.CmdSendGroupMsg, groupID, protocol.MsgGroup, message)
}

// SendDiscussMsg sends a message to a discuss conversation.
func (c *Client) SendDiscussMsg(ctx context.Context, discussID int64, message string) *Ret {
	return c.sendMsg(ctx, protocol.CmdSendDiscussMsg, discussID, protocol.MsgDiscuss, message)
}

func (c *Client) sendMsg(ctx context.Context, cmd protocol.Command, targetID int64, kind protocol.MsgKind, message string) *Ret {
	res, err := c.callRes(ctx, cmd, &protocol.SendMsgRequest{
		TargetID: targetID,
		Kind:     kind,
		Message:  message,
	})
	if err != nil {
		return retFromErr(err)
	}

	switch res.Code {
	case protocol.WireCodeOK, protocol.WireCodeAsync:
		return c.sentMsgRet(res)

	case protocol.WireCodeThrottled, protocol.WireCodeMsgTooLong:
		if !c.cfg.Resend {
			return retFromErr(wireErr(res))
		}
		c.logger.Info("message rejected, resending sharded",
			"command", cmd.String(), "code", res.Code, "target", targetID)
		return c.sendSharded(ctx, cmd, targetID, kind, message)

	default:
		return retFromErr(wireErr(res))
	}
}

// sendSharded re-submits a rejected message split across numbered
// shards; the server reassembles by shard index. The last shard's
// acknowledgement carries the message identifier.
func (c *Client) sendSharded(ctx context.Context, cmd protocol.Command, targetID int64, kind protocol.MsgKind, message string) *Ret {
	shards := splitShards(message, maxShardBytes)
	var last *protocol.WireResult
	for i, shard := range shards {
		res, err := c.callRes(ctx, cmd, &protocol.SendMsgRequest{
			TargetID:   targetID,
			Kind:       kind,
			Message:    shard,
			Shard:      i,
			ShardCount: len(shards),
		})
		if err != nil {
			return retFromErr(err)
		}
		if err := wireErr(res); err != nil {
			return retFromErr(fmt.Errorf("shard %d/%d: %w", i+1, len(shards), err))
		}
		last = res
	}
	return c.sentMsgRet(last)
}

func (c *Client) sentMsgRet(res *protocol.WireResult) *Ret {
	var body protocol.SendMsgResponse
	if len(res.Body) > 0 {
		if err := protocol.Unmarshal(res.Body, &body); err != nil {
			return retFromErr(fmt.Errorf("mirage: decode send response: %w", err))
		}
	}
	c.sess.NoteSentMsg()
	if res.Code == protocol.WireCodeAsync {
		return async(&body)
	}
	return ok(&body)
}

// splitShards cuts message into chunks of at most size bytes, never
// splitting inside a UTF-8 rune.
func splitShards(message string, size int) []string {
	if len(message) <= size {
		return []string{message}
	}
	var shards []string
	var cur []byte
	for _, r := range message {
		n := len(string(r))
		if len(cur)+n > size {
			shards = append(shards, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, string(r)...)
	}
	if len(cur) > 0 {
		shards = append(shards, string(cur))
	}
	return shards
}

// DeleteMsg recalls a previously sent message by its identifier.
func (c *Client) DeleteMsg(ctx context.Context, messageID string) *Ret {
	return c.simpleOp(ctx, protocol.CmdDeleteMsg, &protocol.MsgRefRequest{MessageID: messageID})
}

// GetMsg fetches a stored message by its identifier.
func (c *Client) GetMsg(ctx context.Context, messageID string) *Ret {
	var msg protocol.StoredMsg
	if err := c.call(ctx, protocol.CmdGetMsg, &protocol.MsgRefRequest{MessageID: messageID}, &msg); err != nil {
		return retFromErr(err)
	}
	return ok(&msg)
}
