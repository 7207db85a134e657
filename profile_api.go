package mirage

import (
	"context"

	"github.com/mirageim/mirage-go/pkg/protocol"
)

// SetOnlineStatus changes the account's online-status code.
func (c *Client) SetOnlineStatus(ctx context.Context, status int) *Ret {
	r := c.simpleOp(ctx, protocol.CmdSetStatus, &protocol.StatusRequest{Status: status})
	if r.OK() {
		c.sess.MutateIdentity(func(id *protocol.AccountIdentity) {
			id.Status = status
		})
	}
	return r
}

// SetNickname changes the account's display nickname.
func (c *Client) SetNickname(ctx context.Context, nickname string) *Ret {
	r := c.simpleOp(ctx, protocol.CmdSetNickname, &protocol.ProfileSetRequest{Text: nickname})
	if r.OK() {
		c.sess.MutateIdentity(func(id *protocol.AccountIdentity) {
			id.Nickname = nickname
		})
	}
	return r
}

// SetGender sets the profile gender: 0 unknown, 1 male, 2 female.
func (c *Client) SetGender(ctx context.Context, gender int) *Ret {
	return c.simpleOp(ctx, protocol.CmdSetGender, &protocol.ProfileSetRequest{Number: int64(gender)})
}

// SetBirthday sets the profile birthday, formatted "20020202".
func (c *Client) SetBirthday(ctx context.Context, birthday string) *Ret {
	return c.simpleOp(ctx, protocol.CmdSetBirthday, &protocol.ProfileSetRequest{Text: birthday})
}

// SetDescription sets the profile description.
func (c *Client) SetDescription(ctx context.Context, description string) *Ret {
	return c.simpleOp(ctx, protocol.CmdSetDescription, &protocol.ProfileSetRequest{Text: description})
}

// SetSignature sets the profile signature.
func (c *Client) SetSignature(ctx context.Context, signature string) *Ret {
	return c.simpleOp(ctx, protocol.CmdSetSignature, &protocol.ProfileSetRequest{Text: signature})
}

// SetPortrait uploads an account avatar image.
func (c *Client) SetPortrait(ctx context.Context, image []byte) *Ret {
	return c.simpleOp(ctx, protocol.CmdSetPortrait, &protocol.ProfileSetRequest{Blob: image})
}
