package mirage

import (
	"context"

	"github.com/mirageim/mirage-go/pkg/protocol"
)

// GetCookies fetches the web-service cookies for a domain; empty
// domain returns the base cookies.
func (c *Client) GetCookies(ctx context.Context, domain string) *Ret {
	var body protocol.WebCredResponse
	if err := c.call(ctx, protocol.CmdGetCookies, &protocol.WebCredRequest{Domain: domain}, &body); err != nil {
		return retFromErr(err)
	}
	return ok(&body)
}

// GetCSRFToken fetches the anti-forgery token used by the web
// services.
func (c *Client) GetCSRFToken(ctx context.Context) *Ret {
	var body protocol.WebCredResponse
	if err := c.call(ctx, protocol.CmdGetCSRFToken, struct{}{}, &body); err != nil {
		return retFromErr(err)
	}
	return ok(&body)
}

// CleanCache asks the server to drop stored media of the given kind
// ("image", "record", or empty for everything). The server processes
// this asynchronously.
func (c *Client) CleanCache(ctx context.Context, kind string) *Ret {
	res, err := c.callRes(ctx, protocol.CmdCleanCache, &protocol.CleanCacheRequest{Kind: kind})
	if err != nil {
		return retFromErr(err)
	}
	if err := wireErr(res); err != nil {
		return retFromErr(err)
	}
	if res.Code == protocol.WireCodeAsync {
		return async(nil)
	}
	return ok(nil)
}
