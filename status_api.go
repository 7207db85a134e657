package mirage

import (
	"github.com/mirageim/mirage-go/pkg/session"
	"github.com/mirageim/mirage-go/pkg/transport"
)

// Version of the client library, reported by GetVersionInfo.
const Version = "1.0.0"

// Status is the introspection view returned by GetStatus.
type Status struct {
	Online     bool                       `json:"online"`
	StatusCode int                        `json:"status_code"`
	State      string                     `json:"state"`
	RemoteAddr string                     `json:"remote_addr,omitempty"`
	MsgPerMin  int                        `json:"msg_per_min"`
	Statistics session.StatisticsSnapshot `json:"statistics"`
	Config     ConfigSnapshot             `json:"config"`
}

// VersionInfo describes the client build, reported by GetVersionInfo.
type VersionInfo struct {
	AppName  string   `json:"app_name"`
	Version  string   `json:"version"`
	Platform Platform `json:"platform"`
}

// GetStatus reports the connection state, message rate, cumulative
// statistics, and effective configuration. Always succeeds; no
// network access.
func (c *Client) GetStatus() *Ret {
	remote := c.sess.RemoteAddr()
	if remote == "" && c.cfg.RemoteAddr != "" {
		remote = c.cfg.RemoteAddr
	}
	if remote == "" {
		remote = transport.DefaultEndpoint
	}
	return ok(&Status{
		Online:     c.sess.IsOnline(),
		StatusCode: c.sess.Identity().Status,
		State:      c.sess.State().String(),
		RemoteAddr: remote,
		MsgPerMin:  c.sess.Stats().MsgPerMin(),
		Statistics: c.sess.Stats().Snapshot(),
		Config:     c.cfg.snapshot(),
	})
}

// GetLoginInfo reports the account identity populated by the last
// successful login.
func (c *Client) GetLoginInfo() *Ret {
	return ok(c.sess.Identity())
}

// CanSendImage reports whether the account may send images. Always
// true on this protocol.
func (c *Client) CanSendImage() *Ret {
	return ok(map[string]bool{"yes": true})
}

// CanSendRecord reports whether the account may send voice records.
// Always true on this protocol.
func (c *Client) CanSendRecord() *Ret {
	return ok(map[string]bool{"yes": true})
}

// GetVersionInfo reports the client build information.
func (c *Client) GetVersionInfo() *Ret {
	return ok(&VersionInfo{
		AppName:  "mirage-go",
		Version:  Version,
		Platform: c.cfg.Platform,
	})
}
