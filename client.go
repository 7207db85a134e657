// Package mirage is a persistent client for the Mirage IM network.
// A Client authenticates one account, keeps a long-lived gateway
// connection alive across losses, correlates request/response
// operations, caches the account's social graph, and dispatches
// server pushes to registered handlers.
package mirage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mirageim/mirage-go/pkg/cache"
	"github.com/mirageim/mirage-go/pkg/device"
	"github.com/mirageim/mirage-go/pkg/event"
	"github.com/mirageim/mirage-go/pkg/metrics"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/session"
	"github.com/mirageim/mirage-go/pkg/transport"
)

// Client is one account's connection to the Mirage network. All
// state hangs off the instance; multiple clients for different
// accounts coexist in one process.
type Client struct {
	AccountID int64

	cfg    Config
	logger *slog.Logger
	store  *device.Store
	roster *cache.Roster
	events *event.Dispatcher
	sess   *session.Session
	stats  *metrics.Set
}

// CreateClient builds a client bound to accountID. The storage
// directory is created if needed; a previously persisted device
// fingerprint and session token are loaded from it.
func CreateClient(accountID int64, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.Logger
	if logger == nil {
		if cfg.LogLevel != nil {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		} else {
			logger = slog.Default()
		}
	}
	logger = logger.With("account", accountID)

	store, err := device.NewStore(cfg.DataDir, accountID)
	if err != nil {
		return nil, fmt.Errorf("mirage: open data dir: %w", err)
	}
	fp, err := store.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("mirage: device fingerprint: %w", err)
	}
	token, err := store.Token()
	if err != nil {
		logger.Warn("session token unreadable, starting fresh", "error", err)
		token = nil
	}

	c := &Client{
		AccountID: accountID,
		cfg:       cfg,
		logger:    logger,
		store:     store,
		roster:    cache.NewRoster(),
		events:    event.NewDispatcher(logger, nil),
	}

	if cfg.MetricsRegistry != nil {
		c.stats = metrics.New(metrics.WithRegistry(cfg.MetricsRegistry))
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = func(ctx context.Context) (transport.Transport, error) {
			return transport.DialWS(ctx, transport.WSConfig{
				Endpoint: cfg.RemoteAddr,
				Logger:   logger,
			})
		}
	}

	c.sess = session.New(session.Config{
		AccountID:         accountID,
		Platform:          int(cfg.Platform),
		DeviceID:          fp.DeviceID,
		DeviceSerial:      fp.Serial,
		SessionToken:      token,
		OnToken:           c.persistToken,
		Dialer:            dialer,
		Roster:            c.roster,
		Dispatcher:        c.events,
		Logger:            logger,
		Observer:          c.observer(),
		OpTimeout:         cfg.OpTimeout,
		IgnoreSelf:        cfg.IgnoreSelf,
		ReconnInterval:    time.Duration(cfg.ReconnInterval) * time.Second,
		KickoffCounter:    cfg.KickoffCounter,
		HeartbeatInterval: cfg.HeartbeatInterval,
	})
	return c, nil
}

// New is an alias for CreateClient.
func New(accountID int64, opts ...Option) (*Client, error) {
	return CreateClient(accountID, opts...)
}

func (c *Client) observer() session.Observer {
	if c.stats == nil {
		return nil
	}
	return c.stats
}

func (c *Client) persistToken(token []byte) {
	if err := c.store.SaveToken(token); err != nil {
		c.logger.Warn("session token not persisted", "error", err)
	}
}

// Login authenticates with a plaintext password. See LoginHash for
// the result envelope shapes.
func (c *Client) Login(ctx context.Context, password string) *Ret {
	return c.LoginHash(ctx, session.HashCredential(password))
}

// LoginHash authenticates with a pre-hashed credential. On success
// the envelope carries the account identity; on a server challenge
// the envelope is RetAsync with the *protocol.Challenge as data and
// the flow continues via CaptchaLogin; a rejected credential is
// RetFailed with the server's code and message.
func (c *Client) LoginHash(ctx context.Context, credentialHash []byte) *Ret {
	res, err := c.sess.Login(ctx, credentialHash)
	return c.loginRet(res, err)
}

// CaptchaLogin answers the pending login challenge.
func (c *Client) CaptchaLogin(ctx context.Context, answer string) *Ret {
	res, err := c.sess.SubmitChallenge(ctx, answer)
	return c.loginRet(res, err)
}

func (c *Client) loginRet(res *session.LoginResult, err error) *Ret {
	switch {
	case err == nil:
		return ok(c.sess.Identity())
	case errors.Is(err, session.ErrChallengeRequired):
		return &Ret{
			Retcode: RetAsync,
			Status:  "challenge",
			Data:    res.Challenge,
		}
	case errors.Is(err, session.ErrLoginFailed):
		return &Ret{
			Retcode: RetFailed,
			Status:  "failed",
			Error:   &ErrInfo{Code: res.ErrCode, Message: res.ErrMessage},
		}
	default:
		return retFromErr(err)
	}
}

// Logout gracefully closes the session: the logoff command is sent
// and briefly awaited, then the connection is dropped.
func (c *Client) Logout(ctx context.Context) *Ret {
	if err := c.sess.Logout(ctx); err != nil {
		return retFromErr(err)
	}
	return ok(nil)
}

// Terminate drops the connection immediately without notifying the
// remote end.
func (c *Client) Terminate() {
	c.sess.Terminate()
}

// IsOnline reports whether the session is online.
func (c *Client) IsOnline() bool {
	return c.sess.IsOnline()
}

// ReloadFriendList refetches the full friend listing and atomically
// replaces the friend cache. Other operations are refused while the
// reload is in flight.
func (c *Client) ReloadFriendList(ctx context.Context) *Ret {
	if !c.sess.Ready() {
		return retFromErr(session.ErrNotReady)
	}
	if err := c.sess.ReloadFriends(ctx); err != nil {
		return retFromErr(err)
	}
	return ok(nil)
}

// ReloadGroupList refetches the full group listing and atomically
// replaces the group cache.
func (c *Client) ReloadGroupList(ctx context.Context) *Ret {
	if !c.sess.Ready() {
		return retFromErr(session.ErrNotReady)
	}
	if err := c.sess.ReloadGroups(ctx); err != nil {
		return retFromErr(err)
	}
	return ok(nil)
}

// call runs one instrumented round-trip through the session gate,
// converts a non-success response envelope into an error, and decodes
// the body into out when out is non-nil.
func (c *Client) call(ctx context.Context, cmd protocol.Command, body, out any) error {
	res, err := c.roundTrip(ctx, cmd, body)
	if err != nil {
		return err
	}
	if err := wireErr(res); err != nil {
		return err
	}
	if out != nil && len(res.Body) > 0 {
		if err := protocol.Unmarshal(res.Body, out); err != nil {
			return fmt.Errorf("mirage: decode %s response: %w", cmd, err)
		}
	}
	return nil
}

// callRes is call for operations that need the raw wire code (the
// degraded-send fallback keys off it).
func (c *Client) callRes(ctx context.Context, cmd protocol.Command, body any) (*protocol.WireResult, error) {
	return c.roundTrip(ctx, cmd, body)
}

// simpleOp is the shape of most administration operations: one
// command, no response body, envelope ok or failure.
func (c *Client) simpleOp(ctx context.Context, cmd protocol.Command, body any) *Ret {
	if err := c.call(ctx, cmd, body, nil); err != nil {
		return retFromErr(err)
	}
	return ok(nil)
}
