package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mirageim/mirage-go/pkg/cache"
	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/event"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/transport"
)

// Session errors.
var (
	// ErrNotReady reports an operation submitted while the session is
	// not online or the reload gate is closed. Operations fail fast
	// rather than queueing.
	ErrNotReady = errors.New("session: not online")

	// ErrBadState reports a lifecycle call invalid in the current
	// state (e.g. Login while already online).
	ErrBadState = errors.New("session: invalid state for call")

	// ErrTerminated reports a call on a terminated session.
	ErrTerminated = errors.New("session: terminated")

	// ErrLoginFailed reports a rejected credential.
	ErrLoginFailed = errors.New("session: login failed")

	// ErrChallengeRequired reports that login paused on a server
	// challenge; answer it with SubmitChallenge.
	ErrChallengeRequired = errors.New("session: challenge required")
)

// Timing defaults.
const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHeartbeatTimeout  = 5 * time.Second
	DefaultHeartbeatMisses   = 3
	DefaultKickoffDelay      = 3 * time.Second
	DefaultReconnInterval    = 5 * time.Second
	logoutTimeout            = 5 * time.Second
)

// Config configures a Session.
type Config struct {
	AccountID int64
	Platform  int

	// Device fingerprint fields sent during login negotiation.
	DeviceID     string
	DeviceSerial string

	// SessionToken is a previously persisted fast-login token; may be
	// nil. OnToken, if non-nil, receives the fresh token after a
	// successful login so the caller can persist it.
	SessionToken []byte
	OnToken      func([]byte)

	Dialer     transport.Dialer
	Roster     *cache.Roster
	Dispatcher *event.Dispatcher
	Logger     *slog.Logger

	// Observer receives life-sign callbacks (metrics). May be nil.
	Observer Observer

	// OpTimeout is the per-operation deadline (correlator default
	// when zero).
	OpTimeout time.Duration

	// IgnoreSelf drops the account's own group messages instead of
	// dispatching them.
	IgnoreSelf bool

	// ReconnInterval is the automatic re-login interval after a
	// network loss. Zero disables automatic reconnection.
	ReconnInterval time.Duration

	// KickoffCounter re-logins after KickoffDelay when displaced by a
	// login elsewhere.
	KickoffCounter bool
	KickoffDelay   time.Duration

	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
	HeartbeatMisses   int
}

// Session is the state machine for one account's connection.
type Session struct {
	cfg    Config
	logger *slog.Logger
	stats  *Statistics
	obs    Observer

	state  atomic.Int32
	ready  atomic.Bool // reload gate: operations admitted only when true
	kicked atomic.Bool

	mu             sync.Mutex
	tr             transport.Transport
	corr           *correlator.Correlator
	epoch          uint64
	credential     []byte // MD5 credential hash, retained for re-login
	token          []byte
	identity       protocol.AccountIdentity
	hbStop         chan struct{}
	reconnTmr      *time.Timer
	reloads        int  // bulk reloads in flight; gate stays closed while > 0
	reloadWasReady bool // gate state to restore when the last reload finishes

	closed chan struct{} // closed on Terminate
}

// New creates a session in the Disconnected state.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if cfg.HeartbeatMisses == 0 {
		cfg.HeartbeatMisses = DefaultHeartbeatMisses
	}
	if cfg.KickoffDelay == 0 {
		cfg.KickoffDelay = DefaultKickoffDelay
	}

	obs := cfg.Observer
	if obs == nil {
		obs = noopObserver{}
	}
	s := &Session{
		cfg:    cfg,
		logger: cfg.Logger.With("account", cfg.AccountID),
		stats:  NewStatistics(),
		obs:    obs,
		token:  cfg.SessionToken,
		closed: make(chan struct{}),
	}
	s.state.Store(int32(StateDisconnected))
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// IsOnline reports whether the session is online. The reload gate
// does not affect this; a gated session is online but not ready.
func (s *Session) IsOnline() bool {
	return s.State() == StateOnline
}

// Ready reports whether operations are admitted: online and the
// reload gate open.
func (s *Session) Ready() bool {
	return s.IsOnline() && s.ready.Load()
}

// Stats returns the connection statistics.
func (s *Session) Stats() *Statistics {
	return s.stats
}

// Identity returns the account identity populated by the last
// successful login.
func (s *Session) Identity() protocol.AccountIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// MutateIdentity applies fn to the account identity under the
// session lock. Profile operations use this to keep the identity in
// step with acknowledged changes.
func (s *Session) MutateIdentity(fn func(*protocol.AccountIdentity)) {
	s.mu.Lock()
	fn(&s.identity)
	s.mu.Unlock()
}

// RemoteAddr returns the connected endpoint, or empty when
// disconnected.
func (s *Session) RemoteAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tr == nil {
		return ""
	}
	return s.tr.RemoteAddr()
}

// setState transitions to next and logs the edge.
func (s *Session) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev != next {
		s.logger.Debug("state transition", "from", prev.String(), "to", next.String())
	}
}

// Call submits an operation and awaits its response envelope. It is
// the facade's single entry point for round-trip operations: the
// state gate applies here, so a session that is offline or mid-reload
// fails fast.
func (s *Session) Call(ctx context.Context, cmd protocol.Command, body any) (*protocol.WireResult, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	return s.call(ctx, cmd, body)
}

// call is Call without the reload gate; the login flow and the bulk
// reloads themselves come through here.
func (s *Session) call(ctx context.Context, cmd protocol.Command, body any) (*protocol.WireResult, error) {
	s.mu.Lock()
	corr := s.corr
	s.mu.Unlock()
	if corr == nil {
		return nil, ErrNotReady
	}

	p, err := corr.Submit(ctx, cmd, body)
	if err != nil {
		return nil, err
	}
	s.stats.AddSentPkt()
	s.obs.PacketSent()

	raw, err := p.Await(ctx)
	if err != nil {
		return nil, err
	}

	var res protocol.WireResult
	if err := protocol.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("session: decode %s response: %w", cmd, err)
	}
	return &res, nil
}

// Terminate drops the connection immediately without notifying the
// remote end and moves to the terminal state. Safe to call multiple
// times.
func (s *Session) Terminate() {
	s.mu.Lock()
	if s.State() == StateTerminated {
		s.mu.Unlock()
		return
	}
	s.setState(StateTerminated)
	s.ready.Store(false)
	tr := s.tr
	corr := s.corr
	if s.reconnTmr != nil {
		s.reconnTmr.Stop()
		s.reconnTmr = nil
	}
	hbStop := s.hbStop
	s.hbStop = nil
	s.mu.Unlock()

	close(s.closed)
	s.obs.SetOnline(false)
	if hbStop != nil {
		close(hbStop)
	}
	if tr != nil {
		tr.Close()
	}
	if corr != nil {
		corr.FailAll(correlator.ErrConnectionLost)
	}
	s.logger.Info("session terminated")
}

// Logout sends the logoff command, waits briefly for the
// acknowledgement, then terminates. A timeout or send failure still
// terminates; graceful is best-effort.
func (s *Session) Logout(ctx context.Context) error {
	if s.IsOnline() {
		ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
		defer cancel()
		if _, err := s.call(ctx, protocol.CmdLogoff, struct{}{}); err != nil {
			s.logger.Debug("logoff not acknowledged", "error", err)
		}
	}
	s.Terminate()
	return nil
}
