package session

import (
	"context"
	"crypto/md5"
	"fmt"
	"time"

	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/event"
	"github.com/mirageim/mirage-go/pkg/protocol"
)

// LoginResult is the outcome of a Login or SubmitChallenge call.
// Exactly one of Online, Challenge, or the error fields is
// meaningful.
type LoginResult struct {
	Online     bool
	Challenge  *protocol.Challenge
	ErrCode    int
	ErrMessage string
}

// HashCredential returns the MD5 credential hash for a plaintext
// password. A caller that already holds the hash passes it to Login
// directly.
func HashCredential(plaintext string) []byte {
	sum := md5.Sum([]byte(plaintext))
	return sum[:]
}

// Login dials the gateway and submits the credential hash. On a
// server challenge the session parks in ChallengePending and the
// challenge is returned alongside ErrChallengeRequired; answer it
// with SubmitChallenge. On success the session is Online, the initial
// roster reload has completed, and the reload gate is open.
func (s *Session) Login(ctx context.Context, credentialHash []byte) (*LoginResult, error) {
	s.mu.Lock()
	switch s.State() {
	case StateDisconnected, StateReconnecting:
	case StateTerminated:
		s.mu.Unlock()
		return nil, ErrTerminated
	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBadState, s.State())
	}
	s.setState(StateConnecting)
	s.credential = append([]byte(nil), credentialHash...)
	s.mu.Unlock()

	tr, err := s.cfg.Dialer(ctx)
	if err != nil {
		s.setState(StateReconnecting)
		return nil, fmt.Errorf("session: dial: %w", err)
	}

	corr := correlator.New(tr, correlator.Config{
		Timeout: s.cfg.OpTimeout,
		OnLost: func() {
			s.stats.AddLostPkt()
			s.obs.PacketLost()
		},
	})

	s.mu.Lock()
	s.tr = tr
	s.corr = corr
	s.epoch++
	epoch := s.epoch
	s.setState(StateAuthenticating)
	s.mu.Unlock()

	go s.processLoop(tr, corr, epoch)

	return s.submitCredential(ctx, credentialHash)
}

// SubmitChallenge answers a pending captcha or device challenge.
func (s *Session) SubmitChallenge(ctx context.Context, answer string) (*LoginResult, error) {
	if s.State() != StateChallengePending {
		return nil, fmt.Errorf("%w: no challenge pending", ErrBadState)
	}
	res, err := s.call(ctx, protocol.CmdSubmitCaptcha, &protocol.CaptchaAnswer{Answer: answer})
	if err != nil {
		return nil, err
	}
	return s.handleLoginResponse(ctx, res)
}

func (s *Session) submitCredential(ctx context.Context, credentialHash []byte) (*LoginResult, error) {
	s.mu.Lock()
	token := append([]byte(nil), s.token...)
	s.mu.Unlock()

	req := &protocol.LoginRequest{
		AccountID:      s.cfg.AccountID,
		CredentialHash: credentialHash,
		Platform:       s.cfg.Platform,
		DeviceID:       s.cfg.DeviceID,
		DeviceSerial:   s.cfg.DeviceSerial,
		SessionToken:   token,
	}
	res, err := s.call(ctx, protocol.CmdLogin, req)
	if err != nil {
		return nil, err
	}
	return s.handleLoginResponse(ctx, res)
}

func (s *Session) handleLoginResponse(ctx context.Context, res *protocol.WireResult) (*LoginResult, error) {
	var lr protocol.LoginResponse
	if err := protocol.Unmarshal(res.Body, &lr); err != nil {
		return nil, fmt.Errorf("session: decode login response: %w", err)
	}

	switch lr.Verdict {
	case protocol.VerdictOK:
		return s.finishLogin(ctx, &lr)

	case protocol.VerdictCaptcha, protocol.VerdictDeviceLock:
		s.setState(StateChallengePending)
		detail := "captcha"
		if lr.Verdict == protocol.VerdictDeviceLock {
			detail = "device"
		}
		s.logger.Info("login challenge", "kind", detail)
		s.dispatch(&event.Event{
			SelfID:     s.cfg.AccountID,
			Time:       time.Now().Unix(),
			PostType:   event.PostSystem,
			DetailType: "login",
			SubType:    detail,
			Image:      challengeImage(lr.Challenge),
			URL:        challengeURL(lr.Challenge),
		})
		return &LoginResult{Challenge: lr.Challenge}, ErrChallengeRequired

	default:
		s.logger.Warn("login rejected", "code", lr.ErrCode, "message", lr.ErrMessage)
		s.dispatch(&event.Event{
			SelfID:     s.cfg.AccountID,
			Time:       time.Now().Unix(),
			PostType:   event.PostSystem,
			DetailType: "login",
			SubType:    "error",
			ErrCode:    lr.ErrCode,
			ErrMsg:     lr.ErrMessage,
		})
		s.dropConnection()
		s.setState(StateDisconnected)
		return &LoginResult{ErrCode: lr.ErrCode, ErrMessage: lr.ErrMessage},
			fmt.Errorf("%w: %s", ErrLoginFailed, lr.ErrMessage)
	}
}

// finishLogin populates the identity, persists the fast-login token,
// runs the initial roster reload behind the gate, and announces
// system.online.
func (s *Session) finishLogin(ctx context.Context, lr *protocol.LoginResponse) (*LoginResult, error) {
	s.mu.Lock()
	if lr.Identity != nil {
		s.identity = *lr.Identity
	}
	if len(lr.SessionToken) > 0 {
		s.token = append([]byte(nil), lr.SessionToken...)
	}
	s.mu.Unlock()

	if s.cfg.OnToken != nil && len(lr.SessionToken) > 0 {
		s.cfg.OnToken(lr.SessionToken)
	}

	s.ready.Store(false)
	s.setState(StateOnline)

	// The reload gate: nothing else is admitted until the social
	// graph is authoritative.
	if err := s.ReloadFriends(ctx); err != nil {
		s.logger.Error("initial friend reload failed", "error", err)
		s.dropConnection()
		s.setState(StateDisconnected)
		return nil, fmt.Errorf("session: initial friend reload: %w", err)
	}
	if err := s.ReloadGroups(ctx); err != nil {
		s.logger.Error("initial group reload failed", "error", err)
		s.dropConnection()
		s.setState(StateDisconnected)
		return nil, fmt.Errorf("session: initial group reload: %w", err)
	}
	s.ready.Store(true)

	s.startHeartbeat()
	s.obs.SetOnline(true)
	s.logger.Info("online", "nickname", s.Identity().Nickname)
	s.dispatch(&event.Event{
		SelfID:   s.cfg.AccountID,
		Time:     time.Now().Unix(),
		PostType: event.PostSystem,
		DetailType: "online",
	})
	return &LoginResult{Online: true}, nil
}

// dropConnection closes the transport and correlator without a state
// transition; callers decide the next state.
func (s *Session) dropConnection() {
	s.mu.Lock()
	tr := s.tr
	corr := s.corr
	s.tr = nil
	s.corr = nil
	hbStop := s.hbStop
	s.hbStop = nil
	s.epoch++ // orphan the process loop of the old connection
	s.mu.Unlock()

	if hbStop != nil {
		close(hbStop)
	}
	if tr != nil {
		tr.Close()
	}
	if corr != nil {
		corr.FailAll(correlator.ErrConnectionLost)
	}
}

func (s *Session) dispatch(ev *event.Event) {
	if s.cfg.Dispatcher != nil {
		s.cfg.Dispatcher.Dispatch(ev)
	}
}

func challengeImage(c *protocol.Challenge) []byte {
	if c == nil {
		return nil
	}
	return c.Image
}

func challengeURL(c *protocol.Challenge) string {
	if c == nil {
		return ""
	}
	return c.URL
}
