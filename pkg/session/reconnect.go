package session

import (
	"context"
	"time"

	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/event"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/transport"
)

// handleDisconnect runs when a connection's transport terminates. It
// fails every in-flight operation, moves to Reconnecting, announces
// the loss, and applies the reconnect policy. Superseded epochs are
// ignored: a new connection already took over.
func (s *Session) handleDisconnect(tr transport.Transport, epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch || s.State() == StateTerminated {
		s.mu.Unlock()
		return
	}
	corr := s.corr
	s.tr = nil
	s.corr = nil
	hbStop := s.hbStop
	s.hbStop = nil
	wasOnline := s.State() == StateOnline
	s.ready.Store(false)
	s.setState(StateReconnecting)
	s.mu.Unlock()

	if hbStop != nil {
		close(hbStop)
	}
	if corr != nil {
		corr.FailAll(correlator.ErrConnectionLost)
	}
	s.stats.AddLostTimes()
	s.obs.Reconnect()
	s.obs.SetOnline(false)

	kicked := s.kicked.Swap(false)
	err := tr.Err()
	s.logger.Warn("connection lost", "error", err, "kicked", kicked)

	switch {
	case kicked:
		// The kickoff event was dispatched from the push path. The
		// counter-kick policy re-submits the credential after a short
		// fixed delay; without it the session accepts displacement.
		if s.cfg.KickoffCounter {
			s.scheduleRelogin(s.cfg.KickoffDelay)
		}

	case wasOnline || s.State() == StateReconnecting:
		s.dispatch(&event.Event{
			SelfID:     s.cfg.AccountID,
			Time:       time.Now().Unix(),
			PostType:   event.PostSystem,
			DetailType: "offline",
			SubType:    "network",
			ErrMsg:     errString(err),
		})
		if s.cfg.ReconnInterval > 0 {
			s.scheduleRelogin(s.cfg.ReconnInterval)
		}
	}
}

// scheduleRelogin arms the re-login timer. Repeated failures reschedule
// at ReconnInterval until the session terminates or an external Login
// succeeds first.
func (s *Session) scheduleRelogin(after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State() == StateTerminated {
		return
	}
	if s.reconnTmr != nil {
		s.reconnTmr.Stop()
	}
	s.reconnTmr = time.AfterFunc(after, s.relogin)
}

func (s *Session) relogin() {
	if s.State() != StateReconnecting {
		return
	}
	s.mu.Lock()
	credential := append([]byte(nil), s.credential...)
	s.mu.Unlock()
	if len(credential) == 0 {
		return
	}

	s.logger.Info("reconnecting")
	ctx, cancel := context.WithTimeout(context.Background(), correlator.DefaultTimeout)
	defer cancel()
	if _, err := s.Login(ctx, credential); err != nil {
		s.logger.Warn("reconnect failed", "error", err)
		if s.cfg.ReconnInterval > 0 && s.State() != StateTerminated {
			s.scheduleRelogin(s.cfg.ReconnInterval)
		}
	}
}

// startHeartbeat launches the heartbeat loop for the current
// connection. Consecutive misses beyond the configured threshold drop
// the transport, which surfaces as a normal connection loss.
func (s *Session) startHeartbeat() {
	stop := make(chan struct{})
	s.mu.Lock()
	if s.hbStop != nil {
		close(s.hbStop)
	}
	s.hbStop = stop
	tr := s.tr
	s.mu.Unlock()
	if tr == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(s.cfg.HeartbeatInterval)
		defer ticker.Stop()
		misses := 0

		for {
			select {
			case <-ticker.C:
				if s.beat() {
					misses = 0
					continue
				}
				misses++
				s.logger.Debug("heartbeat miss", "consecutive", misses)
				if misses >= s.cfg.HeartbeatMisses {
					s.logger.Warn("heartbeat failed, dropping connection")
					tr.Close()
					return
				}

			case <-stop:
				return
			}
		}
	}()
}

// beat sends one heartbeat and reports whether it was answered in
// time.
func (s *Session) beat() bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HeartbeatTimeout)
	defer cancel()

	res, err := s.call(ctx, protocol.CmdHeartbeat, &protocol.Heartbeat{
		Time: time.Now().UnixMilli(),
	})
	return err == nil && res != nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
