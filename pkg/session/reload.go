package session

import (
	"context"
	"fmt"

	"github.com/mirageim/mirage-go/pkg/cache"
	"github.com/mirageim/mirage-go/pkg/protocol"
)

// ReloadFriends fetches the full friend listing and atomically
// replaces the friend cache. The reload gate is held for the
// duration: ordinary operations fail fast rather than observing a
// half-replaced roster. A failed fetch leaves the prior mapping
// untouched.
func (s *Session) ReloadFriends(ctx context.Context) error {
	return s.gated(func() error {
		res, err := s.call(ctx, protocol.CmdFriendList, struct{}{})
		if err != nil {
			return err
		}
		if err := wireError(res); err != nil {
			return err
		}

		var body cache.FriendListBody
		if err := protocol.Unmarshal(res.Body, &body); err != nil {
			return fmt.Errorf("session: decode friend list: %w", err)
		}

		friends := make(map[int64]*cache.FriendInfo, len(body.Friends))
		for i := range body.Friends {
			f := body.Friends[i]
			friends[f.UserID] = &f
		}
		s.cfg.Roster.ReplaceFriends(friends)
		s.logger.Debug("friend list reloaded", "count", len(friends))
		return nil
	})
}

// ReloadGroups fetches the full group listing and atomically replaces
// the group cache; member maps of departed groups are dropped with it.
func (s *Session) ReloadGroups(ctx context.Context) error {
	return s.gated(func() error {
		res, err := s.call(ctx, protocol.CmdGroupList, struct{}{})
		if err != nil {
			return err
		}
		if err := wireError(res); err != nil {
			return err
		}

		var body cache.GroupListBody
		if err := protocol.Unmarshal(res.Body, &body); err != nil {
			return fmt.Errorf("session: decode group list: %w", err)
		}

		groups := make(map[int64]*cache.GroupInfo, len(body.Groups))
		for i := range body.Groups {
			g := body.Groups[i]
			groups[g.GroupID] = &g
		}
		s.cfg.Roster.ReplaceGroups(groups)
		s.logger.Debug("group list reloaded", "count", len(groups))
		return nil
	})
}

// gated closes the reload gate around fn. Reloads are counted:
// overlapping reloads keep the gate closed until the last one
// finishes, and only then is the pre-reload gate state restored.
// During the initial login reload the gate is already closed and
// stays closed until the login flow opens it.
func (s *Session) gated(fn func() error) error {
	s.mu.Lock()
	if s.reloads == 0 {
		s.reloadWasReady = s.ready.Load()
	}
	s.reloads++
	s.ready.Store(false)
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	s.reloads--
	if s.reloads == 0 && s.reloadWasReady {
		s.ready.Store(true)
	}
	s.mu.Unlock()
	return err
}

// wireError converts a non-success result envelope into an *OpError.
func wireError(res *protocol.WireResult) error {
	if res.Code == protocol.WireCodeOK || res.Code == protocol.WireCodeAsync {
		return nil
	}
	return &OpError{Code: res.Code, Message: res.Message}
}

// OpError is an application-level failure returned by the server
// inside a response envelope: invalid identifier, insufficient
// permission, rate limit. It is reported through the result envelope,
// never panicked.
type OpError struct {
	Code    int
	Message string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("operation failed: code %d: %s", e.Code, e.Message)
}
