package session

import (
	"context"
	"time"

	"github.com/mirageim/mirage-go/pkg/cache"
	"github.com/mirageim/mirage-go/pkg/correlator"
	"github.com/mirageim/mirage-go/pkg/event"
	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/transport"
)

// processLoop is the sequential inbound-processing path for one
// connection: every frame is decoded, correlated or classified, and
// its cache mutation and event dispatch run here in arrival order.
// One loop per connection epoch; an orphaned loop (superseded by a
// newer connection) exits without touching session state.
func (s *Session) processLoop(tr transport.Transport, corr *correlator.Correlator, epoch uint64) {
	for {
		select {
		case data, ok := <-tr.Recv():
			if !ok {
				s.handleDisconnect(tr, epoch)
				return
			}
			s.handleFrame(corr, data)

		case <-tr.Done():
			// Drain frames that arrived before the loss.
			for {
				select {
				case data, ok := <-tr.Recv():
					if !ok {
						s.handleDisconnect(tr, epoch)
						return
					}
					s.handleFrame(corr, data)
					continue
				default:
				}
				break
			}
			s.handleDisconnect(tr, epoch)
			return

		case <-s.closed:
			return
		}
	}
}

func (s *Session) handleFrame(corr *correlator.Correlator, data []byte) {
	s.stats.AddRecvPkt()
	s.obs.PacketRecv()

	f, err := protocol.DecodeFrame(data)
	if err != nil {
		s.logger.Error("frame decode error", "error", err)
		return
	}

	body, err := f.Body()
	if err != nil {
		s.logger.Error("frame decompress error", "type", f.Type.String(), "error", err)
		return
	}

	switch f.Type {
	case protocol.FrameResponse:
		if !corr.Resolve(f.Seq, body, nil) {
			// Normal for a reply that lost the race with its deadline.
			s.logger.Debug("late response discarded", "seq", f.Seq, "cmd", f.Cmd.String())
		}

	case protocol.FramePush:
		s.handlePush(body)

	case protocol.FrameControl:
		s.handleControl(f, body)

	case protocol.FrameError:
		s.logger.Warn("server error frame", "cmd", f.Cmd.String())

	default:
		s.logger.Warn("unknown frame type", "type", uint8(f.Type))
	}
}

// handleControl answers server-initiated heartbeat probes.
func (s *Session) handleControl(f *protocol.Frame, body []byte) {
	if f.Cmd != protocol.CmdHeartbeat {
		return
	}
	s.mu.Lock()
	tr := s.tr
	s.mu.Unlock()
	if tr == nil {
		return
	}

	echo := &protocol.Frame{Type: protocol.FrameControl, Cmd: protocol.CmdHeartbeat, Payload: body}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.HeartbeatTimeout)
	defer cancel()
	if err := tr.WriteFrame(ctx, echo.Encode()); err != nil {
		s.logger.Debug("heartbeat echo failed", "error", err)
	}
}

// handlePush decodes a push into an event, applies its cache mutation,
// and dispatches it. Mutation strictly precedes dispatch so observers
// see a cache consistent with the event in hand.
func (s *Session) handlePush(body []byte) {
	var ev event.Event
	if err := protocol.Unmarshal(body, &ev); err != nil {
		s.logger.Error("push decode error", "error", err)
		return
	}
	ev.SelfID = s.cfg.AccountID
	if ev.Time == 0 {
		ev.Time = time.Now().Unix()
	}

	if ev.PostType == event.PostMessage {
		if s.cfg.IgnoreSelf && ev.UserID == s.cfg.AccountID && ev.DetailType == "group" {
			return
		}
		s.stats.AddRecvMsg()
		s.obs.MsgRecv()
	}

	s.applyPushMutation(&ev)

	if ev.PostType == event.PostSystem && ev.DetailType == "offline" && ev.SubType == "kickoff" {
		// Remember the displacement so the disconnect path skips the
		// network-loss reconnect policy.
		s.kicked.Store(true)
		s.dispatch(&ev)
		s.mu.Lock()
		tr := s.tr
		s.mu.Unlock()
		if tr != nil {
			tr.Close()
		}
		return
	}

	s.dispatch(&ev)
}

// applyPushMutation updates the roster for side-effecting pushes.
func (s *Session) applyPushMutation(ev *event.Event) {
	roster := s.cfg.Roster
	if roster == nil || ev.PostType != event.PostNotice {
		return
	}

	switch ev.DetailType {
	case "friend":
		switch ev.SubType {
		case "increase":
			roster.SetFriend(&cache.FriendInfo{
				StrangerInfo: cache.StrangerInfo{UserID: ev.UserID, Nickname: ev.Nickname},
			})
		case "decrease":
			roster.DeleteFriend(ev.UserID)
		}

	case "group":
		switch ev.SubType {
		case "increase":
			if ev.Member != nil {
				roster.SetMember(ev.Member)
			} else if roster.MembersLoaded(ev.GroupID) {
				roster.SetMember(&cache.MemberInfo{
					GroupID: ev.GroupID, UserID: ev.UserID, Nickname: ev.Nickname,
				})
			}
		case "decrease":
			if ev.Dismiss || ev.UserID == s.cfg.AccountID {
				// Group dismissed, or we left / were kicked.
				roster.DeleteGroup(ev.GroupID)
			} else {
				roster.DeleteMember(ev.GroupID, ev.UserID)
			}
		case "admin":
			if m, ok := roster.Member(ev.GroupID, ev.UserID); ok {
				updated := *m
				if ev.Set {
					updated.Role = "admin"
				} else {
					updated.Role = "member"
				}
				roster.SetMember(&updated)
			}
		case "card":
			if m, ok := roster.Member(ev.GroupID, ev.UserID); ok {
				updated := *m
				updated.Card = ev.Title
				roster.SetMember(&updated)
			}
		case "transfer":
			if g, ok := roster.Group(ev.GroupID); ok {
				updated := *g
				updated.OwnerID = ev.UserID
				roster.SetGroup(&updated)
			}
		}
	}
}
