package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics holds the monotonic connection counters. They are reset
// only when the client is constructed, never on reconnect.
type Statistics struct {
	startTime  int64
	lostTimes  atomic.Uint64
	recvPkt    atomic.Uint64
	sentPkt    atomic.Uint64
	lostPkt    atomic.Uint64
	recvMsg    atomic.Uint64
	sentMsg    atomic.Uint64

	// Recent message timestamps for the per-minute rate. Bounded:
	// pruned on every insert and read.
	rateMu    sync.Mutex
	rateTimes []time.Time
}

// NewStatistics creates statistics with the start time stamped now.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now().Unix()}
}

// StatisticsSnapshot is the exported counter view.
type StatisticsSnapshot struct {
	StartTime  int64  `json:"start_time"`
	LostTimes  uint64 `json:"lost_times"`
	RecvPktCnt uint64 `json:"recv_pkt_cnt"`
	SentPktCnt uint64 `json:"sent_pkt_cnt"`
	LostPktCnt uint64 `json:"lost_pkt_cnt"`
	RecvMsgCnt uint64 `json:"recv_msg_cnt"`
	SentMsgCnt uint64 `json:"sent_msg_cnt"`
}

// Snapshot returns the current counter values.
func (s *Statistics) Snapshot() StatisticsSnapshot {
	return StatisticsSnapshot{
		StartTime:  s.startTime,
		LostTimes:  s.lostTimes.Load(),
		RecvPktCnt: s.recvPkt.Load(),
		SentPktCnt: s.sentPkt.Load(),
		LostPktCnt: s.lostPkt.Load(),
		RecvMsgCnt: s.recvMsg.Load(),
		SentMsgCnt: s.sentMsg.Load(),
	}
}

// AddLostTimes records one connection loss.
func (s *Statistics) AddLostTimes() { s.lostTimes.Add(1) }

// AddRecvPkt records one received packet.
func (s *Statistics) AddRecvPkt() { s.recvPkt.Add(1) }

// AddSentPkt records one sent packet.
func (s *Statistics) AddSentPkt() { s.sentPkt.Add(1) }

// AddLostPkt records one packet that timed out unanswered.
func (s *Statistics) AddLostPkt() { s.lostPkt.Add(1) }

// AddRecvMsg records one received message and feeds the rate window.
func (s *Statistics) AddRecvMsg() {
	s.recvMsg.Add(1)
	s.markMsg()
}

// AddSentMsg records one sent message and feeds the rate window.
func (s *Statistics) AddSentMsg() {
	s.sentMsg.Add(1)
	s.markMsg()
}

func (s *Statistics) markMsg() {
	now := time.Now()
	s.rateMu.Lock()
	s.rateTimes = append(s.rateTimes, now)
	s.pruneLocked(now)
	s.rateMu.Unlock()
}

// MsgPerMin returns the number of messages sent or received in the
// last minute.
func (s *Statistics) MsgPerMin() int {
	now := time.Now()
	s.rateMu.Lock()
	defer s.rateMu.Unlock()
	s.pruneLocked(now)
	return len(s.rateTimes)
}

func (s *Statistics) pruneLocked(now time.Time) {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(s.rateTimes) && s.rateTimes[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		s.rateTimes = append(s.rateTimes[:0], s.rateTimes[i:]...)
	}
}
