package session

// Observer receives connection life-sign callbacks alongside the
// internal statistics counters. The metrics exporter implements this;
// a nil observer costs nothing.
type Observer interface {
	PacketSent()
	PacketRecv()
	PacketLost()
	MsgSent()
	MsgRecv()
	Reconnect()
	SetOnline(bool)
}

type noopObserver struct{}

func (noopObserver) PacketSent()    {}
func (noopObserver) PacketRecv()    {}
func (noopObserver) PacketLost()    {}
func (noopObserver) MsgSent()       {}
func (noopObserver) MsgRecv()       {}
func (noopObserver) Reconnect()     {}
func (noopObserver) SetOnline(bool) {}

// NoteSentMsg records one sent chat message. Called by the facade
// after a successful send.
func (s *Session) NoteSentMsg() {
	s.stats.AddSentMsg()
	s.obs.MsgSent()
}
