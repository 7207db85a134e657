// Package session drives the login state machine and the connection
// lifecycle for one account: dialing, authentication (including
// captcha and device challenges), heartbeat, loss detection,
// reconnection, and the sequential inbound-processing path that keeps
// cache mutations and event dispatch causally ordered.
package session

// State is the connection/login state of a session.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateChallengePending
	StateOnline
	StateReconnecting
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateChallengePending:
		return "ChallengePending"
	case StateOnline:
		return "Online"
	case StateReconnecting:
		return "Reconnecting"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
