// Package transport owns the physical duplex connection to a Mirage
// server endpoint. A Transport moves opaque frame bytes in both
// directions: writes are synchronous with a deadline, reads are pumped
// by an internal loop into a receive channel so the session can
// process inbound frames in strict arrival order.
//
// Disconnection is reported by closing Done; Err then returns the
// terminal error. A Transport is single-use: after Done, dial a new
// one.
package transport

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by writes on a transport that has terminated.
var ErrClosed = errors.New("transport: connection closed")

// Transport is one physical duplex connection.
type Transport interface {
	// WriteFrame writes one encoded frame. Safe for concurrent use.
	WriteFrame(ctx context.Context, frame []byte) error

	// Recv returns the channel of inbound frames. It is closed after
	// the connection terminates, once drained.
	Recv() <-chan []byte

	// Done is closed when the connection has terminated for any reason.
	Done() <-chan struct{}

	// Err returns the terminal error after Done is closed. A locally
	// initiated Close reports ErrClosed.
	Err() error

	// Close tears the connection down without notifying the remote end.
	Close() error

	// RemoteAddr returns the remote endpoint in host:port form.
	RemoteAddr() string
}

// Dialer establishes a Transport. The session state machine holds one
// and redials through it on reconnect; tests inject pipe-backed
// dialers.
type Dialer func(ctx context.Context) (Transport, error)

// terminal records the first terminal error and closes done once.
// Shared by the websocket and pipe implementations.
type terminal struct {
	once sync.Once
	done chan struct{}

	mu  sync.Mutex
	err error
}

func newTerminal() *terminal {
	return &terminal{done: make(chan struct{})}
}

// fail records err as the terminal error if none is set yet and closes
// done. Returns true on the first call.
func (t *terminal) fail(err error) bool {
	first := false
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		close(t.done)
		first = true
	})
	return first
}

func (t *terminal) Done() <-chan struct{} { return t.done }

func (t *terminal) Err() error {
	select {
	case <-t.done:
	default:
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
