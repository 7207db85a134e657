package transport

import (
	"context"
)

// Pipe returns a connected pair of in-memory transports. Frames
// written on one end arrive on the other end's receive channel.
// Closing either end terminates both with ErrClosed.
//
// Pipes back the protocol-level tests: a scripted fake server holds
// one end while the session under test dials the other.
func Pipe() (*PipeTransport, *PipeTransport) {
	a := &PipeTransport{recv: make(chan []byte, recvBuffer), term: newTerminal()}
	b := &PipeTransport{recv: make(chan []byte, recvBuffer), term: newTerminal()}
	a.peer, b.peer = b, a
	return a, b
}

// PipeTransport is one end of an in-memory transport pair.
type PipeTransport struct {
	peer *PipeTransport
	recv chan []byte
	term *terminal
}

// WriteFrame delivers the frame to the peer's receive channel.
func (p *PipeTransport) WriteFrame(ctx context.Context, frame []byte) error {
	// Copy: callers may reuse the encode buffer after we return.
	buf := make([]byte, len(frame))
	copy(buf, frame)

	select {
	case <-p.term.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.peer.recv <- buf:
		return nil
	}
}

// Recv returns the inbound frame channel.
func (p *PipeTransport) Recv() <-chan []byte { return p.recv }

// Done is closed when either end has closed.
func (p *PipeTransport) Done() <-chan struct{} { return p.term.Done() }

// Err returns the terminal error after Done.
func (p *PipeTransport) Err() error { return p.term.Err() }

// Close terminates both ends.
func (p *PipeTransport) Close() error {
	p.term.fail(ErrClosed)
	p.peer.term.fail(ErrClosed)
	return nil
}

// Fail terminates both ends with err, simulating an abrupt network
// loss in tests.
func (p *PipeTransport) Fail(err error) {
	p.term.fail(err)
	p.peer.term.fail(err)
}

// RemoteAddr returns a fixed placeholder address.
func (p *PipeTransport) RemoteAddr() string { return "pipe" }
