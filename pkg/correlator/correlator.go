// Package correlator matches outbound operations to their
// asynchronous responses. Every submitted operation gets a sequence
// number unique among the operations currently in flight on the
// connection; the server echoes it on the response frame. A Pending
// completes exactly once: with the response body, a deadline expiry,
// or a connection-loss sweep, whichever comes first.
package correlator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/transport"
)

// Correlator errors.
var (
	// ErrTimeout reports a deadline expiry before the response arrived.
	ErrTimeout = errors.New("correlator: operation timed out")

	// ErrConnectionLost reports that the connection died with the
	// operation still pending.
	ErrConnectionLost = errors.New("correlator: connection lost")

	// ErrTooManyPending reports sequence space exhaustion. In practice
	// this means the application has four billion operations in
	// flight, which is a bug upstream.
	ErrTooManyPending = errors.New("correlator: no free sequence number")
)

// DefaultTimeout is the per-operation deadline. Generous: the server
// batches roster listings and can take a while under load.
const DefaultTimeout = 30 * time.Second

// Config configures a Correlator.
type Config struct {
	// Timeout is the per-operation deadline (default DefaultTimeout).
	Timeout time.Duration

	// OnLost is invoked once per operation that expires or dies with
	// the connection; the session counts these as lost packets. May
	// be nil.
	OnLost func()
}

// Correlator allocates sequence numbers, frames requests, and settles
// pending operations from the inbound path.
type Correlator struct {
	tr      transport.Transport
	timeout time.Duration
	onLost  func()

	mu      sync.Mutex
	pending map[uint32]*Pending
	next    uint32
	swept   bool // FailAll ran; no further submissions
}

// New creates a Correlator writing through tr.
func New(tr transport.Transport, config Config) *Correlator {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Correlator{
		tr:      tr,
		timeout: timeout,
		onLost:  config.OnLost,
		pending: make(map[uint32]*Pending),
		next:    1,
	}
}

// Submit marshals body, allocates a sequence number, writes the framed
// request, and returns the pending handle. The deadline timer starts
// on a successful write.
func (c *Correlator) Submit(ctx context.Context, cmd protocol.Command, body any) (*Pending, error) {
	payload, err := protocol.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("correlator: marshal %s: %w", cmd, err)
	}
	return c.SubmitRaw(ctx, cmd, payload)
}

// SubmitRaw is Submit for an already-marshaled body.
func (c *Correlator) SubmitRaw(ctx context.Context, cmd protocol.Command, payload []byte) (*Pending, error) {
	p, err := c.register(cmd)
	if err != nil {
		return nil, err
	}

	frame, err := protocol.NewRequestFrame(cmd, p.seq, payload)
	if err != nil {
		c.drop(p)
		return nil, err
	}

	if err := c.tr.WriteFrame(ctx, frame.Encode()); err != nil {
		c.drop(p)
		return nil, err
	}

	p.timer = time.AfterFunc(c.timeout, func() {
		if c.drop(p) {
			if c.onLost != nil {
				c.onLost()
			}
			p.complete(nil, ErrTimeout)
		}
	})
	return p, nil
}

// register allocates the next free sequence number and records the
// pending operation under it. Sequence numbers wrap around; a value
// still pending is skipped, so uniqueness among outstanding
// operations holds at every instant.
func (c *Correlator) register(cmd protocol.Command) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.swept {
		return nil, ErrConnectionLost
	}

	start := c.next
	for {
		seq := c.next
		c.next++
		if c.next == 0 {
			c.next = 1
		}
		if _, taken := c.pending[seq]; !taken && seq != 0 {
			p := newPending(seq, cmd)
			c.pending[seq] = p
			return p, nil
		}
		if c.next == start {
			return nil, ErrTooManyPending
		}
	}
}

// drop removes exactly p from the pending table. The identity check
// keeps a stale deadline timer from retiring an unrelated operation
// that reused the sequence number after wraparound.
func (c *Correlator) drop(p *Pending) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q, ok := c.pending[p.seq]; !ok || q != p {
		return false
	}
	delete(c.pending, p.seq)
	return true
}

// take removes and returns the pending operation for seq, stopping its
// deadline timer.
func (c *Correlator) take(seq uint32) (*Pending, bool) {
	c.mu.Lock()
	p, ok := c.pending[seq]
	if ok {
		delete(c.pending, seq)
	}
	c.mu.Unlock()

	if ok && p.timer != nil {
		p.timer.Stop()
	}
	return p, ok
}

// Resolve settles the pending operation for seq with a response body
// or an operation error. A late response for an already-retired
// sequence number is discarded; that is the normal fate of a reply
// that lost the race with its deadline.
func (c *Correlator) Resolve(seq uint32, body []byte, err error) bool {
	p, ok := c.take(seq)
	if !ok {
		return false
	}
	p.complete(body, err)
	return true
}

// FailAll settles every still-pending operation with ErrConnectionLost
// (or err if non-nil wraps more detail) and refuses further
// submissions. Called exactly once per connection, from the loss path.
func (c *Correlator) FailAll(err error) {
	if err == nil {
		err = ErrConnectionLost
	}

	c.mu.Lock()
	swept := c.pending
	c.pending = make(map[uint32]*Pending)
	c.swept = true
	c.mu.Unlock()

	for _, p := range swept {
		if p.timer != nil {
			p.timer.Stop()
		}
		if c.onLost != nil {
			c.onLost()
		}
		p.complete(nil, err)
	}
}

// Outstanding returns the number of operations currently in flight.
func (c *Correlator) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
