package correlator

import (
	"context"
	"sync"
	"time"

	"github.com/mirageim/mirage-go/pkg/protocol"
)

// Pending is one in-flight operation: the correlation sequence number,
// a completion slot, and the deadline timer. Completion is idempotent;
// the first of response, timeout, or connection loss wins and later
// attempts are no-ops.
type Pending struct {
	seq   uint32
	cmd   protocol.Command
	timer *time.Timer

	once   sync.Once
	done   chan struct{}
	result []byte
	err    error
}

func newPending(seq uint32, cmd protocol.Command) *Pending {
	return &Pending{
		seq:  seq,
		cmd:  cmd,
		done: make(chan struct{}),
	}
}

// Seq returns the correlation sequence number.
func (p *Pending) Seq() uint32 { return p.seq }

// Cmd returns the command this operation was submitted as.
func (p *Pending) Cmd() protocol.Command { return p.cmd }

// Done is closed when the operation has completed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// complete settles the operation. Only the first call has any effect.
func (p *Pending) complete(result []byte, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// Result returns the response body and error after Done.
func (p *Pending) Result() ([]byte, error) {
	select {
	case <-p.done:
		return p.result, p.err
	default:
		return nil, nil
	}
}

// Await blocks until the operation completes or ctx is cancelled.
// Cancellation abandons interest in the result; the deadline or the
// connection-loss sweep retires the pending entry eventually.
func (p *Pending) Await(ctx context.Context) ([]byte, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
