package correlator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mirageim/mirage-go/pkg/protocol"
	"github.com/mirageim/mirage-go/pkg/transport"
)

func newTestCorrelator(t *testing.T, config Config) (*Correlator, *transport.PipeTransport) {
	t.Helper()
	client, server := transport.Pipe()
	t.Cleanup(func() { client.Close() })
	return New(client, config), server
}

// drainOne reads the next frame the correlator wrote.
func drainOne(t *testing.T, server *transport.PipeTransport) *protocol.Frame {
	t.Helper()
	select {
	case data := <-server.Recv():
		f, err := protocol.DecodeFrame(data)
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame written")
		return nil
	}
}

func TestSubmitAndResolve(t *testing.T) {
	c, server := newTestCorrelator(t, Config{})

	p, err := c.Submit(context.Background(), protocol.CmdHeartbeat, &protocol.Heartbeat{Time: 1})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	f := drainOne(t, server)
	if f.Type != protocol.FrameRequest || f.Cmd != protocol.CmdHeartbeat {
		t.Errorf("frame = %v %v, want Request Heartbeat", f.Type, f.Cmd)
	}
	if f.Seq != p.Seq() {
		t.Errorf("frame seq = %d, pending seq = %d", f.Seq, p.Seq())
	}

	if !c.Resolve(p.Seq(), []byte("pong"), nil) {
		t.Fatal("Resolve returned false for an in-flight seq")
	}

	body, err := p.Await(context.Background())
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if string(body) != "pong" {
		t.Errorf("body = %q, want %q", body, "pong")
	}
	if c.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", c.Outstanding())
	}
}

func TestSeqUniqueAmongOutstanding(t *testing.T) {
	c, server := newTestCorrelator(t, Config{})

	seen := make(map[uint32]bool)
	for i := 0; i < 100; i++ {
		p, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{})
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if seen[p.Seq()] {
			t.Fatalf("seq %d allocated twice among outstanding", p.Seq())
		}
		seen[p.Seq()] = true
		drainOne(t, server)
	}
	if c.Outstanding() != 100 {
		t.Errorf("Outstanding = %d, want 100", c.Outstanding())
	}
}

func TestExactlyOnceCompletion(t *testing.T) {
	c, server := newTestCorrelator(t, Config{Timeout: 50 * time.Millisecond})

	p, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	drainOne(t, server)

	if !c.Resolve(p.Seq(), []byte("first"), nil) {
		t.Fatal("Resolve failed")
	}
	// A duplicate response and the deadline both lose the race.
	if c.Resolve(p.Seq(), []byte("second"), nil) {
		t.Error("duplicate Resolve succeeded for a retired seq")
	}
	time.Sleep(80 * time.Millisecond)

	body, err := p.Result()
	if err != nil {
		t.Fatalf("Result err = %v", err)
	}
	if string(body) != "first" {
		t.Errorf("body = %q, want %q (first completion wins)", body, "first")
	}
}

func TestTimeout(t *testing.T) {
	lost := 0
	c, server := newTestCorrelator(t, Config{
		Timeout: 30 * time.Millisecond,
		OnLost:  func() { lost++ },
	})

	p, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	drainOne(t, server)

	if _, err := p.Await(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Await err = %v, want ErrTimeout", err)
	}
	if lost != 1 {
		t.Errorf("OnLost fired %d times, want 1", lost)
	}
	// The seq is retired; a late response is discarded.
	if c.Resolve(p.Seq(), []byte("late"), nil) {
		t.Error("late response was not discarded")
	}
}

func TestFailAll(t *testing.T) {
	c, server := newTestCorrelator(t, Config{})

	var pendings []*Pending
	for i := 0; i < 5; i++ {
		p, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		pendings = append(pendings, p)
		drainOne(t, server)
	}

	c.FailAll(nil)

	for i, p := range pendings {
		if _, err := p.Await(context.Background()); !errors.Is(err, ErrConnectionLost) {
			t.Errorf("pending %d err = %v, want ErrConnectionLost", i, err)
		}
	}
	if c.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", c.Outstanding())
	}

	// A swept correlator refuses further submissions.
	if _, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{}); !errors.Is(err, ErrConnectionLost) {
		t.Errorf("Submit after FailAll err = %v, want ErrConnectionLost", err)
	}
}

func TestAwaitContextCancel(t *testing.T) {
	c, server := newTestCorrelator(t, Config{})

	p, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	drainOne(t, server)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Await err = %v, want context.Canceled", err)
	}
	// Abandoning interest does not retire the entry; the sweep does.
	if c.Outstanding() != 1 {
		t.Errorf("Outstanding = %d, want 1", c.Outstanding())
	}
}

func TestConcurrentSubmitResolve(t *testing.T) {
	c, server := newTestCorrelator(t, Config{})

	// Echo server: resolve every request with its own seq.
	go func() {
		for {
			select {
			case data := <-server.Recv():
				f, err := protocol.DecodeFrame(data)
				if err != nil {
					return
				}
				c.Resolve(f.Seq, []byte("ok"), nil)
			case <-server.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.Submit(context.Background(), protocol.CmdGetMsg, struct{}{})
			if err != nil {
				t.Errorf("Submit: %v", err)
				return
			}
			if _, err := p.Await(context.Background()); err != nil {
				t.Errorf("Await: %v", err)
			}
		}()
	}
	wg.Wait()

	if c.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", c.Outstanding())
	}
}
