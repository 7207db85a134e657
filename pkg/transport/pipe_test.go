package transport

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPipeDelivery(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	if err := a.WriteFrame(context.Background(), []byte("ping")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	select {
	case data := <-b.Recv():
		if string(data) != "ping" {
			t.Errorf("received %q, want %q", data, "ping")
		}
	case <-time.After(time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestPipeWriteCopiesBuffer(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	buf := []byte("original")
	if err := a.WriteFrame(context.Background(), buf); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	copy(buf, "mutated!")

	if data := <-b.Recv(); string(data) != "original" {
		t.Errorf("received %q, want %q", data, "original")
	}
}

func TestPipeCloseTerminatesBothEnds(t *testing.T) {
	a, b := Pipe()
	a.Close()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("peer Done not closed")
	}
	if !errors.Is(b.Err(), ErrClosed) {
		t.Errorf("peer Err = %v, want ErrClosed", b.Err())
	}
	if err := a.WriteFrame(context.Background(), []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteFrame after close err = %v, want ErrClosed", err)
	}
}

func TestPipeFailCarriesError(t *testing.T) {
	a, b := Pipe()
	boom := errors.New("cable cut")
	a.Fail(boom)

	<-b.Done()
	if !errors.Is(b.Err(), boom) {
		t.Errorf("Err = %v, want %v", b.Err(), boom)
	}
}

func TestPipeWriteHonorsContext(t *testing.T) {
	a, _ := Pipe()
	defer a.Close()

	// Fill the peer's buffer so the next write blocks.
	for i := 0; i < recvBuffer; i++ {
		if err := a.WriteFrame(context.Background(), []byte("fill")); err != nil {
			t.Fatalf("WriteFrame %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.WriteFrame(ctx, []byte("overflow")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}
