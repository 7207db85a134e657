package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Default endpoint and timing for the Mirage gateway.
const (
	// DefaultEndpoint is the gateway the client connects to unless the
	// configuration overrides the remote address.
	DefaultEndpoint = "wss://gw.mirageim.net:8080/link"

	// DefaultHandshakeTimeout bounds the WebSocket dial.
	DefaultHandshakeTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds a single frame write.
	DefaultWriteTimeout = 10 * time.Second

	// recvBuffer is the inbound frame channel capacity. The session
	// drains this on its processing loop; the buffer absorbs bursts of
	// pushes without stalling the socket reader.
	recvBuffer = 256
)

// WSConfig configures a WebSocket transport.
type WSConfig struct {
	// Endpoint is the gateway URL (default DefaultEndpoint).
	Endpoint string

	// HandshakeTimeout bounds the dial (default DefaultHandshakeTimeout).
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write (default DefaultWriteTimeout).
	WriteTimeout time.Duration

	// Logger is used for connection lifecycle logging. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// WSTransport is a Transport over one WebSocket connection.
type WSTransport struct {
	conn     *websocket.Conn
	writeMu  chan struct{} // capacity-1 semaphore so writes honor ctx
	recv     chan []byte
	term     *terminal
	logger   *slog.Logger
	endpoint string
	timeout  time.Duration
}

// DialWS connects to the gateway and starts the read loop.
func DialWS(ctx context.Context, config WSConfig) (*WSTransport, error) {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	handshake := config.HandshakeTimeout
	if handshake == 0 {
		handshake = DefaultHandshakeTimeout
	}
	writeTimeout := config.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = DefaultWriteTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshake}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", endpoint, err)
	}

	t := &WSTransport{
		conn:     conn,
		writeMu:  make(chan struct{}, 1),
		recv:     make(chan []byte, recvBuffer),
		term:     newTerminal(),
		logger:   logger.With("endpoint", endpoint),
		endpoint: endpoint,
		timeout:  writeTimeout,
	}
	go t.readLoop()
	return t, nil
}

// readLoop pumps binary messages into the receive channel until the
// connection dies. Text and control messages from the peer are
// ignored; the protocol is binary-only.
func (t *WSTransport) readLoop() {
	defer close(t.recv)

	for {
		kind, msg, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				t.logger.Debug("read error", "error", err)
			}
			t.term.fail(err)
			t.conn.Close()
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}

		select {
		case t.recv <- msg:
		case <-t.term.done:
			return
		}
	}
}

// WriteFrame writes one encoded frame as a binary message.
func (t *WSTransport) WriteFrame(ctx context.Context, frame []byte) error {
	select {
	case t.writeMu <- struct{}{}:
	case <-t.term.done:
		return t.wrapTerminal()
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.writeMu }()

	select {
	case <-t.term.done:
		return t.wrapTerminal()
	default:
	}

	t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	if err := t.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.term.fail(err)
		t.conn.Close()
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

func (t *WSTransport) wrapTerminal() error {
	if err := t.term.Err(); err != nil && err != ErrClosed {
		return fmt.Errorf("transport: %w", err)
	}
	return ErrClosed
}

// Recv returns the inbound frame channel.
func (t *WSTransport) Recv() <-chan []byte { return t.recv }

// Done is closed when the connection has terminated.
func (t *WSTransport) Done() <-chan struct{} { return t.term.Done() }

// Err returns the terminal error after Done.
func (t *WSTransport) Err() error { return t.term.Err() }

// Close drops the connection without a close handshake. The remote
// end learns of the loss from its own read error.
func (t *WSTransport) Close() error {
	if t.term.fail(ErrClosed) {
		return t.conn.Close()
	}
	return nil
}

// RemoteAddr returns the remote endpoint address.
func (t *WSTransport) RemoteAddr() string {
	if addr := t.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return t.endpoint
}
