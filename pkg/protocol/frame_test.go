package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{
			name:  "request with body",
			frame: Frame{Type: FrameRequest, Cmd: CmdLogin, Seq: 1, Payload: []byte{0x01, 0x02, 0x03}},
		},
		{
			name:  "response echoes seq",
			frame: Frame{Type: FrameResponse, Cmd: CmdLogin, Seq: 0xDEADBEEF, Payload: []byte("ok")},
		},
		{
			name:  "push has no seq",
			frame: Frame{Type: FramePush, Payload: []byte("event")},
		},
		{
			name:  "control empty payload",
			frame: Frame{Type: FrameControl, Cmd: CmdHeartbeat},
		},
		{
			name:  "flags survive",
			frame: Frame{Type: FrameRequest, Flags: FlagCompressed | FlagFinal, Cmd: CmdSendGroupMsg, Seq: 7, Payload: []byte{0xFF}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeFrame(tt.frame.Encode())
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if decoded.Type != tt.frame.Type {
				t.Errorf("Type = %v, want %v", decoded.Type, tt.frame.Type)
			}
			if decoded.Flags != tt.frame.Flags {
				t.Errorf("Flags = %v, want %v", decoded.Flags, tt.frame.Flags)
			}
			if decoded.Cmd != tt.frame.Cmd {
				t.Errorf("Cmd = %v, want %v", decoded.Cmd, tt.frame.Cmd)
			}
			if decoded.Seq != tt.frame.Seq {
				t.Errorf("Seq = %d, want %d", decoded.Seq, tt.frame.Seq)
			}
			if !bytes.Equal(decoded.Payload, tt.frame.Payload) {
				t.Errorf("Payload = %x, want %x", decoded.Payload, tt.frame.Payload)
			}
		})
	}
}

func TestEncodeToReusesEncoder(t *testing.T) {
	e := NewEncoder()
	frames := []*Frame{
		{Type: FrameRequest, Cmd: CmdLogin, Seq: 1, Payload: []byte("first")},
		{Type: FrameResponse, Cmd: CmdLogin, Seq: 1, Payload: []byte("second, longer payload")},
	}
	for _, want := range frames {
		e.Reset()
		want.EncodeTo(e)
		if e.Len() != FrameHeaderSize+len(want.Payload) {
			t.Fatalf("encoded length = %d, want %d", e.Len(), FrameHeaderSize+len(want.Payload))
		}
		got, err := DecodeFrame(e.Bytes())
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		if got.Type != want.Type || got.Cmd != want.Cmd || got.Seq != want.Seq {
			t.Errorf("header = %+v, want %+v", got, want)
		}
		if !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("payload = %q, want %q", got.Payload, want.Payload)
		}
	}
}

func TestDecoderPrimitives(t *testing.T) {
	e := NewEncoder()
	e.WriteByte(0x7F)
	e.WriteUint16(0xBEEF)
	e.WriteUint32(0xDEADBEEF)
	e.WriteUvarint(300)
	e.WriteLenBytes([]byte("hello"))

	d := NewDecoder(e.Bytes())
	if b, err := d.ReadByte(); err != nil || b != 0x7F {
		t.Errorf("ReadByte = %x, %v", b, err)
	}
	if v, err := d.ReadUint16(); err != nil || v != 0xBEEF {
		t.Errorf("ReadUint16 = %x, %v", v, err)
	}
	if v, err := d.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadUint32 = %x, %v", v, err)
	}
	if v, err := d.ReadUvarint(); err != nil || v != 300 {
		t.Errorf("ReadUvarint = %d, %v", v, err)
	}
	if b, err := d.ReadLenBytes(); err != nil || string(b) != "hello" {
		t.Errorf("ReadLenBytes = %q, %v", b, err)
	}
	if d.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining())
	}
	if _, err := d.ReadByte(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadByte past end err = %v, want ErrUnexpectedEOF", err)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	t.Run("short header", func(t *testing.T) {
		if _, err := DecodeFrame([]byte{0x01, 0x00}); !errors.Is(err, ErrFrameTooShort) {
			t.Errorf("err = %v, want ErrFrameTooShort", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		f := Frame{Type: FrameRequest, Cmd: CmdLogin, Seq: 1, Payload: []byte("truncated body")}
		data := f.Encode()
		if _, err := DecodeFrame(data[:len(data)-3]); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("err = %v, want ErrUnexpectedEOF", err)
		}
	})

	t.Run("declared length over limit", func(t *testing.T) {
		data := make([]byte, FrameHeaderSize)
		data[0] = byte(FrameRequest)
		// Length field: MaxPayloadSize + 1.
		length := uint32(MaxPayloadSize + 1)
		data[8] = byte(length >> 24)
		data[9] = byte(length >> 16)
		data[10] = byte(length >> 8)
		data[11] = byte(length)
		if _, err := DecodeFrame(data); !errors.Is(err, ErrFrameTooLarge) {
			t.Errorf("err = %v, want ErrFrameTooLarge", err)
		}
	})
}

func TestNewRequestFrameCompression(t *testing.T) {
	t.Run("small body stays plain", func(t *testing.T) {
		body := []byte("hello")
		f, err := NewRequestFrame(CmdSendPrivateMsg, 1, body)
		if err != nil {
			t.Fatalf("NewRequestFrame: %v", err)
		}
		if f.Flags.Has(FlagCompressed) {
			t.Error("small body was compressed")
		}
		got, err := f.Body()
		if err != nil {
			t.Fatalf("Body: %v", err)
		}
		if !bytes.Equal(got, body) {
			t.Errorf("Body = %q, want %q", got, body)
		}
	})

	t.Run("large body is compressed and recovered", func(t *testing.T) {
		body := bytes.Repeat([]byte("roster entry "), 1000)
		f, err := NewRequestFrame(CmdFriendList, 2, body)
		if err != nil {
			t.Fatalf("NewRequestFrame: %v", err)
		}
		if !f.Flags.Has(FlagCompressed) {
			t.Fatal("large body was not compressed")
		}
		if len(f.Payload) >= len(body) {
			t.Errorf("compressed payload %d bytes, original %d", len(f.Payload), len(body))
		}

		decoded, err := DecodeFrame(f.Encode())
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		got, err := decoded.Body()
		if err != nil {
			t.Fatalf("Body: %v", err)
		}
		if !bytes.Equal(got, body) {
			t.Error("round-tripped body differs from original")
		}
	})
}

func TestDecompressPayloadRejectsOversize(t *testing.T) {
	head := make([]byte, MaxVarintLen)
	n := EncodeUvarint(head, uint64(MaxPayloadSize)+1)
	if _, err := DecompressPayload(head[:n]); !errors.Is(err, ErrCompressedTooLarge) {
		t.Errorf("err = %v, want ErrCompressedTooLarge", err)
	}
}

func TestCommandString(t *testing.T) {
	if got := CmdSendGroupMsg.String(); got != "SendGroupMsg" {
		t.Errorf("String() = %q, want %q", got, "SendGroupMsg")
	}
	if got := Command(0xFFFF).String(); got != "Unknown" {
		t.Errorf("String() = %q, want %q", got, "Unknown")
	}
}
