package protocol

import (
	"errors"
	"io"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 12

	// MaxPayloadSize is the maximum payload size accepted on the wire.
	// Roster listings for very large groups stay well under this.
	MaxPayloadSize = 8 * 1024 * 1024
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHandshake FrameType = 0x00 // Connection setup
	FrameRequest   FrameType = 0x01 // Client → Server operation
	FrameResponse  FrameType = 0x02 // Server → Client reply (echoes Seq)
	FramePush      FrameType = 0x03 // Unsolicited server event
	FrameControl   FrameType = 0x04 // Heartbeat / connection control
	FrameError     FrameType = 0x05 // Transport-level error report
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHandshake:
		return "Handshake"
	case FrameRequest:
		return "Request"
	case FrameResponse:
		return "Response"
	case FramePush:
		return "Push"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional flags for frame processing.
type FrameFlags uint8

const (
	FlagCompressed FrameFlags = 0x01 // Payload is deflate compressed
	FlagEncrypted  FrameFlags = 0x02 // Reserved: payload is encrypted
	FlagFinal      FrameFlags = 0x04 // Last frame of a sharded message
)

// Has returns true if the flags contain the specified flag.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooShort = errors.New("protocol: frame shorter than header")
	ErrFrameTooLarge = errors.New("protocol: frame payload too large")
)

// Frame is a single protocol frame: header plus payload.
//
// Seq is the correlation sequence number. It is nonzero only on
// Request and Response frames; a Response carries the Seq of the
// Request it answers. Cmd identifies the logical operation and is
// echoed on the Response so the decoder can pick the body type
// without consulting the pending table.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Cmd     Command
	Seq     uint32
	Payload []byte
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, FrameHeaderSize+len(f.Payload))}
	f.EncodeTo(e)
	return e.Bytes()
}

// EncodeTo encodes the frame using the provided encoder.
func (f *Frame) EncodeTo(e *Encoder) {
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint16(uint16(f.Cmd))
	e.WriteUint32(f.Seq)
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
}

// DecodeFrame decodes a frame from bytes. The input must contain the
// full header and payload; trailing bytes are an error-free no-op for
// the caller to detect via the declared length.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, ErrFrameTooShort
	}

	d := NewDecoder(data)
	ftByte, _ := d.ReadByte()
	flagsByte, _ := d.ReadByte()
	cmdRaw, _ := d.ReadUint16()
	seq, _ := d.ReadUint32()
	length, _ := d.ReadUint32()
	ft := FrameType(ftByte)
	flags := FrameFlags(flagsByte)
	cmd := Command(cmdRaw)

	if uint64(length) > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	body, err := d.ReadBytes(int(length))
	if err != nil {
		return nil, io.ErrUnexpectedEOF
	}

	payload := make([]byte, length)
	copy(payload, body)

	return &Frame{
		Type:    ft,
		Flags:   flags,
		Cmd:     cmd,
		Seq:     seq,
		Payload: payload,
	}, nil
}

// NewRequestFrame builds a Request frame for cmd with the given
// correlation sequence and an already-marshaled body. Bodies over
// CompressThreshold are deflated and flagged.
func NewRequestFrame(cmd Command, seq uint32, body []byte) (*Frame, error) {
	f := &Frame{Type: FrameRequest, Cmd: cmd, Seq: seq, Payload: body}
	if len(body) >= CompressThreshold {
		compressed, err := CompressPayload(body)
		if err != nil {
			return nil, err
		}
		f.Flags |= FlagCompressed
		f.Payload = compressed
	}
	return f, nil
}

// Body returns the frame payload with compression undone.
func (f *Frame) Body() ([]byte, error) {
	if !f.Flags.Has(FlagCompressed) {
		return f.Payload, nil
	}
	return DecompressPayload(f.Payload)
}
