// Package protocol implements the Mirage client wire protocol.
//
// Every message exchanged with the server is a frame: a fixed 12-byte
// header followed by a payload. The header carries the frame type, flags,
// the command code of the operation, and the correlation sequence number
// that ties a response back to the request that produced it.
//
// # Wire Format
//
//	┌──────────┬────────┬─────────────────┬──────────────────────┐
//	│ Type     │ Flags  │ Command         │ Sequence             │
//	│ (1 byte) │ (1 b)  │ (2 B, big-end.) │ (4 bytes, big-end.)  │
//	├──────────┴────────┴─────────────────┴──────────────────────┤
//	│ Payload Length (4 bytes, big-endian)                       │
//	├────────────────────────────────────────────────────────────┤
//	│ Payload (variable)                                         │
//	└────────────────────────────────────────────────────────────┘
//
// # Frame Types
//
//   - FrameHandshake (0x00): connection setup before authentication
//   - FrameRequest   (0x01): client → server operation
//   - FrameResponse  (0x02): server → client reply, echoing Sequence
//   - FramePush      (0x03): unsolicited server event, Sequence zero
//   - FrameControl   (0x04): heartbeat and connection control
//   - FrameError     (0x05): transport-level error report
//
// # Payload Encoding
//
// Payload bodies are CBOR maps (fxamacker/cbor). The frame layer is
// agnostic to body shape; Marshal and Unmarshal wrap the configured
// CBOR modes. Payloads larger than CompressThreshold are deflated and
// carry FlagCompressed, with the uncompressed size varint-prefixed so
// the decoder can bound its allocation.
//
// Sequence numbers are allocated by the request correlator; pushes and
// control frames use sequence zero and are never correlated.
package protocol
