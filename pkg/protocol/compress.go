package protocol

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
)

// CompressThreshold is the payload size at and above which request
// bodies are deflated before framing. Small operation bodies don't
// benefit; roster listings and long messages do.
const CompressThreshold = 1024

// ErrCompressedTooLarge reports a compressed payload whose declared
// uncompressed size exceeds MaxPayloadSize.
var ErrCompressedTooLarge = errors.New("protocol: uncompressed size exceeds limit")

// CompressPayload deflates body and prefixes the uncompressed size as
// a varint so the receiver can bound its allocation.
func CompressPayload(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	head := make([]byte, MaxVarintLen)
	n := EncodeUvarint(head, uint64(len(body)))
	buf.Write(head[:n])

	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressPayload reverses CompressPayload, refusing payloads whose
// declared size exceeds MaxPayloadSize.
func DecompressPayload(payload []byte) ([]byte, error) {
	size, n := DecodeUvarint(payload)
	if n < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if size > MaxPayloadSize {
		return nil, ErrCompressedTooLarge
	}

	r := flate.NewReader(bytes.NewReader(payload[n:]))
	defer r.Close()

	out := make([]byte, 0, size)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, io.LimitReader(r, int64(size)+1)); err != nil {
		return nil, err
	}
	if buf.Len() > int(size) {
		return nil, ErrCompressedTooLarge
	}
	return buf.Bytes(), nil
}
