// Package wire frames wire messages for storage and transport. A frame
// is a fixed 8-byte header, body length then CRC-32 of the body, both
// little endian, followed by the body. The checksum catches torn or
// corrupted records before they reach a decoder.
package wire

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

const headerSize = 8

var (
	ErrCorruptFrame = errors.New("wire: corrupt frame")
	ErrShortFrame   = errors.New("wire: short frame")
)

// Frame wraps body with the length and checksum header.
func Frame(body []byte) []byte {
	out := make([]byte, headerSize+len(body))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[4:8], crc32.ChecksumIEEE(body))
	copy(out[headerSize:], body)
	return out
}

// Unframe validates the header and returns the body. The body aliases
// data; callers that keep it must copy.
func Unframe(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, ErrShortFrame
	}
	size := binary.LittleEndian.Uint32(data[:4])
	if int(size) != len(data)-headerSize {
		return nil, ErrCorruptFrame
	}
	body := data[headerSize:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(data[4:8]) {
		return nil, ErrCorruptFrame
	}
	return body, nil
}

// ReadFrame reads one frame from a stream. io.EOF at a frame boundary
// means a clean end of stream.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortFrame
		}
		return nil, err
	}
	size := binary.LittleEndian.Uint32(header[:4])
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, ErrShortFrame
	}
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(header[4:8]) {
		return nil, ErrCorruptFrame
	}
	return body, nil
}
