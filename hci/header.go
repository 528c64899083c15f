package hci

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Message is one HCI message. Payload borrows the buffer it was parsed from.
type Message struct {
	Code    uint16
	Payload []byte
}

func (m Message) String() string {
	return fmt.Sprintf("%v(%d)", CodeName(m.Code), len(m.Payload))
}

// CodeName returns a printable name for code.
func CodeName(code uint16) string {
	if n, ok := codeNames[code]; ok {
		return n
	}
	return fmt.Sprintf("0x%04X", code)
}

// EncodeHeader packs code and payload length big-endian.
func EncodeHeader(code, payloadLen uint16) [HeaderSize]byte {
	var h [HeaderSize]byte
	binary.BigEndian.PutUint16(h[0:2], code)
	binary.BigEndian.PutUint16(h[2:4], payloadLen)
	return h
}

// DecodeHeader returns the code and the declared payload length.
func DecodeHeader(b []byte) (code, declaredLen uint16, err error) {
	if len(b) < HeaderSize {
		return 0, 0, errors.Wrapf(ErrTruncatedInput, "header needs %d bytes, have %d", HeaderSize, len(b))
	}
	return binary.BigEndian.Uint16(b[0:2]), binary.BigEndian.Uint16(b[2:4]), nil
}

// Frame returns payload prefixed with its header.
func Frame(code uint16, payload []byte) ([]byte, error) {
	if len(payload) > 0xFFFF {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d bytes", len(payload))
	}
	h := EncodeHeader(code, uint16(len(payload)))
	b := make([]byte, HeaderSize+len(payload))
	copy(b, h[:])
	copy(b[HeaderSize:], payload)
	return b, nil
}

// ParseMessage decodes the message at the start of b. Bytes after the
// declared payload are ignored; a declared length larger than what b holds
// is an error.
func ParseMessage(b []byte) (Message, error) {
	code, l, err := DecodeHeader(b)
	if err != nil {
		return Message{}, err
	}
	if need := HeaderSize + int(l); len(b) < need {
		return Message{}, errors.Wrapf(ErrTruncatedInput, "invalid length [%d/%d]", need, len(b))
	}
	return Message{Code: code, Payload: b[HeaderSize : HeaderSize+int(l)]}, nil
}
