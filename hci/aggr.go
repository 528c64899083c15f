package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Splitter walks the RxSDU messages packed into an RxSDUAggr payload.
//
//	for s := NewSplitter(p); ; {
//		m, ok := s.Next()
//		if !ok {
//			break
//		}
//		...
//	}
//	if err := s.Err(); err != nil { ... }
//
// Each sub-message is a header and payload, the payload padded to 4 bytes,
// followed by 4 reserved bytes. Messages yielded before an error remain
// valid.
type Splitter struct {
	b   []byte
	err error
}

// NewSplitter returns a Splitter over payload. The payload is borrowed.
func NewSplitter(payload []byte) *Splitter {
	return &Splitter{b: payload}
}

// Next returns the next sub-message. It returns false at the end of the
// batch or on the first malformed sub-message.
func (s *Splitter) Next() (Message, bool) {
	if len(s.b) == 0 || s.err != nil {
		return Message{}, false
	}

	if len(s.b) < HeaderSize {
		s.fail(errors.Wrapf(ErrMalformedBatch, "%d trailing bytes", len(s.b)))
		return Message{}, false
	}

	code := binary.BigEndian.Uint16(s.b[0:2])
	if code != RxSDU {
		s.fail(errors.Wrapf(ErrMalformedBatch, "wrong cmd_evt(0x%04X)", code))
		return Message{}, false
	}

	l := int(binary.BigEndian.Uint16(s.b[2:4]))
	if len(s.b)-HeaderSize < l {
		s.fail(errors.Wrapf(ErrMalformedBatch, "sub-frame needs %d bytes, have %d", l, len(s.b)-HeaderSize))
		return Message{}, false
	}
	m := Message{Code: code, Payload: s.b[HeaderSize : HeaderSize+l]}

	adv := HeaderSize + padded(l) + aggrReserved
	if adv > len(s.b) {
		// The remaining length would go negative. m is complete, hand it
		// out and report the overrun afterwards.
		s.fail(errors.Wrapf(ErrMalformedBatch, "remaining length %d", len(s.b)-adv))
		return m, true
	}
	s.b = s.b[adv:]
	return m, true
}

// Err returns the error that ended the iteration, if any.
func (s *Splitter) Err() error {
	return s.err
}

func (s *Splitter) fail(err error) {
	s.err = err
	s.b = nil
}

func padded(l int) int {
	if r := l % aggrAlign; r != 0 {
		return l + aggrAlign - r
	}
	return l
}
