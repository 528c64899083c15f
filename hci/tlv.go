package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// TLV is one type-length-value triple. Value borrows the decoded buffer.
type TLV struct {
	Type  byte
	Value []byte
}

// Len is the length of the value.
func (t TLV) Len() int { return len(t.Value) }

// DecodeTLV reads the TLV at the start of b and returns it together with the
// number of bytes it occupies.
//
// A length byte of 0x82 announces the extended form: the real length follows
// in two big-endian bytes. Any other value is the length itself.
func DecodeTLV(b []byte) (TLV, int, error) {
	if len(b) < 2 {
		return TLV{}, 0, errors.Wrapf(ErrTruncatedInput, "tlv header needs 2 bytes, have %d", len(b))
	}

	hl, l := 2, int(b[1])
	if b[1] == tlvExtendedLen {
		if len(b) < 4 {
			return TLV{}, 0, errors.Wrapf(ErrTruncatedInput, "extended tlv header needs 4 bytes, have %d", len(b))
		}
		hl, l = 4, int(binary.BigEndian.Uint16(b[2:4]))
	}

	if len(b)-hl < l {
		return TLV{}, 0, errors.Wrapf(ErrTruncatedInput, "tlv 0x%02x value needs %d bytes, have %d", b[0], l, len(b)-hl)
	}
	return TLV{Type: b[0], Value: b[hl : hl+l]}, hl + l, nil
}

// EncodeTLV encodes typ and value, using the short form for values of up to
// 0x81 bytes.
func EncodeTLV(typ byte, value []byte) ([]byte, error) {
	switch l := len(value); {
	case l <= tlvMaxShortLen:
		b := make([]byte, 2+l)
		b[0], b[1] = typ, byte(l)
		copy(b[2:], value)
		return b, nil

	case l <= 0xFFFF:
		b := make([]byte, 4+l)
		b[0], b[1] = typ, tlvExtendedLen
		binary.BigEndian.PutUint16(b[2:4], uint16(l))
		copy(b[4:], value)
		return b, nil

	default:
		return nil, errors.Wrapf(ErrValueTooLarge, "tlv 0x%02x: %d bytes", typ, l)
	}
}
