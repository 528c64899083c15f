package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// FlowControl is the payload of an SDUTxFlow event.
type FlowControl []byte

func (p FlowControl) FlagWErr() (byte, error) {
	return getByte(p, 0, FlowResume)
}

func (p FlowControl) Flag() byte {
	v, _ := p.FlagWErr()
	return v
}

// InfoResult is the payload of a GetInfoResult event: a list of TLVs.
type InfoResult []byte

// FirstTLVWErr decodes the leading TLV.
func (p InfoResult) FirstTLVWErr() (TLV, error) {
	if len(p) < 2 {
		return TLV{}, errors.Wrapf(ErrTruncatedInput, "info result too short [%d]", len(p))
	}
	t, _, err := DecodeTLV(p)
	return t, err
}

// MACAddressWErr returns the address carried by the leading TLV. ok is false
// when the result carries some other information.
func (p InfoResult) MACAddressWErr() (mac []byte, ok bool, err error) {
	t, err := p.FirstTLVWErr()
	if err != nil {
		return nil, false, err
	}
	if t.Type != TypeMACAddress {
		return nil, false, nil
	}
	if t.Len() != MACAddressLen {
		return nil, true, errors.Errorf("invalid information result T/L [%x/%d]", t.Type, t.Len())
	}
	return t.Value, true, nil
}

// NewGetInfo requests the listed information types. The request carries the
// bare types, without length or value.
func NewGetInfo(types ...byte) ([]byte, error) {
	return Frame(GetInfo, types)
}

// NewSetInfo sets one information item on the device.
func NewSetInfo(typ byte, value []byte) ([]byte, error) {
	tlv, err := EncodeTLV(typ, value)
	if err != nil {
		return nil, err
	}
	return Frame(SetInfo, tlv)
}

// NewSetCapability announces the capability mask.
func NewSetCapability(mask uint32) ([]byte, error) {
	v := make([]byte, CapabilityLen)
	binary.BigEndian.PutUint32(v, mask)
	return NewSetInfo(TypeCapability, v)
}

// NewIfUpDown builds the interface up/down indication.
func NewIfUpDown(up bool) ([]byte, error) {
	v := IfDown
	if up {
		v = IfUp
	}
	return Frame(IfUpDown, []byte{v})
}

// get or default
func getByte(b []byte, i int, def byte) (byte, error) {
	if i < 0 || i >= len(b) {
		return def, errors.Wrapf(ErrTruncatedInput, "index %d, length %d", i, len(b))
	}
	return b[i], nil
}
