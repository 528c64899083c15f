package wimax

import (
	"net"

	"github.com/pkg/errors"
)

// HardwareAddr is the 6-byte Ethernet address of a device.
type HardwareAddr [6]byte

// DefaultHardwareAddr is assigned at attach, before the device reports its own.
var DefaultHardwareAddr = HardwareAddr{0x00, 0x0a, 0x3b, 0xf0, 0x01, 0x30}

// ParseHardwareAddr parses a colon or dash separated 6-byte address.
func ParseHardwareAddr(s string) (HardwareAddr, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return HardwareAddr{}, errors.Wrapf(err, "can't parse %q", s)
	}
	return HardwareAddrFromBytes(hw)
}

// HardwareAddrFromBytes copies b into a HardwareAddr. b must be 6 bytes long.
func HardwareAddrFromBytes(b []byte) (HardwareAddr, error) {
	var a HardwareAddr
	if len(b) != len(a) {
		return a, errors.Wrapf(ErrInvalidAddr, "length %d", len(b))
	}
	copy(a[:], b)
	return a, nil
}

func (a HardwareAddr) String() string {
	return net.HardwareAddr(a[:]).String()
}

func (a HardwareAddr) Bytes() []byte {
	b := make([]byte, len(a))
	copy(b, a[:])
	return b
}

// Valid reports whether a can be assigned to an interface: not all zeros and
// not multicast.
func (a HardwareAddr) Valid() bool {
	return a != HardwareAddr{} && a[0]&0x01 == 0
}
