package wimax

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// ModemStatus is the modem half of the connection state.
type ModemStatus uint32

const (
	ModemInit ModemStatus = iota
	ModemOpenOff
	ModemOpenOn
	ModemScan
	ModemConnecting
	ModemConnected
)

var modemStatusNames = [...]string{
	ModemInit:       "init",
	ModemOpenOff:    "open-off",
	ModemOpenOn:     "open-on",
	ModemScan:       "scan",
	ModemConnecting: "connecting",
	ModemConnected:  "connected",
}

func (m ModemStatus) String() string {
	if int(m) < len(modemStatusNames) {
		return modemStatusNames[m]
	}
	return fmt.Sprintf("modem(%d)", uint32(m))
}

// ConnStatus is the network-entry progress reported by the modem.
type ConnStatus uint32

const (
	ConnInit ConnStatus = iota
	ConnConnStart
	ConnAssocStart
	ConnRanging
	ConnSBC
	ConnAuth
	ConnReg
	ConnDSX
	ConnAssociated
	ConnConnComplete
	ConnDiscoStart
	ConnDiscoComplete
)

var connStatusNames = [...]string{
	ConnInit:          "init",
	ConnConnStart:     "conn-start",
	ConnAssocStart:    "assoc-start",
	ConnRanging:       "ranging",
	ConnSBC:           "sbc",
	ConnAuth:          "auth",
	ConnReg:           "reg",
	ConnDSX:           "dsx",
	ConnAssociated:    "associated",
	ConnConnComplete:  "conn-complete",
	ConnDiscoStart:    "disco-start",
	ConnDiscoComplete: "disco-complete",
}

func (c ConnStatus) String() string {
	if int(c) < len(connStatusNames) {
		return connStatusNames[c]
	}
	return fmt.Sprintf("conn(%d)", uint32(c))
}

// StateLen is the encoded size of a State.
const StateLen = 8

// State is the modem/connection status pair tracked per device.
type State struct {
	Modem ModemStatus
	Conn  ConnStatus
}

// Connected reports whether the modem is in the connected status. It is the
// only value the engine treats specially.
func (s State) Connected() bool {
	return s.Modem == ModemConnected
}

func (s State) String() string {
	return fmt.Sprintf("%v/%v", s.Modem, s.Conn)
}

// MarshalBinary encodes s as two big-endian 32-bit words.
func (s State) MarshalBinary() ([]byte, error) {
	b := make([]byte, StateLen)
	binary.BigEndian.PutUint32(b[0:4], uint32(s.Modem))
	binary.BigEndian.PutUint32(b[4:8], uint32(s.Conn))
	return b, nil
}

func (s *State) UnmarshalBinary(b []byte) error {
	if len(b) < StateLen {
		return errors.Errorf("state: need %d bytes, have %d", StateLen, len(b))
	}
	s.Modem = ModemStatus(binary.BigEndian.Uint32(b[0:4]))
	s.Conn = ConnStatus(binary.BigEndian.Uint32(b[4:8]))
	return nil
}
