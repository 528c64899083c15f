package nic

import (
	"fmt"

	"github.com/mdlayher/ethernet"
)

// ethFrame formats as a one-line summary of an Ethernet frame. It is only
// parsed when the log entry is actually written.
type ethFrame []byte

func (f ethFrame) String() string {
	var ef ethernet.Frame
	if err := ef.UnmarshalBinary(f); err != nil {
		return fmt.Sprintf("[%d] %v", len(f), err)
	}
	return fmt.Sprintf("%v %v > %v [%d]", ef.EtherType, ef.Source, ef.Destination, len(ef.Payload))
}
