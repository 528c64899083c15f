package nic

import (
	"fmt"
	"time"

	"github.com/rigado/wimax"
	"github.com/rigado/wimax/transport"
)

type transportSocket struct {
	addr    string
	timeout time.Duration
}

type transportUart struct {
	path string
	baud uint
}

type transportSpec struct {
	explicit wimax.Transport
	socket   *transportSocket
	uart     *transportUart
}

func getTransport(t transportSpec) (wimax.Transport, error) {
	switch {
	case t.explicit != nil:
		return t.explicit, nil

	case t.socket != nil:
		return transport.NewSocket(t.socket.addr, t.socket.timeout)

	case t.uart != nil:
		so := transport.DefaultSerialOptions()
		so.PortName = t.uart.path
		if t.uart.baud != 0 {
			so.BaudRate = t.uart.baud
		}
		return transport.NewSerial(so)

	default:
		return nil, fmt.Errorf("no valid transport found")
	}
}
