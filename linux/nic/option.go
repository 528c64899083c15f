package nic

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

var _ wimax.DeviceOption = (*NIC)(nil)

// SetDeviceIndex sets N in wmN.
func (n *NIC) SetDeviceIndex(idx int) error {
	if idx < 0 || idx > 0xFFFF {
		return errors.Errorf("device index %d out of range", idx)
	}
	n.index = idx
	return nil
}

// SetCapabilities selects the optional features announced in the handshake.
func (n *NIC) SetCapabilities(c wimax.Capabilities) error {
	n.caps = c
	return nil
}

// SetErrorHandler ...
func (n *NIC) SetErrorHandler(handler func(error)) error {
	n.errorHandler = handler
	return nil
}

func (n *NIC) SetNetIf(ni wimax.NetIf) error {
	n.netif = ni
	return nil
}

func (n *NIC) SetQoS(q wimax.QoS) error {
	if q == nil {
		q = wimax.NopQoS{}
	}
	n.qos = q
	return nil
}

func (n *NIC) SetStats(s wimax.Stats) error {
	n.stats = s
	return nil
}

func (n *NIC) SetEventChannel(ec wimax.EventChannel) error {
	n.events = ec
	return nil
}

func (n *NIC) SetIdentityCache(c wimax.IdentityCache) error {
	n.identity = c
	return nil
}

// SetTransport uses an already open transport.
func (n *NIC) SetTransport(t wimax.Transport) error {
	n.transport = transportSpec{explicit: t}
	return nil
}

// SetTransportSocket sets the TCP bridge address.
func (n *NIC) SetTransportSocket(addr string, timeout time.Duration) error {
	n.transport = transportSpec{
		socket: &transportSocket{addr, timeout},
	}
	return nil
}

// SetTransportUart sets the serial port path. A zero baud keeps the default.
func (n *NIC) SetTransportUart(path string, baud uint) error {
	n.transport = transportSpec{
		uart: &transportUart{path, baud},
	}
	return nil
}
