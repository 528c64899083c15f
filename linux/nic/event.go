package nic

import (
	"github.com/pkg/errors"
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/hci"
)

// routeEvent forwards b verbatim to the event channel.
func (n *NIC) routeEvent(b []byte) error {
	if n.events == nil {
		return wimax.ErrChannelUnavailable
	}
	return n.events.Send(n.index, b)
}

func (n *NIC) routeLogged(b []byte) {
	if err := n.routeEvent(b); err != nil {
		n.logger.Warnf("event %v dropped: %v", describe(b), err)
	}
}

// SendControl sends a message written by user space to the device.
func (n *NIC) SendControl(b []byte) error {
	if _, err := hci.ParseMessage(b); err != nil {
		return errors.Wrap(err, "bad control message")
	}
	return n.send(b)
}

func (n *NIC) downlink(b []byte) {
	if err := n.SendControl(b); err != nil {
		n.logger.Warnf("downlink: %v", err)
	}
}

// Open is called when the interface is brought up.
func (n *NIC) Open() {
	n.wakeQueue()
	n.indicateUpDown(true)
}

// Stop is called when the interface is taken down.
func (n *NIC) Stop() {
	n.stopQueue()
	n.indicateUpDown(false)
}

func (n *NIC) indicateUpDown(up bool) {
	if n.State().Modem == wimax.ModemInit {
		return
	}
	b, err := hci.NewIfUpDown(up)
	if err != nil {
		n.logger.Error(err)
		return
	}
	n.routeLogged(b)
}

// SetHardwareAddr changes the device address. The interface must be down.
func (n *NIC) SetHardwareAddr(a wimax.HardwareAddr) error {
	if n.netif != nil && n.netif.Running() {
		return wimax.ErrBusy
	}
	if !a.Valid() {
		return errors.Wrapf(wimax.ErrInvalidAddr, "%v", a)
	}

	n.setAddr(a)
	if n.netif != nil {
		if err := n.netif.SetHardwareAddr(a); err != nil {
			return err
		}
	}

	n.cacheIdentity(a)

	b, err := hci.NewSetInfo(hci.TypeMACAddress, a.Bytes())
	if err != nil {
		return err
	}
	return n.send(b)
}
