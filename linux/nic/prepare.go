package nic

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/hci"
)

func (n *NIC) capabilityMask() uint32 {
	mask := hci.CapMultiCS | hci.CapWiMAX
	if n.caps.QoS {
		mask |= hci.CapQoS
	}
	if n.caps.Aggregation {
		mask |= hci.CapAggregation
	}
	return mask
}

// prepareDevice asks for the hardware address and announces the
// capabilities. Neither request waits for an answer.
func (n *NIC) prepareDevice() error {
	b, err := hci.NewGetInfo(hci.TypeMACAddress)
	if err != nil {
		return err
	}
	if err := n.send(b); err != nil {
		return errors.Wrap(err, "can't request hardware address")
	}

	mask := n.capabilityMask()
	if b, err = hci.NewSetCapability(mask); err != nil {
		return err
	}
	if err := n.send(b); err != nil {
		return errors.Wrap(err, "can't set capability")
	}

	n.logger.Infof("set capability 0x%08X", mask)
	return nil
}

// Handshaking reports whether the device has not reported its address yet.
func (n *NIC) Handshaking() bool {
	return atomic.LoadInt32(&n.mode) == modeHandshaking
}

// handlePrepared waits for the hardware address. Everything else received
// meanwhile is routed to the event channel.
func (n *NIC) handlePrepared(b []byte) {
	if len(b) == 0 {
		return
	}

	m, err := hci.ParseMessage(b)
	if err != nil {
		n.logger.Warnf("handshake: %v", err)
		return
	}

	if m.Code == hci.GetInfoResult {
		mac, ok, err := hci.InfoResult(m.Payload).MACAddressWErr()
		if err != nil {
			n.logger.Warnf("handshake: %v", err)
			return
		}
		if ok {
			a, _ := wimax.HardwareAddrFromBytes(mac)
			n.applyIdentity(a)
			atomic.StoreInt32(&n.mode, modeSteady)
			return
		}
	}

	n.routeLogged(b)
}

func (n *NIC) applyIdentity(a wimax.HardwareAddr) {
	n.logger.Infof("hardware address %v -> %v", n.HardwareAddr(), a)
	n.setAddr(a)

	if err := n.netif.SetHardwareAddr(a); err != nil {
		n.logger.Warnf("can't set interface address: %v", err)
	}
	n.cacheIdentity(a)
}

func (n *NIC) cacheIdentity(a wimax.HardwareAddr) {
	if n.identity != nil {
		if err := n.identity.Store(n.Name(), a); err != nil {
			n.logger.Warnf("can't cache identity: %v", err)
		}
	}
}
