package nic

import (
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/hci"
)

// State returns the connection state.
func (n *NIC) State() wimax.State {
	n.smu.RLock()
	defer n.smu.RUnlock()
	return n.state
}

// SetState records a connection state reported by the management plane.
// Entering the connected status raises the link, leaving it drops the link
// and releases QoS resources. Every change is announced with an FSMUpdate
// event; repeating the current state does nothing.
func (n *NIC) SetState(s wimax.State) {
	n.fmu.Lock()
	defer n.fmu.Unlock()

	old := n.State()
	if old == s {
		return
	}

	n.smu.Lock()
	n.state = s
	n.smu.Unlock()

	switch {
	case s.Connected():
		n.netif.LinkUp()
	case old.Connected():
		n.netif.LinkDown()
		n.qos.ReleaseAll()
	}
	n.logger.Infof("state %v -> %v", old, s)

	p, _ := s.MarshalBinary()
	b, err := hci.Frame(hci.FSMUpdate, p)
	if err != nil {
		n.logger.Error(err)
		return
	}
	n.routeLogged(b)
}

// resetState returns to the initial state without side effects.
func (n *NIC) resetState() {
	n.fmu.Lock()
	defer n.fmu.Unlock()

	n.smu.Lock()
	n.state = wimax.State{}
	n.smu.Unlock()
}
