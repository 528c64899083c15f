package nic

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rigado/wimax/hci"
)

func (n *NIC) arm() error {
	if !n.isOpen() {
		return errors.New("device closed")
	}
	return n.tp.Receive(n.rxComplete)
}

// rxComplete handles one completed receive and arms the next one.
func (n *NIC) rxComplete(b []byte, err error) {
	n.dmu.RLock()
	if !n.isOpen() {
		n.dmu.RUnlock()
		return
	}
	switch {
	case err != nil:
		n.logger.Warnf("receive failed: %v", err)
	case atomic.LoadInt32(&n.mode) == modeHandshaking:
		n.handlePrepared(b)
	default:
		n.handlePkt(b)
	}
	n.dmu.RUnlock()

	if err := n.arm(); err != nil {
		n.dispatchError(errors.Wrap(err, "can't arm receive"))
	}
}

func (n *NIC) handlePkt(b []byte) {
	if len(b) == 0 {
		return
	}

	m, err := hci.ParseMessage(b)
	if err != nil {
		n.logger.Warnf("discarding message: %v", err)
		return
	}

	h, ok := n.handlers[m.Code]
	if !ok {
		n.routeLogged(b)
		return
	}
	if err := h(b, m); err != nil {
		n.logger.Warnf("%v: %v", m, err)
	}
}

func (n *NIC) handleSDU(b []byte, m hci.Message) error {
	n.receive(m.Payload)
	return nil
}

func (n *NIC) handleSDUAggr(b []byte, m hci.Message) error {
	s := hci.NewSplitter(m.Payload)
	for {
		sm, ok := s.Next()
		if !ok {
			break
		}
		n.receive(sm.Payload)
	}
	return s.Err()
}

func (n *NIC) handleModemReport(b []byte, m hci.Message) error {
	n.qos.HandleModemReport(b[:hci.HeaderSize+len(m.Payload)])
	return nil
}

func (n *NIC) handleTxFlow(b []byte, m hci.Message) error {
	flag, err := hci.FlowControl(m.Payload).FlagWErr()
	if err != nil {
		return err
	}

	switch flag {
	case hci.FlowStop:
		n.stopQueue()
	case hci.FlowResume:
		n.wakeQueue()
	default:
		return errors.Errorf("unknown flow flag %d", flag)
	}
	return nil
}

// receive hands one Ethernet frame to the network stack.
func (n *NIC) receive(p []byte) {
	f := make([]byte, len(p))
	copy(f, p)
	n.logger.Debugf("rx %v", ethFrame(f))

	n.stats.AccountRx(len(f))
	if err := n.netif.DeliverFrame(f); err != nil {
		n.logger.Warnf("frame dropped: %v", err)
	}
}
