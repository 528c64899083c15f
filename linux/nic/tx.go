package nic

import (
	"github.com/pkg/errors"
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/hci"
)

// Transmit sends one Ethernet frame to the device.
//
// Frames submitted while the modem is not connected are dropped and nil is
// returned. When the transport has no room the queue is stopped and
// wimax.ErrTransportFull is returned; the caller keeps the frame and retries
// after the queue wakes.
func (n *NIC) Transmit(frame []byte) error {
	if !n.isOpen() || n.tp == nil {
		return wimax.ErrClosed
	}

	if s := n.State(); !s.Connected() {
		err := errors.Wrapf(wimax.ErrInvalidState, "transmit while %v", s)
		n.logger.Errorf("ASSERTION: %v, dropping %d bytes", err, len(frame))
		return nil
	}

	b, err := hci.Frame(hci.TxSDU, frame)
	if err != nil {
		return err
	}
	n.logger.Debugf("tx %v", ethFrame(frame))

	l := len(frame)
	err = n.submit(b, func(err error) { n.txComplete(l, err) })
	switch {
	case err == nil:
		return nil
	case errors.Cause(err) == wimax.ErrTransportFull:
		n.backpressure()
		return wimax.ErrTransportFull
	default:
		return errors.Wrap(err, "can't transmit")
	}
}

// submit hands b to the transport. Every completion, control or data, wakes
// the queue after done has run.
func (n *NIC) submit(b []byte, done wimax.SendDone) error {
	n.qmu.Lock()
	n.inflight++
	n.qmu.Unlock()

	err := n.tp.Send(b, func(err error) {
		done(err)

		n.qmu.Lock()
		defer n.qmu.Unlock()
		n.inflight--
		n.wakeLocked()
	})
	if err != nil {
		n.qmu.Lock()
		n.inflight--
		n.qmu.Unlock()
	}
	return err
}

func (n *NIC) txComplete(l int, err error) {
	if err != nil {
		n.logger.Warnf("tx failed: %v", err)
		return
	}
	n.stats.AccountTx(l)
}

// backpressure stops the queue after the transport refused a frame. With
// nothing in flight no completion is left to wake it, so it stays running.
func (n *NIC) backpressure() {
	n.qmu.Lock()
	defer n.qmu.Unlock()
	if n.inflight == 0 {
		n.logger.Debug("transport full with nothing in flight")
		return
	}
	n.stopLocked()
}

// QueueStopped reports whether frame submissions are paused.
func (n *NIC) QueueStopped() bool {
	n.qmu.Lock()
	defer n.qmu.Unlock()
	return n.stopped
}

func (n *NIC) stopQueue() {
	n.qmu.Lock()
	defer n.qmu.Unlock()
	n.stopLocked()
}

func (n *NIC) wakeQueue() {
	n.qmu.Lock()
	defer n.qmu.Unlock()
	n.wakeLocked()
}

func (n *NIC) stopLocked() {
	if n.stopped {
		return
	}
	n.stopped = true
	n.netif.StopQueue()
}

func (n *NIC) wakeLocked() {
	if !n.stopped {
		return
	}
	n.stopped = false
	n.netif.WakeQueue()
}
