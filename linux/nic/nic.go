// Package nic is the host side of a WiMAX device: it negotiates with the
// firmware, moves Ethernet frames between the network interface and the
// device, and tracks the connection state.
package nic

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/hci"
	"github.com/rigado/wimax/stats"
)

type handlerFn func(b []byte, m hci.Message) error

// rx modes
const (
	modeHandshaking int32 = iota
	modeSteady
)

// New returns a device configured with opts. Init attaches it.
func New(opts ...wimax.Option) (*NIC, error) {
	n := &NIC{
		qos:      wimax.NopQoS{},
		handlers: map[uint16]handlerFn{},
		addr:     wimax.DefaultHardwareAddr,
		done:     make(chan struct{}),
	}
	if err := n.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't set options")
	}
	if n.stats == nil {
		n.stats = stats.New(n.Name())
	}
	n.logger = wimax.GetLogger().ChildLogger(map[string]interface{}{"dev": n.Name()})

	return n, nil
}

// NIC is one attached device.
type NIC struct {
	index int
	caps  wimax.Capabilities

	transport transportSpec
	tp        wimax.Transport

	netif    wimax.NetIf
	qos      wimax.QoS
	stats    wimax.Stats
	events   wimax.EventChannel
	identity wimax.IdentityCache

	errorHandler func(error)

	handlers map[uint16]handlerFn
	mode     int32
	dmu      sync.RWMutex // held while dispatching

	amu  sync.RWMutex
	addr wimax.HardwareAddr

	// fmu serializes transitions, smu guards reads of state.
	fmu   sync.Mutex
	smu   sync.RWMutex
	state wimax.State

	qmu      sync.Mutex
	stopped  bool
	inflight int

	evRef bool

	muClose sync.Mutex
	done    chan struct{}

	logger wimax.Logger
}

// Name returns the interface name, wmN.
func (n *NIC) Name() string {
	return fmt.Sprintf("wm%d", n.index)
}

func (n *NIC) Index() int {
	return n.index
}

// Stats returns the counters frames are accounted to.
func (n *NIC) Stats() wimax.Stats {
	return n.stats
}

// Option applies opts in order.
func (n *NIC) Option(opts ...wimax.Option) error {
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return err
		}
	}
	return nil
}

// Init attaches the device: it opens the transport, starts receiving in
// handshake mode and sends the handshake requests. The handshake completes
// asynchronously.
func (n *NIC) Init() error {
	if n.netif == nil {
		return errors.New("no network interface configured")
	}

	n.handlers[hci.RxSDU] = n.handleSDU
	n.handlers[hci.SDUTxFlow] = n.handleTxFlow
	if n.caps.Aggregation {
		n.handlers[hci.RxSDUAggr] = n.handleSDUAggr
	}
	if n.caps.QoS {
		n.handlers[hci.ModemReport] = n.handleModemReport
	}

	var err error
	n.tp, err = getTransport(n.transport)
	if err != nil {
		return errors.Wrap(err, "can't open transport")
	}

	if n.identity != nil {
		if a, err := n.identity.Load(n.Name()); err == nil {
			n.logger.Infof("cached address %v", a)
			n.setAddr(a)
		}
	}
	if err := n.netif.SetHardwareAddr(n.HardwareAddr()); err != nil {
		n.logger.Warnf("can't set interface address: %v", err)
	}

	if n.events != nil {
		if err := n.events.Acquire(); err != nil {
			n.logger.Warnf("events disabled: %v", err)
		} else {
			n.evRef = true
			n.events.Handle(n.index, n.downlink)
		}
	}

	// no carrier until the modem reports a connection
	n.netif.LinkDown()

	atomic.StoreInt32(&n.mode, modeHandshaking)
	if err := n.arm(); err != nil {
		n.Close()
		return errors.Wrap(err, "can't start receiving")
	}

	if err := n.prepareDevice(); err != nil {
		n.Close()
		return err
	}
	return nil
}

// Close detaches the device. No message is dispatched after Close returns.
func (n *NIC) Close() error {
	n.muClose.Lock()
	defer n.muClose.Unlock()

	select {
	case <-n.done:
		return nil
	default:
		close(n.done)
	}

	// wait for a dispatch in progress
	n.dmu.Lock()
	n.dmu.Unlock()

	n.resetState()
	n.qos.ReleaseAll()

	if n.events != nil && n.evRef {
		n.events.Unhandle(n.index)
		n.events.Release()
		n.evRef = false
	}

	n.setAddr(wimax.DefaultHardwareAddr)

	if n.tp == nil {
		return nil
	}
	return errors.Wrap(n.tp.Close(), "can't close transport")
}

func (n *NIC) isOpen() bool {
	select {
	case <-n.done:
		return false
	default:
		return true
	}
}

// HardwareAddr returns the current device identity.
func (n *NIC) HardwareAddr() wimax.HardwareAddr {
	n.amu.RLock()
	defer n.amu.RUnlock()
	return n.addr
}

func (n *NIC) setAddr(a wimax.HardwareAddr) {
	n.amu.Lock()
	defer n.amu.Unlock()
	n.addr = a
}

// send submits a control message. Completion failures are only logged.
func (n *NIC) send(b []byte) error {
	if n.tp == nil || !n.isOpen() {
		return wimax.ErrClosed
	}
	return n.submit(b, func(err error) {
		if err != nil {
			n.logger.Warnf("%v: %v", describe(b), err)
		}
	})
}

func (n *NIC) dispatchError(e error) {
	switch {
	case n.errorHandler == nil:
		n.logger.Error(e)
	case !n.isOpen():
		n.logger.Info("closing: ", e)
	default:
		n.errorHandler(e)
	}
}

func describe(b []byte) string {
	m, err := hci.ParseMessage(b)
	if err != nil {
		return fmt.Sprintf("% X", b)
	}
	return m.String()
}
