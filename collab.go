package wimax

// SendDone is called once a transmit submission has been written (err == nil)
// or has failed. It may run on a transport goroutine.
type SendDone func(err error)

// ReceiveDone delivers one received HCI message, or a transport failure.
// It may run on a transport goroutine.
type ReceiveDone func(b []byte, err error)

// Transport is the physical link to the device firmware.
// Both calls are non-blocking submissions that complete via callback.
type Transport interface {
	// Send submits b. It returns ErrTransportFull on backpressure, in which
	// case done is never called and b stays with the caller.
	Send(b []byte, done SendDone) error

	// Receive arms the next receive. done is called exactly once.
	Receive(done ReceiveDone) error

	Close() error
}

// NetIf is the network-interface lifecycle collaborator.
type NetIf interface {
	// DeliverFrame injects a received Ethernet frame into the network stack.
	DeliverFrame(b []byte) error

	LinkUp()
	LinkDown()

	// StopQueue and WakeQueue pause and resume frame submissions.
	StopQueue()
	WakeQueue()

	// SetHardwareAddr keeps the interface copy of the address in sync.
	SetHardwareAddr(HardwareAddr) error

	// Running reports whether the interface is administratively up.
	Running() bool
}

// Stats accounts successfully transferred frames.
type Stats interface {
	AccountTx(n int)
	AccountRx(n int)
}

// QoS is the quality-of-service collaborator. Modem reports are handed over
// opaquely.
type QoS interface {
	HandleModemReport(b []byte)
	ReleaseAll()
}

// EventSink relays unsolicited device messages to user space.
type EventSink interface {
	// Send pushes b to the event channel of device index idx.
	Send(idx int, b []byte) error
}

// IdentityCache remembers device hardware addresses across attaches.
type IdentityCache interface {
	Store(name string, a HardwareAddr) error
	Load(name string) (HardwareAddr, error)
}

// NopQoS is used when no QoS collaborator is configured.
type NopQoS struct{}

func (NopQoS) HandleModemReport([]byte) {}
func (NopQoS) ReleaseAll()              {}

// EventChannel is the shared, reference-counted event relay. Every attached
// device holds one reference; downlink messages written by user space for a
// device index are handed to the function registered with Handle.
type EventChannel interface {
	EventSink

	Acquire() error
	Release()

	Handle(idx int, fn func(b []byte))
	Unhandle(idx int)
}
