package wimax

import "time"

// Capabilities are the optional features negotiated with the device during
// the handshake. Multi-carrier-sense and WiMAX are always announced.
type Capabilities struct {
	QoS         bool
	Aggregation bool
}

// DeviceOption is implemented by the device to accept configuration options.
type DeviceOption interface {
	SetDeviceIndex(idx int) error
	SetCapabilities(Capabilities) error
	SetErrorHandler(handler func(error)) error

	SetNetIf(NetIf) error
	SetQoS(QoS) error
	SetStats(Stats) error
	SetEventChannel(EventChannel) error
	SetIdentityCache(IdentityCache) error

	SetTransport(Transport) error
	SetTransportSocket(addr string, timeout time.Duration) error
	SetTransportUart(path string, baud uint) error
}

// An Option is a configuration function, which configures the device.
type Option func(DeviceOption) error

// OptDeviceIndex sets the index N of interface "wmN". The event channel
// tags messages with it.
func OptDeviceIndex(idx int) Option {
	return func(opt DeviceOption) error {
		return opt.SetDeviceIndex(idx)
	}
}

// OptCapabilities selects the optional features announced to the device.
func OptCapabilities(c Capabilities) Option {
	return func(opt DeviceOption) error {
		return opt.SetCapabilities(c)
	}
}

// OptErrorHandler sets a handler for asynchronous errors.
func OptErrorHandler(handler func(error)) Option {
	return func(opt DeviceOption) error {
		return opt.SetErrorHandler(handler)
	}
}

// OptNetIf sets the network interface frames are delivered to.
func OptNetIf(n NetIf) Option {
	return func(opt DeviceOption) error {
		return opt.SetNetIf(n)
	}
}

// OptQoS sets the QoS collaborator.
func OptQoS(q QoS) Option {
	return func(opt DeviceOption) error {
		return opt.SetQoS(q)
	}
}

// OptStats overrides the default in-memory counters.
func OptStats(s Stats) Option {
	return func(opt DeviceOption) error {
		return opt.SetStats(s)
	}
}

// OptEventChannel sets the shared event relay.
func OptEventChannel(ec EventChannel) Option {
	return func(opt DeviceOption) error {
		return opt.SetEventChannel(ec)
	}
}

// OptIdentityCache persists the device hardware address between attaches.
func OptIdentityCache(c IdentityCache) Option {
	return func(opt DeviceOption) error {
		return opt.SetIdentityCache(c)
	}
}

// OptTransport uses an already opened transport.
func OptTransport(t Transport) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransport(t)
	}
}

// OptTransportSocket connects to a TCP bridge exposing the device.
func OptTransportSocket(addr string, timeout time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportSocket(addr, timeout)
	}
}

// OptTransportUart opens a serial port attached to the device.
func OptTransportUart(path string, baud uint) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportUart(path, baud)
	}
}
