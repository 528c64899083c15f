// Package tap exposes a device as a Linux TAP interface.
package tap

import (
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

// DefaultMTU of a WiMAX interface.
const DefaultMTU = 1400

const (
	iffUp      = 0x1
	iffRunning = 0x40

	// room for the Ethernet header and a VLAN tag
	frameOverhead = 18
)

// Device is a TAP interface. It implements wimax.NetIf.
type Device struct {
	name string
	f    *os.File
	mtu  int

	mu      sync.Mutex
	cond    *sync.Cond
	stopped bool
	closed  bool

	logger wimax.Logger
}

var _ wimax.NetIf = (*Device)(nil)

// Open creates or attaches the TAP interface name ("wm%d" lets the kernel
// pick the number). A zero mtu selects DefaultMTU.
func Open(name string, mtu int) (*Device, error) {
	if mtu == 0 {
		mtu = DefaultMTU
	}

	f, name, err := openTap(name)
	if err != nil {
		return nil, err
	}

	d := newDevice(name, f, mtu)
	if err := setMTU(name, mtu); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

func newDevice(name string, f *os.File, mtu int) *Device {
	d := &Device{
		name:   name,
		f:      f,
		mtu:    mtu,
		logger: wimax.GetLogger().ChildLogger(map[string]interface{}{"tap": name}),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

func (d *Device) Name() string {
	return d.name
}

// DeliverFrame writes a received frame to the kernel.
func (d *Device) DeliverFrame(b []byte) error {
	_, err := d.f.Write(b)
	return errors.Wrap(err, "can't write tap")
}

func (d *Device) LinkUp() {
	if err := d.carrier(true); err != nil {
		d.logger.Warn(err)
	}
}

func (d *Device) LinkDown() {
	if err := d.carrier(false); err != nil {
		d.logger.Warn(err)
	}
}

func (d *Device) carrier(on bool) error {
	rc, err := d.f.SyscallConn()
	if err != nil {
		return err
	}
	var cerr error
	if err := rc.Control(func(fd uintptr) { cerr = tunSetCarrier(fd, on) }); err != nil {
		return err
	}
	return cerr
}

// StopQueue pauses Serve before the next frame.
func (d *Device) StopQueue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
}

func (d *Device) WakeQueue() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = false
	d.cond.Broadcast()
}

func (d *Device) SetHardwareAddr(a wimax.HardwareAddr) error {
	return setHwaddr(d.name, a)
}

// Running reports whether the interface is administratively up.
func (d *Device) Running() bool {
	flags, err := getFlags(d.name)
	if err != nil {
		d.logger.Warn(err)
		return false
	}
	return flags&iffUp != 0
}

// SetUp brings the interface up or down.
func (d *Device) SetUp(up bool) error {
	flags, err := getFlags(d.name)
	if err != nil {
		return err
	}
	if up {
		flags |= iffUp | iffRunning
	} else {
		flags &^= iffUp | iffRunning
	}
	return setFlags(d.name, flags)
}

// Serve passes frames the kernel sends out of the interface to xmit until
// the device is closed. A frame refused with wimax.ErrTransportFull is
// retried once the queue wakes.
func (d *Device) Serve(xmit func([]byte) error) error {
	return d.serve(d.f, xmit)
}

func (d *Device) serve(r io.Reader, xmit func([]byte) error) error {
	b := make([]byte, d.mtu+frameOverhead)
	for {
		n, err := r.Read(b)
		if err != nil {
			if d.isClosed() {
				return nil
			}
			return errors.Wrap(err, "can't read tap")
		}
		frame := make([]byte, n)
		copy(frame, b[:n])

		for {
			if !d.waitQueue() {
				return nil
			}
			err := xmit(frame)
			if errors.Cause(err) != wimax.ErrTransportFull {
				if err != nil {
					d.logger.Warnf("tx: %v", err)
				}
				break
			}
		}
	}
}

// waitQueue blocks while the queue is stopped. It returns false once the
// device is closed.
func (d *Device) waitQueue() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.stopped && !d.closed {
		d.cond.Wait()
	}
	return !d.closed
}

func (d *Device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()

	if d.f == nil {
		return nil
	}
	return errors.Wrap(d.f.Close(), "can't close tap")
}
