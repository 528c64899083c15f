// Package event relays unsolicited device messages to user space and carries
// user-space requests back to the devices.
//
// A single channel is shared by every attached device. The Registry opens it
// when the first device acquires it and closes it when the last one
// releases it.
package event

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

// Channel is an open relay.
type Channel interface {
	// Send pushes b to listeners of device index idx.
	Send(idx int, b []byte) error
	Close() error
}

// OpenFunc opens the relay. recv is called for every message user space
// writes for a device.
type OpenFunc func(recv func(idx int, b []byte)) (Channel, error)

// Registry owns the shared channel. It implements wimax.EventChannel.
type Registry struct {
	open OpenFunc

	mu   sync.RWMutex
	refs int
	ch   Channel

	hmu      sync.RWMutex
	handlers map[int]func([]byte)

	logger wimax.Logger
}

// NewRegistry returns a registry opening its channel with open.
func NewRegistry(open OpenFunc) *Registry {
	return &Registry{
		open:     open,
		handlers: map[int]func([]byte){},
		logger:   wimax.GetLogger().ChildLogger(map[string]interface{}{"pkg": "event"}),
	}
}

// Acquire takes a reference, opening the channel if this is the first one.
func (r *Registry) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refs == 0 {
		ch, err := r.open(r.dispatch)
		if err != nil {
			return errors.Wrapf(wimax.ErrChannelUnavailable, "creating event channel: %v", err)
		}
		r.ch = ch
	}
	r.refs++
	return nil
}

// Release drops a reference and closes the channel with the last one.
func (r *Registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch == nil {
		return
	}
	r.refs--
	if r.refs > 0 {
		return
	}
	if err := r.ch.Close(); err != nil {
		r.logger.Warnf("closing event channel: %v", err)
	}
	r.ch = nil
	r.refs = 0
}

// Refs returns the number of references held.
func (r *Registry) Refs() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refs
}

// Send implements wimax.EventSink.
func (r *Registry) Send(idx int, b []byte) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.ch == nil {
		return wimax.ErrChannelUnavailable
	}
	r.logger.Debugf("D=>H: wm%d % X", idx, head(b))
	return r.ch.Send(idx, b)
}

// Handle registers fn for messages user space sends to device idx.
func (r *Registry) Handle(idx int, fn func(b []byte)) {
	r.hmu.Lock()
	defer r.hmu.Unlock()
	r.handlers[idx] = fn
}

func (r *Registry) Unhandle(idx int) {
	r.hmu.Lock()
	defer r.hmu.Unlock()
	delete(r.handlers, idx)
}

func (r *Registry) dispatch(idx int, b []byte) {
	r.hmu.RLock()
	fn := r.handlers[idx]
	r.hmu.RUnlock()

	if fn == nil {
		r.logger.Warnf("no device wm%d for %d byte request", idx, len(b))
		return
	}
	r.logger.Debugf("H=>D: wm%d % X", idx, head(b))
	fn(b)
}

// first bytes for diagnostics
func head(b []byte) []byte {
	if len(b) > 4 {
		return b[:4]
	}
	return b
}
