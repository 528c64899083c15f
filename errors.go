package wimax

import "github.com/pkg/errors"

var (
	// ErrTransportFull is returned by a Transport that has no room for
	// another frame. The frame is not consumed; retry once the queue wakes.
	ErrTransportFull = errors.New("transport full")

	// ErrChannelUnavailable means the event channel is not open.
	ErrChannelUnavailable = errors.New("event channel unavailable")

	// ErrInvalidState is reported when an operation needs a connected modem.
	ErrInvalidState = errors.New("modem not connected")

	ErrBusy        = errors.New("interface is running")
	ErrInvalidAddr = errors.New("invalid hardware address")
	ErrClosed      = errors.New("device closed")
)
