package transport

import (
	"time"

	"github.com/rigado/wimax/hci"
)

const frameTimeout = 500 * time.Millisecond

// frame reassembles HCI messages from a byte stream. A partial message older
// than frameTimeout is dropped.
type frame struct {
	b       []byte
	timeout time.Time
	emit    func([]byte)
}

func newFrame(emit func([]byte)) *frame {
	return &frame{emit: emit}
}

func (f *frame) Assemble(b []byte) {
	if len(b) == 0 {
		return
	}
	if !f.timeout.IsZero() && time.Now().After(f.timeout) {
		f.reset()
	}
	if len(f.b) == 0 {
		f.timeout = time.Now().Add(frameTimeout)
	}
	f.b = append(f.b, b...)

	for {
		n, ok := f.complete()
		if !ok {
			return
		}
		out := make([]byte, n)
		copy(out, f.b[:n])
		f.emit(out)

		rem := f.b[n:]
		f.reset()
		if len(rem) == 0 {
			return
		}
		f.b = append(f.b, rem...)
		f.timeout = time.Now().Add(frameTimeout)
	}
}

// complete returns the size of the message at the head of the buffer once
// all of it has arrived.
func (f *frame) complete() (int, bool) {
	_, l, err := hci.DecodeHeader(f.b)
	if err != nil {
		return 0, false
	}
	tl := hci.HeaderSize + int(l)
	if len(f.b) < tl {
		return 0, false
	}
	return tl, true
}

func (f *frame) reset() {
	f.b = make([]byte, 0, 256)
	f.timeout = time.Time{}
}
