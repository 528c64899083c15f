// Package transport carries HCI messages to the device firmware over a byte
// stream, either a UART or a TCP bridge.
package transport

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

const (
	rxQueueSize = 64
	txQueueSize = 64
	readSize    = 2048
)

// ErrArmed is returned by Receive while a previous receive is pending.
var ErrArmed = errors.New("receive already armed")

type txReq struct {
	b    []byte
	done wimax.SendDone
}

// Stream implements wimax.Transport over an io.ReadWriteCloser.
type Stream struct {
	rwc io.ReadWriteCloser

	rxQueue chan []byte
	txQueue chan txReq
	arms    chan wimax.ReceiveDone

	amu   sync.Mutex
	armed bool

	done chan struct{}
	cmu  sync.Mutex

	logger wimax.Logger
}

// New starts a transport on rwc. The transport owns rwc from now on.
func New(rwc io.ReadWriteCloser) *Stream {
	s := &Stream{
		rwc:     rwc,
		rxQueue: make(chan []byte, rxQueueSize),
		txQueue: make(chan txReq, txQueueSize),
		arms:    make(chan wimax.ReceiveDone, 1),
		done:    make(chan struct{}),
		logger:  wimax.GetLogger().ChildLogger(map[string]interface{}{"pkg": "transport"}),
	}

	go s.rxLoop()
	go s.txLoop()
	go s.deliverLoop()

	return s
}

// DefaultSerialOptions returns the UART settings of the modem bridge.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		BaudRate:              1000000,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		RTSCTSFlowControl:     true,
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// NewSerial opens a UART transport.
func NewSerial(opts serial.OpenOptions) (*Stream, error) {
	// reads must not block forever or Close can't stop the read loop
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", opts.PortName)
	}
	return New(sp), nil
}

// NewSocket connects to a TCP bridge.
func NewSocket(addr string, timeout time.Duration) (*Stream, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, errors.Wrapf(err, "can't dial %s", addr)
	}
	return New(newDeadlineConn(c, timeout)), nil
}

// Send queues b for writing. It never blocks: when the queue is full it
// returns wimax.ErrTransportFull and done is not called.
func (s *Stream) Send(b []byte, done wimax.SendDone) error {
	if !s.isOpen() {
		return wimax.ErrClosed
	}

	select {
	case s.txQueue <- txReq{b: b, done: done}:
		return nil
	default:
		return wimax.ErrTransportFull
	}
}

// Receive arms delivery of the next message. Only one receive can be armed
// at a time.
func (s *Stream) Receive(done wimax.ReceiveDone) error {
	if !s.isOpen() {
		return wimax.ErrClosed
	}

	s.amu.Lock()
	defer s.amu.Unlock()
	if s.armed {
		return ErrArmed
	}
	s.armed = true
	s.arms <- done
	return nil
}

// complete disarms before calling done so done may arm again.
func (s *Stream) complete(done wimax.ReceiveDone, b []byte, err error) {
	s.amu.Lock()
	s.armed = false
	s.amu.Unlock()
	done(b, err)
}

func (s *Stream) Close() error {
	s.cmu.Lock()
	defer s.cmu.Unlock()

	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
		s.logger.Debug("closing transport")
		return errors.Wrap(s.rwc.Close(), "can't close transport")
	}
}

func (s *Stream) isOpen() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *Stream) rxLoop() {
	f := newFrame(s.queue)
	tmp := make([]byte, readSize)
	for {
		n, err := s.rwc.Read(tmp)
		if !s.isOpen() {
			return
		}
		if err == io.EOF {
			s.logger.Info("transport closed by peer")
			s.Close()
			return
		}
		if err != nil || n == 0 {
			continue
		}
		f.Assemble(tmp[:n])
	}
}

func (s *Stream) queue(b []byte) {
	select {
	case s.rxQueue <- b:
	case <-s.done:
	}
}

func (s *Stream) txLoop() {
	for {
		select {
		case r := <-s.txQueue:
			_, err := s.rwc.Write(r.b)
			if r.done != nil {
				r.done(errors.Wrap(err, "can't write transport"))
			}
		case <-s.done:
			return
		}
	}
}

func (s *Stream) deliverLoop() {
	for {
		var done wimax.ReceiveDone
		select {
		case done = <-s.arms:
		case <-s.done:
			select {
			case done = <-s.arms:
				s.complete(done, nil, wimax.ErrClosed)
			default:
			}
			return
		}

		select {
		case b := <-s.rxQueue:
			s.complete(done, b, nil)
		case <-s.done:
			s.complete(done, nil, wimax.ErrClosed)
			return
		}
	}
}
