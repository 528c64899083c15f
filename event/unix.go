package event

import (
	"encoding/binary"
	"net"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

// Datagram kinds. Every datagram starts with a big-endian device index and
// kind, followed by the body.
const (
	KindSubscribe uint16 = 0 // client to daemon, empty body
	KindHCI       uint16 = 1 // HCI message, either direction

	HeaderLen = 4
	maxDgram  = 4096
)

type unixChannel struct {
	path string
	conn *net.UnixConn
	recv func(int, []byte)

	mu    sync.Mutex
	peers map[string]*net.UnixAddr

	done   chan struct{}
	logger wimax.Logger
}

// ListenUnix returns an OpenFunc serving the relay on a unix datagram socket
// at path. Clients bind their own socket, send a KindSubscribe datagram and
// from then on receive every event; KindHCI datagrams they send are routed to
// the device index in the header.
func ListenUnix(path string) OpenFunc {
	return func(recv func(int, []byte)) (Channel, error) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "can't remove stale %s", path)
		}

		conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
		if err != nil {
			return nil, errors.Wrapf(err, "can't listen on %s", path)
		}

		c := &unixChannel{
			path:   path,
			conn:   conn,
			recv:   recv,
			peers:  map[string]*net.UnixAddr{},
			done:   make(chan struct{}),
			logger: wimax.GetLogger().ChildLogger(map[string]interface{}{"event": path}),
		}
		go c.readLoop()
		return c, nil
	}
}

// Encode builds a datagram.
func Encode(idx int, kind uint16, body []byte) []byte {
	b := make([]byte, HeaderLen+len(body))
	binary.BigEndian.PutUint16(b[0:2], uint16(idx))
	binary.BigEndian.PutUint16(b[2:4], kind)
	copy(b[HeaderLen:], body)
	return b
}

// Decode splits a datagram. body borrows b.
func Decode(b []byte) (idx int, kind uint16, body []byte, err error) {
	if len(b) < HeaderLen {
		return 0, 0, nil, errors.Errorf("short datagram [%d]", len(b))
	}
	return int(binary.BigEndian.Uint16(b[0:2])), binary.BigEndian.Uint16(b[2:4]), b[HeaderLen:], nil
}

func (c *unixChannel) Send(idx int, b []byte) error {
	d := Encode(idx, KindHCI, b)

	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.peers {
		if _, err := c.conn.WriteToUnix(d, p); err != nil {
			c.logger.Infof("dropping listener %s: %v", k, err)
			delete(c.peers, k)
		}
	}
	return nil
}

func (c *unixChannel) Close() error {
	select {
	case <-c.done:
		return nil
	default:
		close(c.done)
	}
	err := c.conn.Close()
	os.Remove(c.path)
	return errors.Wrap(err, "can't close event socket")
}

func (c *unixChannel) isOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *unixChannel) readLoop() {
	b := make([]byte, maxDgram)
	for {
		n, from, err := c.conn.ReadFromUnix(b)
		if err != nil {
			if !c.isOpen() {
				return
			}
			c.logger.Errorf("event socket read: %v", err)
			continue
		}

		idx, kind, body, err := Decode(b[:n])
		if err != nil {
			c.logger.Warn(err)
			continue
		}

		switch kind {
		case KindSubscribe:
			if from == nil || from.Name == "" {
				c.logger.Warn("subscribe from unbound socket ignored")
				continue
			}
			c.mu.Lock()
			c.peers[from.Name] = from
			c.mu.Unlock()

		case KindHCI:
			p := make([]byte, len(body))
			copy(p, body)
			c.recv(idx, p)

		default:
			c.logger.Warnf("unknown datagram kind %d", kind)
		}
	}
}
