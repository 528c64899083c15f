package transport

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

// deadlineConn bounds every read and write on a TCP bridge. An idle read
// returns no data instead of an error; a write that can't finish in time
// fails the message being sent.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
	logger  wimax.Logger
}

func newDeadlineConn(c net.Conn, timeout time.Duration) *deadlineConn {
	return &deadlineConn{
		Conn:    c,
		timeout: timeout,
		logger:  wimax.GetLogger().ChildLogger(map[string]interface{}{"bridge": c.RemoteAddr().String()}),
	}
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, errors.Wrap(err, "can't set read deadline")
	}
	n, err := c.Conn.Read(b)
	if isTimeout(err) {
		return n, nil
	}
	return n, err
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, errors.Wrap(err, "can't set write deadline")
	}
	n, err := c.Conn.Write(b)
	if isTimeout(err) {
		c.logger.Warnf("write stalled, %d of %d bytes sent in %v", n, len(b), c.timeout)
		return n, errors.Wrapf(err, "bridge stalled for %v", c.timeout)
	}
	return n, err
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
