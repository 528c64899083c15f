package event

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func dialClient(t *testing.T, dir, server string) *net.UnixConn {
	t.Helper()
	c, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: filepath.Join(dir, "client"), Net: "unixgram"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	sa := &net.UnixAddr{Name: server, Net: "unixgram"}
	if _, err := c.WriteToUnix(Encode(0, KindSubscribe, nil), sa); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDecode(t *testing.T) {
	idx, kind, body, err := Decode([]byte{0x00, 0x03, 0x00, 0x01, 0xaa})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 3 || kind != KindHCI {
		t.Fatalf("idx %d kind %d", idx, kind)
	}
	if diff := cmp.Diff([]byte{0xaa}, body); diff != "" {
		t.Fatal(diff)
	}

	if _, _, _, err := Decode([]byte{0x00, 0x01}); err == nil {
		t.Fatal("short datagram accepted")
	}
}

func TestUnixChannel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wimax.sock")

	got := make(chan []byte, 1)
	r := NewRegistry(ListenUnix(path))
	if err := r.Acquire(); err != nil {
		t.Fatal(err)
	}
	defer r.Release()
	r.Handle(4, func(b []byte) { got <- b })

	c := dialClient(t, dir, path)

	// the subscription is processed asynchronously; keep sending until it lands
	b := make([]byte, 64)
	var n int
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := r.Send(4, []byte{0x8f, 0x01, 0x00, 0x00}); err != nil {
			t.Fatal(err)
		}
		c.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		var err error
		n, _, err = c.ReadFromUnix(b)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no event received")
		}
	}
	if diff := cmp.Diff([]byte{0x00, 0x04, 0x00, 0x01, 0x8f, 0x01, 0x00, 0x00}, b[:n]); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}

	sa := &net.UnixAddr{Name: path, Net: "unixgram"}
	if _, err := c.WriteToUnix(Encode(4, KindHCI, []byte{0x00, 0x02, 0x00, 0x00}), sa); err != nil {
		t.Fatal(err)
	}
	select {
	case req := <-got:
		if diff := cmp.Diff([]byte{0x00, 0x02, 0x00, 0x00}, req); diff != "" {
			t.Fatalf("request mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request not delivered")
	}
}
