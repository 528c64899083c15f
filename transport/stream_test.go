package transport

import (
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

type recv struct {
	b   []byte
	err error
}

func TestStream_Receive(t *testing.T) {
	local, peer := net.Pipe()
	s := New(local)
	defer s.Close()

	c := make(chan recv, 1)
	if err := s.Receive(func(b []byte, err error) { c <- recv{b, err} }); err != nil {
		t.Fatal(err)
	}
	if err := s.Receive(func([]byte, error) {}); err != ErrArmed {
		t.Fatalf("second arm: %v", err)
	}

	go peer.Write([]byte{0x82, 0x03, 0x00, 0x02, 0x01, 0x02})

	select {
	case r := <-c:
		if r.err != nil {
			t.Fatal(r.err)
		}
		if diff := cmp.Diff([]byte{0x82, 0x03, 0x00, 0x02, 0x01, 0x02}, r.b); diff != "" {
			t.Fatalf("received mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("nothing received")
	}
}

func TestStream_Send(t *testing.T) {
	local, peer := net.Pipe()
	s := New(local)
	defer s.Close()

	sent := make(chan error, 1)
	if err := s.Send([]byte{0x02, 0x02, 0x00, 0x01, 0xff}, func(err error) { sent <- err }); err != nil {
		t.Fatal(err)
	}

	b := make([]byte, 16)
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := peer.Read(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x02, 0x02, 0x00, 0x01, 0xff}, b[:n]); diff != "" {
		t.Fatalf("written mismatch (-want +got):\n%s", diff)
	}

	select {
	case err := <-sent:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion not called")
	}
}

func TestStream_Full(t *testing.T) {
	local, _ := net.Pipe()
	s := New(local)

	// nobody reads the peer end: the writer blocks on the first message and
	// the queue fills up behind it
	var err error
	for i := 0; i < txQueueSize+2; i++ {
		if err = s.Send([]byte{0x02, 0x02, 0x00, 0x00}, nil); err != nil {
			break
		}
	}
	if errors.Cause(err) != wimax.ErrTransportFull {
		t.Fatalf("expected ErrTransportFull, got %v", err)
	}

	s.Close()
	if err := s.Send([]byte{0x02, 0x02, 0x00, 0x00}, nil); errors.Cause(err) != wimax.ErrClosed {
		t.Fatalf("send after close: %v", err)
	}
}

func TestStream_CloseCompletesArmedReceive(t *testing.T) {
	local, _ := net.Pipe()
	s := New(local)

	c := make(chan recv, 1)
	if err := s.Receive(func(b []byte, err error) { c <- recv{b, err} }); err != nil {
		t.Fatal(err)
	}
	s.Close()

	select {
	case r := <-c:
		if errors.Cause(r.err) != wimax.ErrClosed {
			t.Fatalf("expected ErrClosed, got %v", r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("armed receive not completed")
	}

	if err := s.Receive(func([]byte, error) {}); errors.Cause(err) != wimax.ErrClosed {
		t.Fatalf("arm after close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
