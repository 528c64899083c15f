package tap

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rigado/wimax"
)

type frameReader struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *frameReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.frames[0])
	r.frames = r.frames[1:]
	return n, nil
}

func TestDevice_WaitQueue(t *testing.T) {
	d := newDevice("wm0", nil, DefaultMTU)
	d.StopQueue()

	c := make(chan bool, 1)
	go func() { c <- d.waitQueue() }()

	select {
	case <-c:
		t.Fatal("stopped queue did not block")
	case <-time.After(50 * time.Millisecond):
	}

	d.WakeQueue()
	select {
	case ok := <-c:
		if !ok {
			t.Fatal("woken queue reported closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wake did not release the queue")
	}

	d.StopQueue()
	go func() { c <- d.waitQueue() }()
	d.Close()
	select {
	case ok := <-c:
		if ok {
			t.Fatal("closed queue reported open")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("close did not release the queue")
	}
}

func TestDevice_ServeRetriesOnFull(t *testing.T) {
	d := newDevice("wm0", nil, DefaultMTU)
	r := &frameReader{frames: [][]byte{{1, 1, 1}, {2, 2}}}

	var got [][]byte
	refused := false
	xmit := func(b []byte) error {
		if !refused {
			refused = true
			d.StopQueue()
			go func() {
				time.Sleep(20 * time.Millisecond)
				d.WakeQueue()
			}()
			return wimax.ErrTransportFull
		}
		got = append(got, b)
		return nil
	}

	// the reader runs dry with io.EOF
	if err := d.serve(r, xmit); err == nil {
		t.Fatal("expected read error")
	}

	if diff := cmp.Diff([][]byte{{1, 1, 1}, {2, 2}}, got); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestDevice_ServeClosed(t *testing.T) {
	d := newDevice("wm0", nil, DefaultMTU)
	d.Close()
	if err := d.serve(&frameReader{}, func([]byte) error { return nil }); err != nil {
		t.Fatalf("serve on closed device: %v", err)
	}
}
