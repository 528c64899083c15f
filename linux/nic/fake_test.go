package nic

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
	"github.com/rigado/wimax/stats"
)

// recorder keeps the order of collaborator calls across fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(f string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(f, args...))
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) count(c string) int {
	n := 0
	for _, v := range r.get() {
		if v == c {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

type fakeTransport struct {
	mu        sync.Mutex
	sent      [][]byte
	dones     []wimax.SendDone
	completed int
	full      bool
	rx        wimax.ReceiveDone
	closed    bool

	// onFull runs when Send refuses a message, before Send returns.
	onFull func()
}

func (t *fakeTransport) Send(b []byte, done wimax.SendDone) error {
	t.mu.Lock()
	if t.full {
		fn := t.onFull
		t.mu.Unlock()
		if fn != nil {
			fn()
		}
		return wimax.ErrTransportFull
	}
	defer t.mu.Unlock()
	t.sent = append(t.sent, b)
	t.dones = append(t.dones, done)
	return nil
}

// drain completes every send not completed by an earlier drain.
func (t *fakeTransport) drain(err error) int {
	t.mu.Lock()
	dones := t.dones[t.completed:]
	t.completed = len(t.dones)
	t.mu.Unlock()

	for _, done := range dones {
		done(err)
	}
	return len(dones)
}

func (t *fakeTransport) Receive(done wimax.ReceiveDone) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return wimax.ErrClosed
	}
	if t.rx != nil {
		return errors.New("already armed")
	}
	t.rx = done
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rx != nil
}

// deliver completes the armed receive with b.
func (t *fakeTransport) deliver(tb *testing.T, b []byte) {
	tb.Helper()
	t.complete(tb, b, nil)
}

func (t *fakeTransport) complete(tb *testing.T, b []byte, err error) {
	tb.Helper()
	if !t.tryComplete(b, err) {
		tb.Fatal("no receive armed")
	}
}

// tryDeliver completes the armed receive with b, if there is one.
func (t *fakeTransport) tryDeliver(b []byte) bool {
	return t.tryComplete(b, nil)
}

func (t *fakeTransport) tryComplete(b []byte, err error) bool {
	t.mu.Lock()
	rx := t.rx
	t.rx = nil
	t.mu.Unlock()

	if rx == nil {
		return false
	}
	rx(b, err)
	return true
}

func (t *fakeTransport) sentAfterHandshake() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.sent[2:]...)
}

type fakeNetIf struct {
	rec     *recorder
	mu      sync.Mutex
	frames  [][]byte
	addr    wimax.HardwareAddr
	running bool
}

func (f *fakeNetIf) DeliverFrame(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, b)
	f.rec.add("deliver")
	return nil
}

func (f *fakeNetIf) delivered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeNetIf) LinkUp()    { f.rec.add("linkup") }
func (f *fakeNetIf) LinkDown()  { f.rec.add("linkdown") }
func (f *fakeNetIf) StopQueue() { f.rec.add("stop") }
func (f *fakeNetIf) WakeQueue() { f.rec.add("wake") }

func (f *fakeNetIf) SetHardwareAddr(a wimax.HardwareAddr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addr = a
	return nil
}

func (f *fakeNetIf) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

type fakeQoS struct {
	rec     *recorder
	reports [][]byte
}

func (q *fakeQoS) HandleModemReport(b []byte) {
	q.reports = append(q.reports, b)
	q.rec.add("report")
}

func (q *fakeQoS) ReleaseAll() { q.rec.add("release") }

type fakeEvents struct {
	rec      *recorder
	mu       sync.Mutex
	sent     [][]byte
	refs     int
	handlers map[int]func([]byte)
}

func (e *fakeEvents) Send(idx int, b []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.refs == 0 {
		return wimax.ErrChannelUnavailable
	}
	e.sent = append(e.sent, b)
	e.rec.add("event %02x%02x", b[0], b[1])
	return nil
}

func (e *fakeEvents) Acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs++
	return nil
}

func (e *fakeEvents) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs--
}

func (e *fakeEvents) Handle(idx int, fn func([]byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = map[int]func([]byte){}
	}
	e.handlers[idx] = fn
}

func (e *fakeEvents) Unhandle(idx int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handlers, idx)
}

func (e *fakeEvents) events() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]byte(nil), e.sent...)
}

type fakeCache map[string]wimax.HardwareAddr

func (c fakeCache) Store(name string, a wimax.HardwareAddr) error {
	c[name] = a
	return nil
}

func (c fakeCache) Load(name string) (wimax.HardwareAddr, error) {
	a, ok := c[name]
	if !ok {
		return a, errors.New("not found")
	}
	return a, nil
}

type testDevice struct {
	*NIC
	tp     *fakeTransport
	netif  *fakeNetIf
	qos    *fakeQoS
	events *fakeEvents
	stats  *stats.Counters
	cache  fakeCache
	rec    *recorder
	errs   []error

	// collaborator calls made by Init
	attach []string
}

func newTestDevice(t *testing.T, caps wimax.Capabilities, opts ...wimax.Option) *testDevice {
	t.Helper()
	rec := &recorder{}
	d := &testDevice{
		tp:     &fakeTransport{},
		netif:  &fakeNetIf{rec: rec},
		qos:    &fakeQoS{rec: rec},
		events: &fakeEvents{rec: rec},
		stats:  stats.New("wm0"),
		cache:  fakeCache{},
		rec:    rec,
	}

	opts = append([]wimax.Option{
		wimax.OptCapabilities(caps),
		wimax.OptTransport(d.tp),
		wimax.OptNetIf(d.netif),
		wimax.OptQoS(d.qos),
		wimax.OptEventChannel(d.events),
		wimax.OptStats(d.stats),
		wimax.OptIdentityCache(d.cache),
		wimax.OptErrorHandler(func(err error) { d.errs = append(d.errs, err) }),
	}, opts...)

	n, err := New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Init(); err != nil {
		t.Fatal(err)
	}
	d.NIC = n
	d.attach = rec.get()
	rec.reset()
	return d
}

// completeHandshake runs the handshake with the given address.
func (d *testDevice) completeHandshake(t *testing.T, a wimax.HardwareAddr) {
	t.Helper()
	d.tp.deliver(t, identityResult(a))
	if d.Handshaking() {
		t.Fatal("still handshaking")
	}
}

// identityResult is the GetInfoResult carrying a.
func identityResult(a wimax.HardwareAddr) []byte {
	return append([]byte{0x80, 0x03, 0x00, 0x08, 0x00, 0x06}, a[:]...)
}

// captureLogger keeps the messages logged at error level.
type captureLogger struct {
	mu   sync.Mutex
	errs []string
}

func (l *captureLogger) Info(...interface{})           {}
func (l *captureLogger) Debug(...interface{})          {}
func (l *captureLogger) Warn(...interface{})           {}
func (l *captureLogger) Infof(string, ...interface{})  {}
func (l *captureLogger) Debugf(string, ...interface{}) {}
func (l *captureLogger) Warnf(string, ...interface{})  {}

func (l *captureLogger) Error(args ...interface{}) {
	l.add(fmt.Sprint(args...))
}

func (l *captureLogger) Errorf(f string, args ...interface{}) {
	l.add(fmt.Sprintf(f, args...))
}

func (l *captureLogger) ChildLogger(map[string]interface{}) wimax.Logger { return l }

func (l *captureLogger) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, s)
}

func (l *captureLogger) errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errs...)
}

// captureLogs routes the logs of devices created from now on to the
// returned logger.
func captureLogs(t *testing.T) *captureLogger {
	t.Helper()
	l := &captureLogger{}
	prev := wimax.GetLogger()
	wimax.SetLogger(l)
	t.Cleanup(func() { wimax.SetLogger(prev) })
	return l
}
