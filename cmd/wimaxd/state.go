package main

import (
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

// stateDevice is what the state endpoint needs from a device.
type stateDevice interface {
	Name() string
	State() wimax.State
	SetState(wimax.State)
	HardwareAddr() wimax.HardwareAddr
	SetHardwareAddr(wimax.HardwareAddr) error
	Handshaking() bool
	QueueStopped() bool
}

type stateBody struct {
	Modem uint32 `json:"modem"`
	Conn  uint32 `json:"conn"`
}

type stateReply struct {
	Device       string `json:"device"`
	Address      string `json:"address"`
	Modem        uint32 `json:"modem"`
	Conn         uint32 `json:"conn"`
	Status       string `json:"status"`
	Handshaking  bool   `json:"handshaking"`
	QueueStopped bool   `json:"queue_stopped"`
}

// stateHandler serves /state/<index>. GET reports the device, PUT records a
// connection state reported by the management plane.
func stateHandler(devs map[int]stateDevice) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := lookup(w, r, devs, "/state/")
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
		case http.MethodPut:
			var b stateBody
			if err := jsoniter.NewDecoder(r.Body).Decode(&b); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			d.SetState(wimax.State{Modem: wimax.ModemStatus(b.Modem), Conn: wimax.ConnStatus(b.Conn)})
		default:
			w.Header().Set("Allow", "GET, PUT")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reply(w, d)
	}
}

type addressBody struct {
	Address string `json:"address"`
}

// addressHandler serves PUT /address/<index>. The interface must be down.
func addressHandler(devs map[int]stateDevice) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := lookup(w, r, devs, "/address/")
		if !ok {
			return
		}
		if r.Method != http.MethodPut {
			w.Header().Set("Allow", "PUT")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var b addressBody
		if err := jsoniter.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a, err := wimax.ParseHardwareAddr(b.Address)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		switch err := d.SetHardwareAddr(a); errors.Cause(err) {
		case nil:
		case wimax.ErrBusy:
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case wimax.ErrInvalidAddr:
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		reply(w, d)
	}
}

func lookup(w http.ResponseWriter, r *http.Request, devs map[int]stateDevice, prefix string) (stateDevice, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, prefix))
	if err != nil {
		http.Error(w, "bad device index", http.StatusBadRequest)
		return nil, false
	}
	d, ok := devs[idx]
	if !ok {
		http.NotFound(w, r)
	}
	return d, ok
}

func reply(w http.ResponseWriter, d stateDevice) {
	s := d.State()
	w.Header().Set("Content-Type", "application/json")
	jsoniter.NewEncoder(w).Encode(stateReply{
		Device:       d.Name(),
		Address:      d.HardwareAddr().String(),
		Modem:        uint32(s.Modem),
		Conn:         uint32(s.Conn),
		Status:       s.String(),
		Handshaking:  d.Handshaking(),
		QueueStopped: d.QueueStopped(),
	})
}
