//go:build linux
// +build linux

package tap

import (
	"testing"
	"unsafe"

	"github.com/rigado/wimax"
	"golang.org/x/sys/unix"
)

func TestIfreqLayout(t *testing.T) {
	// the kernel reads 40 bytes from every ifreq
	for name, sz := range map[string]uintptr{
		"flags":  unsafe.Sizeof(ifreqFlags{}),
		"mtu":    unsafe.Sizeof(ifreqMTU{}),
		"hwaddr": unsafe.Sizeof(ifreqHwaddr{}),
	} {
		if sz != 40 {
			t.Fatalf("ifreq %s is %d bytes", name, sz)
		}
	}
}

func TestHwaddrReq(t *testing.T) {
	a := wimax.HardwareAddr{0x00, 0x0a, 0x3b, 0xf0, 0x01, 0x30}
	r := hwaddrReq("wm0", a)

	if ifname(r.name[:]) != "wm0" {
		t.Fatalf("name %q", ifname(r.name[:]))
	}
	if r.family != unix.ARPHRD_ETHER {
		t.Fatalf("family %d", r.family)
	}
	if wimax.HardwareAddr(*(*[6]byte)(r.data[:6])) != a {
		t.Fatalf("data % x", r.data)
	}
}
