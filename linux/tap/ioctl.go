//go:build linux
// +build linux

package tap

import (
	"bytes"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
	"golang.org/x/sys/unix"
)

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return ep
	}
	return nil
}

type ifreqFlags struct {
	name  [unix.IFNAMSIZ]byte
	flags uint16
	_     [22]byte
}

type ifreqMTU struct {
	name [unix.IFNAMSIZ]byte
	mtu  int32
	_    [20]byte
}

type ifreqHwaddr struct {
	name   [unix.IFNAMSIZ]byte
	family uint16
	data   [14]byte
	_      [8]byte
}

func ifname(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// tunSetIff attaches fd to the TAP interface name and returns the name the
// kernel picked.
func tunSetIff(fd uintptr, name string) (string, error) {
	var ifr ifreqFlags
	copy(ifr.name[:unix.IFNAMSIZ-1], name)
	ifr.flags = unix.IFF_TAP | unix.IFF_NO_PI
	if err := ioctl(fd, unix.TUNSETIFF, uintptr(unsafe.Pointer(&ifr))); err != nil {
		return "", errors.Wrap(err, "TUNSETIFF")
	}
	return ifname(ifr.name[:]), nil
}

func tunSetCarrier(fd uintptr, on bool) error {
	v := int32(0)
	if on {
		v = 1
	}
	return errors.Wrap(ioctl(fd, unix.TUNSETCARRIER, uintptr(unsafe.Pointer(&v))), "TUNSETCARRIER")
}

// ctl runs fn with a throwaway socket for interface ioctls.
func ctl(fn func(fd uintptr) error) error {
	s, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return errors.Wrap(err, "can't create control socket")
	}
	defer unix.Close(s)
	return fn(uintptr(s))
}

func getFlags(name string) (uint16, error) {
	var ifr ifreqFlags
	copy(ifr.name[:unix.IFNAMSIZ-1], name)
	err := ctl(func(fd uintptr) error {
		return ioctl(fd, unix.SIOCGIFFLAGS, uintptr(unsafe.Pointer(&ifr)))
	})
	return ifr.flags, errors.Wrap(err, "SIOCGIFFLAGS")
}

func setFlags(name string, flags uint16) error {
	var ifr ifreqFlags
	copy(ifr.name[:unix.IFNAMSIZ-1], name)
	ifr.flags = flags
	err := ctl(func(fd uintptr) error {
		return ioctl(fd, unix.SIOCSIFFLAGS, uintptr(unsafe.Pointer(&ifr)))
	})
	return errors.Wrap(err, "SIOCSIFFLAGS")
}

func setMTU(name string, mtu int) error {
	var ifr ifreqMTU
	copy(ifr.name[:unix.IFNAMSIZ-1], name)
	ifr.mtu = int32(mtu)
	err := ctl(func(fd uintptr) error {
		return ioctl(fd, unix.SIOCSIFMTU, uintptr(unsafe.Pointer(&ifr)))
	})
	return errors.Wrap(err, "SIOCSIFMTU")
}

func hwaddrReq(name string, a wimax.HardwareAddr) ifreqHwaddr {
	var ifr ifreqHwaddr
	copy(ifr.name[:unix.IFNAMSIZ-1], name)
	ifr.family = unix.ARPHRD_ETHER
	copy(ifr.data[:], a[:])
	return ifr
}

func setHwaddr(name string, a wimax.HardwareAddr) error {
	ifr := hwaddrReq(name, a)
	err := ctl(func(fd uintptr) error {
		return ioctl(fd, unix.SIOCSIFHWADDR, uintptr(unsafe.Pointer(&ifr)))
	})
	return errors.Wrap(err, "SIOCSIFHWADDR")
}

const cloneDevice = "/dev/net/tun"

func openTap(name string) (*os.File, string, error) {
	if len(name) >= unix.IFNAMSIZ {
		return nil, "", errors.Errorf("device name %q is too long", name)
	}

	f, err := os.OpenFile(cloneDevice, os.O_RDWR, 0600)
	if err != nil {
		return nil, "", errors.Wrapf(err, "can't open %s", cloneDevice)
	}

	rc, err := f.SyscallConn()
	if err != nil {
		f.Close()
		return nil, "", err
	}
	var ierr error
	if err := rc.Control(func(fd uintptr) { name, ierr = tunSetIff(fd, name) }); err != nil {
		ierr = err
	}
	if ierr != nil {
		f.Close()
		return nil, "", ierr
	}
	return f, name, nil
}
