//go:build !linux
// +build !linux

package tap

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rigado/wimax"
)

var errNotLinux = errors.New("only available on linux")

func openTap(name string) (*os.File, string, error) { return nil, "", errNotLinux }

func tunSetCarrier(fd uintptr, on bool) error { return errNotLinux }

func getFlags(name string) (uint16, error) { return 0, errNotLinux }

func setFlags(name string, flags uint16) error { return errNotLinux }

func setMTU(name string, mtu int) error { return errNotLinux }

func setHwaddr(name string, a wimax.HardwareAddr) error { return errNotLinux }
