//go:build linux

package cli

import "golang.org/x/sys/unix"

// ioctl requests for reading and writing terminal attributes.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
