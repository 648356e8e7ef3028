//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// withEchoDisabled turns terminal echo off for the duration of read.
func withEchoDisabled(stdin *os.File, read func() (string, error)) (string, error) {
	if stdin == nil {
		return "", errors.New("stdin unavailable")
	}

	fd := int(stdin.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return "", err
	}
	original := *termios
	silent := original
	silent.Lflag &^= unix.ECHO

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &silent); err != nil {
		return "", err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, ioctlSetTermios, &original)
	}()
	return read()
}
