//go:build windows

package cli

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

func withEchoDisabled(stdin *os.File, read func() (string, error)) (string, error) {
	if stdin == nil {
		return "", errors.New("stdin unavailable")
	}

	handle := windows.Handle(stdin.Fd())
	var original uint32
	if err := windows.GetConsoleMode(handle, &original); err != nil {
		return "", err
	}
	if err := windows.SetConsoleMode(handle, original&^windows.ENABLE_ECHO_INPUT); err != nil {
		return "", err
	}
	defer func() {
		_ = windows.SetConsoleMode(handle, original)
	}()
	return read()
}
