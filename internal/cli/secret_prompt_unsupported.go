//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

import (
	"errors"
	"os"
)

func withEchoDisabled(_ *os.File, _ func() (string, error)) (string, error) {
	return "", errors.New("hidden input is not supported on this platform")
}
