package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var errNotATerminal = errors.New("stdin is not a terminal")

// promptSecret asks for a secret on the terminal without echoing it.
func promptSecret(stdin *os.File, prompt io.Writer, label string) (string, error) {
	if stdin == nil || !isatty.IsTerminal(stdin.Fd()) {
		return "", errNotATerminal
	}

	fmt.Fprintf(prompt, "%s: ", label)
	secret, err := withEchoDisabled(stdin, func() (string, error) {
		return readSecretLine(stdin)
	})
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	return secret, nil
}

func readSecretLine(source io.Reader) (string, error) {
	line, err := bufio.NewReader(source).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
