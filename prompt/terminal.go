// notebook/prompt/terminal.go

// Package prompt asks the codec's questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal implements codec.Policy on a console. Passwords are read without
// echo when In is a terminal and as plain lines otherwise, so piped input
// works in scripts.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// MaxAttempts cancels the password prompt after that many tries. Zero
	// means no limit.
	MaxAttempts int

	attempts int
	lines    *bufio.Reader
}

func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr, MaxAttempts: 3}
}

func (t *Terminal) ConfirmOpenNewerMinorVersion() bool {
	fmt.Fprint(t.Out, "This notebook was written by a newer version. Unknown data will be lost if you save it.\nOpen anyway? [y/N] ")
	line, err := t.readLine()
	if err != nil {
		fmt.Fprintln(t.Out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (t *Terminal) PromptPassword() ([]byte, bool) {
	if t.MaxAttempts > 0 && t.attempts >= t.MaxAttempts {
		return nil, true
	}
	t.attempts++

	fmt.Fprint(t.Out, "Password: ")
	if f, ok := t.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.Out)
		if err != nil {
			return nil, true
		}
		return pw, false
	}

	line, err := t.readLine()
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return nil, true
	}
	return []byte(strings.TrimRight(line, "\r\n")), false
}

func (t *Terminal) WarnWrongPassword() {
	fmt.Fprintln(t.Out, "Wrong password.")
}

func (t *Terminal) readLine() (string, error) {
	if t.lines == nil {
		t.lines = bufio.NewReader(t.In)
	}
	return t.lines.ReadString('\n')
}
