package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/pleimann/clickpad/internal/pty"
)

// ptyInput adapts the PTY manager to io.Writer for io.Copy
type ptyInput struct {
	m *pty.Manager
}

func (p ptyInput) Write(b []byte) (int, error) {
	if err := p.m.Write(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

// attachTerminal connects the controlling terminal to the TUI: the terminal
// goes into raw mode, keystrokes are forwarded to the PTY, TUI output is
// mirrored and the PTY follows the terminal size. The returned function
// undoes all of it.
func attachTerminal(m *pty.Manager) (func(), error) {
	in, out := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	if !term.IsTerminal(in) || !term.IsTerminal(out) {
		return nil, errors.New("stdin or stdout is not a terminal")
	}

	resize := func() {
		cols, rows, err := term.GetSize(out)
		if err == nil {
			m.Resize(uint16(rows), uint16(cols))
		}
	}
	resize()

	state, err := term.MakeRaw(in)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	m.SetOutput(os.Stdout)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-winch:
				resize()
			case <-done:
				return
			}
		}
	}()

	// Blocks on stdin until the process exits.
	go io.Copy(ptyInput{m}, os.Stdin)

	return func() {
		close(done)
		signal.Stop(winch)
		m.SetOutput(nil)
		term.Restore(in, state)
	}, nil
}
