package pty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"

	"github.com/pleimann/clickpad/internal/action"
	"github.com/pleimann/clickpad/internal/config"
)

const (
	outputBufferSize = 4096
	stopTimeout      = 2 * time.Second
)

// ErrNotStarted is returned when writing to a PTY that is not running
var ErrNotStarted = errors.New("PTY not started")

// Manager runs the TUI process inside a PTY and keeps its recent output
type Manager struct {
	command    string
	args       []string
	workingDir string

	mu     sync.Mutex
	ptmx   *os.File
	cmd    *exec.Cmd
	exited chan struct{}

	output *RingBuffer
	mirror io.Writer
}

// NewManager creates a manager for the TUI described by cfg
func NewManager(cfg config.TUIConfig) (*Manager, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("command is required")
	}

	return &Manager{
		command:    cfg.Command,
		args:       cfg.Args,
		workingDir: cfg.WorkingDir,
		output:     NewRingBuffer(outputBufferSize),
	}, nil
}

// Start starts the TUI process in a PTY
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil {
		return fmt.Errorf("TUI already started")
	}

	cmd := exec.CommandContext(ctx, m.command, m.args...)
	cmd.Dir = m.workingDir
	cmd.Env = os.Environ()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	m.ptmx = ptmx
	m.cmd = cmd
	m.exited = make(chan struct{})

	go m.readOutput(ptmx)
	go func(exited chan struct{}) {
		cmd.Wait()
		close(exited)
	}(m.exited)

	return nil
}

// Stop interrupts the TUI, kills it if it does not exit in time, and closes
// the PTY
func (m *Manager) Stop() {
	m.mu.Lock()
	cmd, exited := m.cmd, m.exited
	m.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		cmd.Process.Signal(os.Interrupt)
		select {
		case <-exited:
		case <-time.After(stopTimeout):
			cmd.Process.Kill()
			<-exited
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
}

// Done is closed when the TUI process exits. It is nil before Start.
func (m *Manager) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exited
}

// SetOutput copies everything the TUI prints to w as well, nil stops it
func (m *Manager) SetOutput(w io.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mirror = w
}

func (m *Manager) readOutput(ptmx *os.File) {
	buf := make([]byte, 1024)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			m.output.Write(buf[:n])

			m.mu.Lock()
			mirror := m.mirror
			m.mu.Unlock()
			if mirror != nil {
				mirror.Write(buf[:n])
			}
		}
		if err != nil {
			// EOF, or EIO once the child closed its side
			return
		}
	}
}

// Write writes raw bytes to the TUI
func (m *Manager) Write(p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return ErrNotStarted
	}
	_, err := m.ptmx.Write(p)
	return err
}

// WriteKey writes a key press to the TUI
func (m *Manager) WriteKey(key action.KeyPress) error {
	data := key.ToBytes()
	if data == nil {
		return fmt.Errorf("key %s has no terminal encoding", key)
	}
	return m.Write(data)
}

// WriteString writes a string to the TUI
func (m *Manager) WriteString(s string) error {
	return m.Write([]byte(s))
}

// GetRecentOutput returns recent output from the TUI
func (m *Manager) GetRecentOutput() string {
	return m.output.String()
}

// Resize resizes the PTY window
func (m *Manager) Resize(rows, cols uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptmx == nil {
		return ErrNotStarted
	}

	return pty.Setsize(m.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

// IsRunning returns whether the TUI process is running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	exited := m.exited
	m.mu.Unlock()

	if exited == nil {
		return false
	}
	select {
	case <-exited:
		return false
	default:
		return true
	}
}
