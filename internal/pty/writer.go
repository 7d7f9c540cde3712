package pty

import (
	"time"

	"github.com/pleimann/clickpad/internal/action"
)

// KeyTarget receives single key presses, normally a Manager
type KeyTarget interface {
	WriteKey(key action.KeyPress) error
}

// Writer is the action.KeyWriter of the app. It paces keystrokes for TUIs
// that drop input arriving too fast.
type Writer struct {
	target   KeyTarget
	keyDelay time.Duration
	sleep    func(time.Duration)
}

// NewWriter creates a writer that waits keyDelay after every key
func NewWriter(target KeyTarget, keyDelay time.Duration) *Writer {
	return &Writer{
		target:   target,
		keyDelay: keyDelay,
		sleep:    time.Sleep,
	}
}

// WriteKey writes a single key press
func (w *Writer) WriteKey(key action.KeyPress) error {
	if err := w.target.WriteKey(key); err != nil {
		return err
	}
	if w.keyDelay > 0 {
		w.sleep(w.keyDelay)
	}
	return nil
}
