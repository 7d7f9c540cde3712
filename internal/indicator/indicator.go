// Package indicator drives the per-button LEDs from recognized gestures.
package indicator

import (
	"fmt"
	"sync"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/gesture"
)

// Output receives the full LED mask whenever it changes. bit n lights the
// LED of button n.
type Output interface {
	SendIndicators(mask uint16) error
}

// Indicator tracks LED state per button according to its configured mode:
//
//	toggle  flips on every click
//	hold    lit from long_press_start until long_press_stop
type Indicator struct {
	mu    sync.Mutex
	out   Output
	modes map[int]string
	mask  uint16
}

// New creates an indicator with every LED off
func New(cfg *config.Config, out Output) *Indicator {
	return &Indicator{
		out:   out,
		modes: modesFrom(cfg),
	}
}

func modesFrom(cfg *config.Config) map[int]string {
	modes := make(map[int]string)
	for _, btn := range cfg.Buttons {
		switch btn.Indicator {
		case config.IndicatorToggle, config.IndicatorHold:
			modes[btn.Index] = btn.Indicator
		}
	}
	return modes
}

// Handle updates the LEDs for a gesture and sends the mask if it changed
func (i *Indicator) Handle(g gesture.Gesture) error {
	if g.Button < 0 || g.Button >= config.MaxButtons {
		return nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	bit := uint16(1) << g.Button
	next := i.mask

	switch i.modes[g.Button] {
	case config.IndicatorToggle:
		if g.Type == gesture.GestureClick {
			next ^= bit
		}
	case config.IndicatorHold:
		switch g.Type {
		case gesture.GestureLongPressStart:
			next |= bit
		case gesture.GestureLongPressStop:
			next &^= bit
		}
	}

	return i.set(next)
}

func (i *Indicator) set(mask uint16) error {
	if mask == i.mask {
		return nil
	}
	if err := i.out.SendIndicators(mask); err != nil {
		return fmt.Errorf("failed to send indicators: %w", err)
	}
	i.mask = mask
	return nil
}

// Mask returns the LED state last sent
func (i *Indicator) Mask() uint16 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.mask
}

// Reload applies new modes. LEDs of buttons whose mode changed are turned
// off.
func (i *Indicator) Reload(cfg *config.Config) error {
	modes := modesFrom(cfg)

	i.mu.Lock()
	defer i.mu.Unlock()

	next := i.mask
	for b := 0; b < config.MaxButtons; b++ {
		if modes[b] != i.modes[b] {
			next &^= 1 << b
		}
	}
	i.modes = modes
	return i.set(next)
}

// Sync resends the current mask, e.g. after the device reconnected
func (i *Indicator) Sync() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.out.SendIndicators(i.mask)
}

// Clear turns every LED off
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.set(0)
}
