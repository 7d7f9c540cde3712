// Package gpio samples buttons wired straight to Raspberry Pi GPIO pins.
package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/pleimann/clickpad/internal/config"
)

// Pin is the part of rpio.Pin the reader uses
type Pin interface {
	Input()
	PullUp()
	PullDown()
	PullOff()
	Read() rpio.State
}

type line struct {
	button    int
	pin       Pin
	activeLow bool
}

// Reader samples a set of input pins into a button bitmask
type Reader struct {
	lines []line
	close func() error
}

// Open maps the GPIO memory and configures every pin as an input with the
// requested pull resistor.
func Open(pins []config.PinConfig) (*Reader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open gpio: %w", err)
	}

	r, err := newReader(pins, func(n uint8) Pin { return rpio.Pin(n) })
	if err != nil {
		rpio.Close()
		return nil, err
	}
	r.close = rpio.Close
	return r, nil
}

func newReader(pins []config.PinConfig, pinFor func(uint8) Pin) (*Reader, error) {
	r := &Reader{}
	for _, pc := range pins {
		if pc.Button < 0 || pc.Button >= config.MaxButtons {
			return nil, fmt.Errorf("pin %d: button index %d out of range", pc.Pin, pc.Button)
		}

		p := pinFor(pc.Pin)
		p.Input()
		switch pc.Pull {
		case config.PullUp:
			p.PullUp()
		case config.PullDown:
			p.PullDown()
		case "", config.PullOff:
			p.PullOff()
		default:
			return nil, fmt.Errorf("pin %d: unknown pull mode %q", pc.Pin, pc.Pull)
		}

		r.lines = append(r.lines, line{button: pc.Button, pin: p, activeLow: pc.ActiveLow})
	}
	return r, nil
}

// Mask reads every pin once. Bit n is set when button n is pressed.
func (r *Reader) Mask() uint16 {
	var mask uint16
	for _, l := range r.lines {
		high := l.pin.Read() == rpio.High
		if high != l.activeLow {
			mask |= 1 << l.button
		}
	}
	return mask
}

// Close releases the GPIO memory mapping
func (r *Reader) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
