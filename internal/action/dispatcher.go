package action

import (
	"sync"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/gesture"
)

// Dispatcher executes the key sequence mapped to each gesture.
//
// long_press_hold fires on every poll while a button is held, so its
// actions are throttled per button to one per hold_repeat_ms of held time.
// The first hold after a long press start always goes through.
type Dispatcher struct {
	mapper   *Mapper
	executor *Executor

	mu            sync.Mutex
	defaultRepeat uint32
	repeat        map[int]uint32
	lastHold      map[int]uint32 // HeldMs of the last executed hold
}

// NewDispatcher creates a dispatcher for the buttons of cfg
func NewDispatcher(cfg *config.Config, executor *Executor) *Dispatcher {
	d := &Dispatcher{
		mapper:   NewMapper(cfg),
		executor: executor,
		lastHold: make(map[int]uint32),
	}
	d.setRepeat(cfg)
	return d
}

func (d *Dispatcher) setRepeat(cfg *config.Config) {
	d.defaultRepeat = uint32(max(cfg.Timing.HoldRepeatMs, 0))
	d.repeat = make(map[int]uint32, len(cfg.Buttons))
	for _, btn := range cfg.Buttons {
		d.repeat[btn.Index] = uint32(max(cfg.TimingFor(btn.Index).HoldRepeatMs, 0))
	}
}

// Dispatch executes the keys mapped to g. It reports whether anything was
// executed; unmapped and throttled gestures return false with no error.
func (d *Dispatcher) Dispatch(g gesture.Gesture) (bool, error) {
	if !d.admit(g) {
		return false, nil
	}

	keys := d.mapper.Map(g)
	if len(keys) == 0 {
		return false, nil
	}
	if err := d.executor.Execute(keys); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) admit(g gesture.Gesture) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch g.Type {
	case gesture.GestureLongPressStart, gesture.GestureLongPressStop:
		delete(d.lastHold, g.Button)
	case gesture.GestureLongPressHold:
		repeat, ok := d.repeat[g.Button]
		if !ok {
			repeat = d.defaultRepeat
		}
		if last, seen := d.lastHold[g.Button]; seen && g.HeldMs-last < repeat {
			return false
		}
		d.lastHold[g.Button] = g.HeldMs
	}
	return true
}

// Reload swaps in the mappings and hold throttles of a new config
func (d *Dispatcher) Reload(cfg *config.Config) {
	d.mapper.Reload(cfg)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.setRepeat(cfg)
}

// Mapper returns the gesture to key mapping in use
func (d *Dispatcher) Mapper() *Mapper {
	return d.mapper
}
