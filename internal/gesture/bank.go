package gesture

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/hid"
)

// Bank runs one independent Recognizer per button and reports what they
// recognize as Gesture values. Buttons never influence each other.
type Bank struct {
	mu        sync.Mutex
	clock     Clock
	onGesture func(Gesture)
	buttons   map[int]*slot
	order     []int
}

type slot struct {
	rec     *Recognizer
	level   bool
	pending *Timing // applied once rec is idle
}

// NewBank creates an empty bank. onGesture is called synchronously from
// SetLevels, ProcessEvent and Poll while the bank is locked, so it must not
// call back into the bank.
func NewBank(clock Clock, onGesture func(Gesture)) *Bank {
	return &Bank{
		clock:     clock,
		onGesture: onGesture,
		buttons:   make(map[int]*slot),
	}
}

// TimingFromConfig extracts the recognizer thresholds from a config timing
func TimingFromConfig(t config.TimingConfig) Timing {
	return Timing{
		DebounceMs:  t.DebounceMs,
		ClickGapMs:  t.ClickGapMs,
		LongPressMs: t.LongPressMs,
	}
}

// Add starts tracking a button. Adding a tracked button reconfigures it.
func (b *Bank) Add(button int, t Timing) error {
	if button < 0 || button >= hid.MaxButtons {
		return fmt.Errorf("button index %d out of range 0-%d", button, hid.MaxButtons-1)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.buttons[button]; ok {
		b.configure(s, t)
		return nil
	}

	rec := NewRecognizer()
	rec.Configure(t)
	rec.OnPressStart(b.emit(button, GesturePressStart))
	rec.OnClick(b.emit(button, GestureClick))
	rec.OnDoubleClick(b.emit(button, GestureDoubleClick))
	rec.OnMultiClick(b.emit(button, GestureMultiClick))
	rec.OnLongPressStart(b.emit(button, GestureLongPressStart))
	rec.OnDuringLongPress(b.emit(button, GestureLongPressHold))
	rec.OnLongPressStop(b.emit(button, GestureLongPressStop))

	b.buttons[button] = &slot{rec: rec}
	b.order = append(b.order, button)
	sort.Ints(b.order)
	return nil
}

// Remove stops tracking a button, dropping any gesture in progress
func (b *Bank) Remove(button int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.buttons[button]; !ok {
		return
	}
	delete(b.buttons, button)
	for i, idx := range b.order {
		if idx == button {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Buttons returns the tracked button indices in ascending order
func (b *Bank) Buttons() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]int, len(b.order))
	copy(out, b.order)
	return out
}

// Configure changes a button's thresholds. A button in the middle of a
// gesture keeps its old thresholds until it is idle again.
func (b *Bank) Configure(button int, t Timing) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.buttons[button]
	if !ok {
		return fmt.Errorf("button %d is not tracked", button)
	}
	b.configure(s, t)
	return nil
}

func (b *Bank) configure(s *slot, t Timing) {
	if s.rec.IsIdle() {
		s.rec.Configure(t)
		s.pending = nil
		return
	}
	s.pending = &t
}

// Timing returns the thresholds a button is currently judged by
func (b *Bank) Timing(button int) (Timing, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.buttons[button]
	if !ok {
		return Timing{}, false
	}
	return s.rec.Timing(), true
}

// State returns the recognizer state of a button
func (b *Bank) State(button int) (State, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.buttons[button]
	if !ok {
		return StateIdle, false
	}
	return s.rec.State(), true
}

// SetLevels records the level of every tracked button from a bitmask (bit n
// set means button n is pressed) and polls them all at the current time.
func (b *Bank) SetLevels(mask uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.NowMs()
	for _, idx := range b.order {
		s := b.buttons[idx]
		s.level = mask&(1<<idx) != 0
		b.poll(s, now)
	}
}

// ProcessEvent feeds a HID button report into the bank. The report's mask
// is the full set of held buttons for presses and releases alike, and the
// device timestamp is ignored in favor of the bank's clock.
func (b *Bank) ProcessEvent(event hid.Event) {
	b.SetLevels(event.ButtonMask)
}

// Poll polls every button with its last known level. It has to run
// periodically for click sequences to close and long presses to start.
func (b *Bank) Poll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.NowMs()
	for _, idx := range b.order {
		b.poll(b.buttons[idx], now)
	}
}

func (b *Bank) poll(s *slot, now uint32) {
	if s.pending != nil && s.rec.IsIdle() {
		s.rec.Configure(*s.pending)
		s.pending = nil
	}
	s.rec.Poll(s.level, now)
}

// Reset drops every gesture in progress without emitting anything and
// treats all buttons as released. Parked thresholds take effect immediately.
func (b *Bank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.buttons {
		s.rec.Reset()
		s.level = false
		if s.pending != nil {
			s.rec.Configure(*s.pending)
			s.pending = nil
		}
	}
}

func (b *Bank) emit(button int, t GestureType) Handler {
	return func(r *Recognizer) {
		if b.onGesture == nil {
			return
		}
		b.onGesture(Gesture{
			Type:   t,
			Button: button,
			Clicks: r.ClickCount(),
			HeldMs: r.HeldDuration(),
		})
	}
}
