package gesture

import (
	"fmt"
	"math"
)

// State is the position of a Recognizer in its state machine
type State uint8

const (
	// StateIdle waits for the initial press
	StateIdle State = iota
	// StateDebounceOrLongPress waits for the first release or the long press threshold
	StateDebounceOrLongPress
	// StateDetectClick waits for another press or for the click gap to run out
	StateDetectClick
	// StateCountClicks waits for the release of a follow-up press
	StateCountClicks
	// StateLongPress waits for the release that ends a long press
	StateLongPress
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebounceOrLongPress:
		return "debounce_or_long_press"
	case StateDetectClick:
		return "detect_click"
	case StateCountClicks:
		return "count_clicks"
	case StateLongPress:
		return "long_press"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Timing holds the thresholds of a Recognizer, all in milliseconds
type Timing struct {
	DebounceMs  uint16
	ClickGapMs  uint16
	LongPressMs uint16
}

// DefaultTiming returns the thresholds a new Recognizer starts with
func DefaultTiming() Timing {
	return Timing{
		DebounceMs:  50,
		ClickGapMs:  400,
		LongPressMs: 800,
	}
}

// Handler is called synchronously from Poll. The recognizer is passed back
// so the handler can query ClickCount, HeldDuration and friends.
type Handler func(r *Recognizer)

// Recognizer turns a sampled, possibly bouncy, button level into press,
// click, multi-click and long press gestures.
//
// It never sleeps and owns no timers: every step happens inside Poll, so the
// caller must poll continuously, including while nothing seems to happen.
// A pending click sequence is only closed by the first poll after the click
// gap has passed. A Recognizer is not safe for concurrent use.
type Recognizer struct {
	timing Timing
	state  State

	pressStart  uint32
	releaseTime uint32
	lastPoll    uint32
	clicks      uint8

	onPressStart      Handler
	onClick           Handler
	onDoubleClick     Handler
	onMultiClick      Handler
	onLongPressStart  Handler
	onDuringLongPress Handler
	onLongPressStop   Handler
}

// NewRecognizer creates an idle recognizer with DefaultTiming
func NewRecognizer() *Recognizer {
	return &Recognizer{timing: DefaultTiming()}
}

// Configure replaces all thresholds. Timestamps are left alone, so calling it
// mid-gesture is safe but the running gesture is judged by the new values.
func (r *Recognizer) Configure(t Timing) {
	r.timing = t
}

// SetDebounce sets the debounce window
func (r *Recognizer) SetDebounce(ms uint16) { r.timing.DebounceMs = ms }

// SetClickGap sets the maximum gap between clicks of one sequence
func (r *Recognizer) SetClickGap(ms uint16) { r.timing.ClickGapMs = ms }

// SetLongPress sets the hold time after which a press becomes a long press
func (r *Recognizer) SetLongPress(ms uint16) { r.timing.LongPressMs = ms }

// Timing returns the current thresholds
func (r *Recognizer) Timing() Timing { return r.timing }

// OnPressStart registers the handler fired when the first press of a
// sequence is released after the debounce window.
func (r *Recognizer) OnPressStart(h Handler) { r.onPressStart = h }

// OnClick registers the handler for a completed single click
func (r *Recognizer) OnClick(h Handler) { r.onClick = h }

// OnDoubleClick registers the handler for a completed double click
func (r *Recognizer) OnDoubleClick(h Handler) { r.onDoubleClick = h }

// OnMultiClick registers the handler for a completed sequence of three or
// more clicks. ClickCount tells how many.
func (r *Recognizer) OnMultiClick(h Handler) { r.onMultiClick = h }

// OnLongPressStart registers the handler fired once when a hold crosses the
// long press threshold.
func (r *Recognizer) OnLongPressStart(h Handler) { r.onLongPressStart = h }

// OnDuringLongPress registers the handler fired on every poll while a long
// press is held. It is not rate limited.
func (r *Recognizer) OnDuringLongPress(h Handler) { r.onDuringLongPress = h }

// OnLongPressStop registers the handler fired on the release that ends a
// long press.
func (r *Recognizer) OnLongPressStop(h Handler) { r.onLongPressStop = h }

// Poll advances the state machine by one step using the sampled level and
// the current time in milliseconds. Registered handlers run before Poll
// returns.
//
// The debounce and click gap windows are only as precise as the polling
// rate. Polling slower than the debounce window makes every release look
// valid; polling slower than the click gap merges nothing into sequences.
func (r *Recognizer) Poll(pressed bool, now uint32) {
	r.lastPoll = now

	switch r.state {
	case StateIdle:
		if pressed {
			r.state = StateDebounceOrLongPress
			r.pressStart = now
			r.clicks = 0
		}

	case StateDebounceOrLongPress:
		held := elapsed(now, r.pressStart)
		if pressed {
			if held > uint32(r.timing.LongPressMs) {
				r.state = StateLongPress
				r.clicks = 1
				r.fire(r.onLongPressStart)
			}
			return
		}
		if held < uint32(r.timing.DebounceMs) {
			// Too short to be a real press.
			r.state = StateIdle
			r.releaseTime = now
			return
		}
		r.state = StateDetectClick
		r.releaseTime = now
		r.fire(r.onPressStart)

	case StateDetectClick:
		gap := elapsed(now, r.releaseTime)
		if gap > uint32(r.timing.ClickGapMs) {
			r.countClick()
			r.state = StateIdle
			r.dispatchClicks()
			return
		}
		if pressed && gap > uint32(r.timing.DebounceMs) {
			r.state = StateCountClicks
			r.pressStart = now
		}

	case StateCountClicks:
		// Stay here for at least the debounce window so a bouncing repress
		// cannot register as a release.
		if !pressed && elapsed(now, r.pressStart) >= uint32(r.timing.DebounceMs) {
			r.countClick()
			r.state = StateDetectClick
			r.releaseTime = now
		}

	case StateLongPress:
		if pressed {
			r.fire(r.onDuringLongPress)
			return
		}
		r.state = StateIdle
		r.releaseTime = now
		r.fire(r.onLongPressStop)
	}
}

// countClick saturates instead of wrapping so an endless sequence still
// dispatches as a multi-click
func (r *Recognizer) countClick() {
	if r.clicks < math.MaxUint8 {
		r.clicks++
	}
}

func (r *Recognizer) dispatchClicks() {
	switch r.clicks {
	case 1:
		r.fire(r.onClick)
	case 2:
		r.fire(r.onDoubleClick)
	default:
		r.fire(r.onMultiClick)
	}
}

func (r *Recognizer) fire(h Handler) {
	if h != nil {
		h(r)
	}
}

// Reset drops any gesture in progress and returns to idle without firing
// handlers.
func (r *Recognizer) Reset() {
	r.state = StateIdle
	r.pressStart = 0
	r.releaseTime = 0
	r.lastPoll = 0
	r.clicks = 0
}

// State returns the current state
func (r *Recognizer) State() State { return r.state }

// IsIdle reports whether no gesture is in progress
func (r *Recognizer) IsIdle() bool { return r.state == StateIdle }

// IsLongPressed reports whether a long press is being held
func (r *Recognizer) IsLongPressed() bool { return r.state == StateLongPress }

// ClickCount returns the click counter, which stops at 255. Once a sequence
// has been dispatched it holds that sequence's count until the next press
// starts a new one. Reset clears it.
func (r *Recognizer) ClickCount() uint8 { return r.clicks }

// HeldDuration returns how long the current press has been held as of the
// last poll, or how long the last press lasted once it was released.
func (r *Recognizer) HeldDuration() uint32 {
	switch r.state {
	case StateDebounceOrLongPress, StateCountClicks, StateLongPress:
		return elapsed(r.lastPoll, r.pressStart)
	default:
		return elapsed(r.releaseTime, r.pressStart)
	}
}
