package action

import (
	"reflect"
	"testing"

	"github.com/pleimann/clickpad/internal/config"
	"github.com/pleimann/clickpad/internal/gesture"
)

func holdConfig(repeatMs int) *config.Config {
	return &config.Config{
		Timing: config.TimingConfig{HoldRepeatMs: repeatMs},
		Buttons: []config.Button{
			{
				Index:          0,
				Click:          &config.KeyAction{Keys: []string{"enter"}},
				LongPressStart: &config.KeyAction{Keys: []string{"s"}},
				LongPressHold:  &config.KeyAction{Keys: []string{"down"}},
				LongPressStop:  &config.KeyAction{Keys: []string{"e"}},
			},
			{
				Index:         1,
				Timing:        &config.TimingConfig{HoldRepeatMs: 50},
				LongPressHold: &config.KeyAction{Keys: []string{"up"}},
			},
		},
	}
}

func (m *mockKeyWriter) names() []string {
	var out []string
	for _, k := range m.keys {
		out = append(out, k.Key)
	}
	return out
}

// longPress emits a long press on button that is held from 0 to stopMs,
// polled every 10ms.
func longPress(t *testing.T, d *Dispatcher, button int, stopMs uint32) {
	t.Helper()
	emit := func(typ gesture.GestureType, held uint32) {
		if _, err := d.Dispatch(gesture.Gesture{Type: typ, Button: button, Clicks: 1, HeldMs: held}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	emit(gesture.GestureLongPressStart, 810)
	for held := uint32(820); held < stopMs; held += 10 {
		emit(gesture.GestureLongPressHold, held)
	}
	emit(gesture.GestureLongPressStop, stopMs)
}

func TestDispatcherThrottlesHold(t *testing.T) {
	w := &mockKeyWriter{}
	d := NewDispatcher(holdConfig(100), NewExecutor(w))

	longPress(t, d, 0, 1100)

	// Holds at 820, 920 and 1020.
	want := []string{"s", "down", "down", "down", "e"}
	if got := w.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestDispatcherPerButtonRepeat(t *testing.T) {
	w := &mockKeyWriter{}
	d := NewDispatcher(holdConfig(100), NewExecutor(w))

	longPress(t, d, 1, 1000)

	// Holds at 820, 870, 920 and 970; button 1 maps nothing else.
	want := []string{"up", "up", "up", "up"}
	if got := w.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestDispatcherFirstHoldAfterStartFires(t *testing.T) {
	w := &mockKeyWriter{}
	d := NewDispatcher(holdConfig(1000), NewExecutor(w))

	longPress(t, d, 0, 900)
	w.keys = nil
	longPress(t, d, 0, 900)

	want := []string{"s", "down", "e"}
	if got := w.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestDispatcherZeroRepeatFiresEveryHold(t *testing.T) {
	w := &mockKeyWriter{}
	cfg := holdConfig(0)
	d := NewDispatcher(cfg, NewExecutor(w))

	longPress(t, d, 0, 900)

	// 820 through 890.
	if got := len(w.keys); got != 10 {
		t.Errorf("wrote %d keys, want start + 8 holds + stop", got)
	}
}

func TestDispatcherUnmapped(t *testing.T) {
	w := &mockKeyWriter{}
	d := NewDispatcher(holdConfig(100), NewExecutor(w))

	ok, err := d.Dispatch(gesture.Gesture{Type: gesture.GestureDoubleClick, Button: 0, Clicks: 2})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if ok {
		t.Error("Dispatch() = true for unmapped gesture")
	}
	if len(w.keys) != 0 {
		t.Errorf("wrote %v, want nothing", w.names())
	}
}

func TestDispatcherExecuteError(t *testing.T) {
	d := NewDispatcher(holdConfig(100), NewExecutor(&failingKeyWriter{}))

	ok, err := d.Dispatch(gesture.Gesture{Type: gesture.GestureClick, Button: 0, Clicks: 1})
	if err == nil {
		t.Fatal("Dispatch() expected error, got nil")
	}
	if ok {
		t.Error("Dispatch() = true on error")
	}
}

func TestDispatcherReload(t *testing.T) {
	w := &mockKeyWriter{}
	d := NewDispatcher(holdConfig(100), NewExecutor(w))

	cfg := holdConfig(1000)
	cfg.Buttons[0].Click = &config.KeyAction{Keys: []string{"tab"}}
	d.Reload(cfg)

	if _, err := d.Dispatch(gesture.Gesture{Type: gesture.GestureClick, Button: 0, Clicks: 1}); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	longPress(t, d, 0, 1100)

	want := []string{"tab", "s", "down", "e"}
	if got := w.names(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	if d.Mapper().Len() != 5 {
		t.Errorf("Mapper().Len() = %d, want 5", d.Mapper().Len())
	}
}
