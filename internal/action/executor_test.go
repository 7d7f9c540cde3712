package action

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    KeyPress
		wantErr bool
	}{
		{
			name:  "simple letter",
			input: "a",
			want:  KeyPress{Key: "a"},
		},
		{
			name:  "uppercase letter",
			input: "A",
			want:  KeyPress{Key: "a"}, // Normalized to lowercase
		},
		{
			name:  "number",
			input: "5",
			want:  KeyPress{Key: "5"},
		},
		{
			name:  "special key",
			input: "enter",
			want:  KeyPress{Key: "enter"},
		},
		{
			name:  "ctrl modifier",
			input: "ctrl+c",
			want:  KeyPress{Ctrl: true, Key: "c"},
		},
		{
			name:  "alt modifier",
			input: "alt+f4",
			want:  KeyPress{Alt: true, Key: "f4"},
		},
		{
			name:  "shift modifier",
			input: "shift+tab",
			want:  KeyPress{Shift: true, Key: "tab"},
		},
		{
			name:  "meta modifier",
			input: "meta+a",
			want:  KeyPress{Meta: true, Key: "a"},
		},
		{
			name:  "cmd modifier alias",
			input: "cmd+q",
			want:  KeyPress{Meta: true, Key: "q"},
		},
		{
			name:  "multiple modifiers",
			input: "ctrl+shift+z",
			want:  KeyPress{Ctrl: true, Shift: true, Key: "z"},
		},
		{
			name:  "all modifiers",
			input: "ctrl+alt+shift+meta+x",
			want:  KeyPress{Ctrl: true, Alt: true, Shift: true, Meta: true, Key: "x"},
		},
		{
			name:  "function key",
			input: "f12",
			want:  KeyPress{Key: "f12"},
		},
		{
			name:  "arrow key",
			input: "up",
			want:  KeyPress{Key: "up"},
		},
		{
			name:  "escape",
			input: "esc",
			want:  KeyPress{Key: "esc"},
		},
		{
			name:  "escape full name",
			input: "escape",
			want:  KeyPress{Key: "escape"},
		},
		{
			name:    "unknown modifier",
			input:   "foo+a",
			wantErr: true,
		},
		{
			name:    "empty key",
			input:   "ctrl+",
			wantErr: true,
		},
		{
			name:    "invalid key name",
			input:   "invalid_key",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKey(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyPressToBytes(t *testing.T) {
	tests := []struct {
		input string
		want  []byte
	}{
		// Control letters
		{"ctrl+c", []byte{0x03}},
		{"ctrl+a", []byte{0x01}},
		{"ctrl+Z", []byte{0x1a}},

		// Control punctuation
		{"ctrl+[", []byte{0x1b}},
		{"ctrl+\\", []byte{0x1c}},
		{"ctrl+]", []byte{0x1d}},
		{"ctrl+^", []byte{0x1e}},
		{"ctrl+_", []byte{0x1f}},
		{"ctrl+?", []byte{0x7f}},

		// Ctrl on something without a control byte falls through
		{"ctrl+1", []byte{'1'}},
		{"ctrl+up", []byte{0x1b, '[', 'A'}},
		{"ctrl+alt+c", []byte{0x1b, 'c'}},

		// Named keys and their aliases
		{"enter", []byte{'\r'}},
		{"return", []byte{'\r'}},
		{"escape", []byte{0x1b}},
		{"pgdn", []byte{0x1b, '[', '6', '~'}},
		{"ins", []byte{0x1b, '[', '2', '~'}},
		{"f4", []byte{0x1b, 'O', 'S'}},
		{"f5", []byte{0x1b, '[', '1', '5', '~'}},
		{"f11", []byte{0x1b, '[', '2', '3', '~'}},

		// Plain, alt and shifted characters
		{"x", []byte{'x'}},
		{"alt+x", []byte{0x1b, 'x'}},
		{"shift+a", []byte{'A'}},
		{"shift+1", []byte{'1'}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kp, err := ParseKey(tt.input)
			if err != nil {
				t.Fatalf("ParseKey(%q) error = %v", tt.input, err)
			}
			if got := kp.ToBytes(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamedKeysRoundTrip(t *testing.T) {
	for name, seq := range specialKeys {
		kp, err := ParseKey(strings.ToUpper(name))
		if err != nil {
			t.Errorf("ParseKey(%q) error = %v", strings.ToUpper(name), err)
			continue
		}
		if kp.Key != name {
			t.Errorf("ParseKey(%q).Key = %q, want %q", strings.ToUpper(name), kp.Key, name)
		}
		if got := kp.ToBytes(); !reflect.DeepEqual(got, seq) {
			t.Errorf("%s ToBytes() = %v, want %v", name, got, seq)
		}
	}
}

func TestIsValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{"/", true},
		{"é", true}, // one rune, two bytes
		{"pgup", true},
		{"f12", true},
		{"f13", false},
		{"ctrl", false},
		{"ab", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isValidKey(tt.key); got != tt.want {
			t.Errorf("isValidKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

// Mock KeyWriter for testing Executor
type mockKeyWriter struct {
	keys []KeyPress
}

func (m *mockKeyWriter) WriteKey(key KeyPress) error {
	m.keys = append(m.keys, key)
	return nil
}

func TestExecutorExecute(t *testing.T) {
	mock := &mockKeyWriter{}
	executor := NewExecutor(mock)

	keys := []string{"ctrl+c", "enter", "a"}
	err := executor.Execute(keys)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(mock.keys) != 3 {
		t.Fatalf("wrote %d keys, want 3", len(mock.keys))
	}

	if !mock.keys[0].Ctrl || mock.keys[0].Key != "c" {
		t.Errorf("key[0] = %+v, want ctrl+c", mock.keys[0])
	}
	if mock.keys[1].Key != "enter" {
		t.Errorf("key[1] = %+v, want enter", mock.keys[1])
	}
	if mock.keys[2].Key != "a" {
		t.Errorf("key[2] = %+v, want a", mock.keys[2])
	}
}

func TestExecutorExecuteInvalidKey(t *testing.T) {
	mock := &mockKeyWriter{}
	executor := NewExecutor(mock)

	err := executor.Execute([]string{"invalid_key_name"})
	if err == nil {
		t.Error("Execute() expected error for invalid key, got nil")
	}
}

func TestExecutorExecuteInvalidKeyWritesNothing(t *testing.T) {
	mock := &mockKeyWriter{}
	executor := NewExecutor(mock)

	err := executor.Execute([]string{"a", "ctrl+nope", "b"})
	if err == nil {
		t.Fatal("Execute() expected error, got nil")
	}
	if len(mock.keys) != 0 {
		t.Errorf("wrote %d keys before failing, want 0", len(mock.keys))
	}
}

type failingKeyWriter struct {
	writes int
}

func (f *failingKeyWriter) WriteKey(KeyPress) error {
	f.writes++
	return errors.New("pty closed")
}

func TestExecutorExecuteWriteError(t *testing.T) {
	w := &failingKeyWriter{}
	executor := NewExecutor(w)

	err := executor.Execute([]string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "pty closed") {
		t.Fatalf("Execute() error = %v, want wrapped write error", err)
	}
	if w.writes != 1 {
		t.Errorf("writes = %d, want to stop after the first failure", w.writes)
	}
}

func TestKeyPressString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a", "a"},
		{"Ctrl+Shift+C", "ctrl+shift+c"},
		{"cmd+alt+f4", "alt+meta+f4"},
	}

	for _, tt := range tests {
		kp, err := ParseKey(tt.input)
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", tt.input, err)
		}
		if got := kp.String(); got != tt.want {
			t.Errorf("ParseKey(%q).String() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToBytesDoesNotAliasTable(t *testing.T) {
	b := KeyPress{Key: "up"}.ToBytes()
	b[0] = 'X'
	if got := (KeyPress{Key: "up"}).ToBytes(); got[0] != 0x1b {
		t.Errorf("second ToBytes() = %v, want fresh escape sequence", got)
	}
}
