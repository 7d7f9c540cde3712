package action

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// KeyWriter is the interface for writing key sequences
type KeyWriter interface {
	WriteKey(key KeyPress) error
}

// Executor executes key sequences
type Executor struct {
	writer KeyWriter
}

// NewExecutor creates a new action executor
func NewExecutor(writer KeyWriter) *Executor {
	return &Executor{writer: writer}
}

// Execute parses every key of a sequence before writing any of them, so a
// typo in the config never sends half a sequence.
func (e *Executor) Execute(keys []string) error {
	parsed := make([]KeyPress, 0, len(keys))
	for _, keyStr := range keys {
		key, err := ParseKey(keyStr)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", keyStr, err)
		}
		parsed = append(parsed, key)
	}

	for i, key := range parsed {
		if err := e.writer.WriteKey(key); err != nil {
			return fmt.Errorf("failed to write key %q: %w", keys[i], err)
		}
	}
	return nil
}

// KeyPress represents a parsed key with modifiers
type KeyPress struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
	Key   string // The base key (e.g., "c", "enter", "f1")
}

func (kp KeyPress) String() string {
	var sb strings.Builder
	for _, m := range []struct {
		on   bool
		name string
	}{{kp.Ctrl, "ctrl"}, {kp.Alt, "alt"}, {kp.Shift, "shift"}, {kp.Meta, "meta"}} {
		if m.on {
			sb.WriteString(m.name)
			sb.WriteString("+")
		}
	}
	sb.WriteString(kp.Key)
	return sb.String()
}

// ParseKey parses a key string like "ctrl+shift+c" into a KeyPress
func ParseKey(s string) (KeyPress, error) {
	var kp KeyPress

	parts := strings.Split(strings.ToLower(s), "+")
	last := len(parts) - 1
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i == last {
			kp.Key = part
			break
		}

		switch part {
		case "ctrl", "control":
			kp.Ctrl = true
		case "alt", "option":
			kp.Alt = true
		case "shift":
			kp.Shift = true
		case "meta", "cmd", "command", "win", "super":
			kp.Meta = true
		default:
			return KeyPress{}, fmt.Errorf("unknown modifier: %s", part)
		}
	}

	if kp.Key == "" {
		return KeyPress{}, fmt.Errorf("no key specified")
	}
	if !isValidKey(kp.Key) {
		return KeyPress{}, fmt.Errorf("invalid key: %s", kp.Key)
	}

	return kp, nil
}

// Terminal byte sequences of the named keys
var specialKeys = map[string][]byte{
	"enter":     {'\r'},
	"return":    {'\r'},
	"tab":       {'\t'},
	"esc":       {0x1b},
	"escape":    {0x1b},
	"space":     {' '},
	"backspace": {0x7f},
	"delete":    {0x1b, '[', '3', '~'},
	"del":       {0x1b, '[', '3', '~'},
	"insert":    {0x1b, '[', '2', '~'},
	"ins":       {0x1b, '[', '2', '~'},
	"home":      {0x1b, '[', 'H'},
	"end":       {0x1b, '[', 'F'},
	"pageup":    {0x1b, '[', '5', '~'},
	"pgup":      {0x1b, '[', '5', '~'},
	"pagedown":  {0x1b, '[', '6', '~'},
	"pgdn":      {0x1b, '[', '6', '~'},
	"up":        {0x1b, '[', 'A'},
	"down":      {0x1b, '[', 'B'},
	"right":     {0x1b, '[', 'C'},
	"left":      {0x1b, '[', 'D'},
	"f1":        {0x1b, 'O', 'P'},
	"f2":        {0x1b, 'O', 'Q'},
	"f3":        {0x1b, 'O', 'R'},
	"f4":        {0x1b, 'O', 'S'},
	"f5":        {0x1b, '[', '1', '5', '~'},
	"f6":        {0x1b, '[', '1', '7', '~'},
	"f7":        {0x1b, '[', '1', '8', '~'},
	"f8":        {0x1b, '[', '1', '9', '~'},
	"f9":        {0x1b, '[', '2', '0', '~'},
	"f10":       {0x1b, '[', '2', '1', '~'},
	"f11":       {0x1b, '[', '2', '3', '~'},
	"f12":       {0x1b, '[', '2', '4', '~'},
}

// Control bytes for ctrl+ punctuation
var ctrlPunct = map[byte]byte{
	'[':  0x1b, // ESC
	'\\': 0x1c, // FS
	']':  0x1d, // GS
	'^':  0x1e, // RS
	'_':  0x1f, // US
	'?':  0x7f, // DEL
}

// isValidKey checks if a key name is valid
func isValidKey(key string) bool {
	if utf8.RuneCountInString(key) == 1 {
		return true
	}
	_, ok := specialKeys[key]
	return ok
}

// ToBytes converts a KeyPress to the bytes to write to a PTY
func (kp KeyPress) ToBytes() []byte {
	if kp.Ctrl && !kp.Alt && !kp.Meta && len(kp.Key) == 1 {
		char := kp.Key[0]
		switch {
		case char >= 'a' && char <= 'z':
			return []byte{char - 'a' + 1}
		case char >= 'A' && char <= 'Z':
			return []byte{char - 'A' + 1}
		}
		if b, ok := ctrlPunct[char]; ok {
			return []byte{b}
		}
	}

	if seq, ok := specialKeys[kp.Key]; ok {
		out := make([]byte, len(seq))
		copy(out, seq)
		return out
	}

	if len(kp.Key) != 1 {
		return nil
	}

	char := kp.Key[0]
	if kp.Alt {
		return []byte{0x1b, char}
	}
	if kp.Shift && char >= 'a' && char <= 'z' {
		return []byte{char - 32}
	}
	return []byte{char}
}
