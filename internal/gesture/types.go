package gesture

import (
	"fmt"
	"strconv"
	"strings"
)

// GestureType represents the type of gesture detected
type GestureType int

const (
	GesturePressStart GestureType = iota
	GestureClick
	GestureDoubleClick
	GestureMultiClick
	GestureLongPressStart
	GestureLongPressHold
	GestureLongPressStop
)

var gestureNames = [...]string{
	GesturePressStart:     "press_start",
	GestureClick:          "click",
	GestureDoubleClick:    "double_click",
	GestureMultiClick:     "multi_click",
	GestureLongPressStart: "long_press_start",
	GestureLongPressHold:  "long_press_hold",
	GestureLongPressStop:  "long_press_stop",
}

func (g GestureType) String() string {
	if g >= 0 && int(g) < len(gestureNames) {
		return gestureNames[g]
	}
	return fmt.Sprintf("unknown(%d)", int(g))
}

// ParseGestureType is the inverse of GestureType.String
func ParseGestureType(s string) (GestureType, error) {
	for i, name := range gestureNames {
		if name == s {
			return GestureType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gesture type %q", s)
}

// Gesture represents a detected gesture on one button
type Gesture struct {
	Type   GestureType
	Button int
	Clicks uint8  // Click count when the gesture fired
	HeldMs uint32 // How long the button has been (or was) held
}

func (g Gesture) String() string {
	switch g.Type {
	case GestureMultiClick:
		return fmt.Sprintf("%s(%d x%d)", g.Type, g.Button, g.Clicks)
	case GestureLongPressHold, GestureLongPressStop:
		return fmt.Sprintf("%s(%d %dms)", g.Type, g.Button, g.HeldMs)
	default:
		return fmt.Sprintf("%s(%d)", g.Type, g.Button)
	}
}

// Key returns a unique key for this gesture, used for mapping lookups
func (g Gesture) Key() string {
	return KeyFor(g.Type, g.Button)
}

// KeyFor builds the mapping key for a gesture type on a button
func KeyFor(t GestureType, button int) string {
	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(button))
	return sb.String()
}
