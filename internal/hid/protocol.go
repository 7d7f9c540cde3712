package hid

import (
	"encoding/binary"
	"fmt"
)

// Report IDs
const (
	ReportIDButtonEvent byte = 0x01
	ReportIDDisplay     byte = 0x02
	ReportIDIndicator   byte = 0x03
)

// Event types for button events
const (
	EventTypePress   byte = 0x01
	EventTypeRelease byte = 0x02
)

// Display commands
const (
	DisplayCmdFullFrame byte = 0x01
	DisplayCmdPartial   byte = 0x02
	DisplayCmdClear     byte = 0x03
)

// MaxButtons is the number of buttons a report bitmask can carry
const MaxButtons = 16

const eventReportSize = 8

// Event is a button report from the device. ButtonMask holds the level of
// every button after the change, so a release report lists the buttons
// that are still held.
type Event struct {
	Type       EventType
	ButtonMask uint16
	Timestamp  uint32 // Device milliseconds since boot
}

type EventType byte

const (
	Press   EventType = EventType(EventTypePress)
	Release EventType = EventType(EventTypeRelease)
)

func (e EventType) String() string {
	switch e {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("unknown(%d)", e)
	}
}

// ParseEvent parses a raw HID report into an Event
// Expected format:
//
//	Byte 0: Report ID (0x01)
//	Byte 1: Event type (0x01=press, 0x02=release)
//	Byte 2-3: Button bitmask (16 buttons max, little-endian)
//	Byte 4-7: Timestamp (ms since boot, little-endian u32)
func ParseEvent(data []byte) (Event, error) {
	if len(data) < eventReportSize {
		return Event{}, fmt.Errorf("event data too short: %d bytes", len(data))
	}

	if data[0] != ReportIDButtonEvent {
		return Event{}, fmt.Errorf("unexpected report ID: 0x%02X", data[0])
	}

	eventType := data[1]
	if eventType != EventTypePress && eventType != EventTypeRelease {
		return Event{}, fmt.Errorf("unknown event type: 0x%02X", eventType)
	}

	return Event{
		Type:       EventType(eventType),
		ButtonMask: binary.LittleEndian.Uint16(data[2:4]),
		Timestamp:  binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// Encode serializes the event in the format ParseEvent reads
func (e Event) Encode() []byte {
	buf := make([]byte, eventReportSize)
	buf[0] = ReportIDButtonEvent
	buf[1] = byte(e.Type)
	binary.LittleEndian.PutUint16(buf[2:4], e.ButtonMask)
	binary.LittleEndian.PutUint32(buf[4:8], e.Timestamp)
	return buf
}

// IsPressed reports whether a button is held according to this event
func (e Event) IsPressed(button int) bool {
	if button < 0 || button >= MaxButtons {
		return false
	}
	return e.ButtonMask&(1<<button) != 0
}

// PressedButtons returns a slice of button indices that are pressed
func (e Event) PressedButtons() []int {
	var buttons []int
	for i := 0; i < MaxButtons; i++ {
		if e.IsPressed(i) {
			buttons = append(buttons, i)
		}
	}
	return buttons
}

// IndicatorReport sets the per-button LEDs of the device
// Format:
//
//	Byte 0: Report ID (0x03)
//	Byte 1-2: LED bitmask (bit n lights button n, little-endian)
type IndicatorReport struct {
	Mask uint16
}

// Encode serializes the indicator report
func (r IndicatorReport) Encode() []byte {
	buf := make([]byte, 3)
	buf[0] = ReportIDIndicator
	binary.LittleEndian.PutUint16(buf[1:3], r.Mask)
	return buf
}

// DisplayFrame represents a frame to be sent to the OLED display
type DisplayFrame struct {
	Command byte
	X       uint16
	Y       uint16
	Width   uint16
	Height  uint16
	Data    []byte // 1-bit packed pixel data, row-major
}

// Encode serializes the DisplayFrame for transmission
// Format:
//
//	Byte 0: Report ID (0x02)
//	Byte 1: Command (0x01=full frame, 0x02=partial, 0x03=clear)
//	Byte 2-3: X offset (for partial)
//	Byte 4-5: Y offset (for partial)
//	Byte 6-7: Width
//	Byte 8-9: Height
//	Byte 10+: Pixel data (1-bit packed, row-major)
func (f *DisplayFrame) Encode() []byte {
	headerSize := 10
	buf := make([]byte, headerSize+len(f.Data))

	buf[0] = ReportIDDisplay
	buf[1] = f.Command
	binary.LittleEndian.PutUint16(buf[2:4], f.X)
	binary.LittleEndian.PutUint16(buf[4:6], f.Y)
	binary.LittleEndian.PutUint16(buf[6:8], f.Width)
	binary.LittleEndian.PutUint16(buf[8:10], f.Height)

	if len(f.Data) > 0 {
		copy(buf[headerSize:], f.Data)
	}

	return buf
}

// NewFullFrame creates a full frame display update
func NewFullFrame(width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdFullFrame,
		Width:   width,
		Height:  height,
		Data:    data,
	}
}

// NewPartialFrame creates a partial frame display update
func NewPartialFrame(x, y, width, height uint16, data []byte) *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdPartial,
		X:       x,
		Y:       y,
		Width:   width,
		Height:  height,
		Data:    data,
	}
}

// NewClearCommand creates a display clear command
func NewClearCommand() *DisplayFrame {
	return &DisplayFrame{
		Command: DisplayCmdClear,
	}
}
