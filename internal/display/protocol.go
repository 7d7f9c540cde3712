package display

import (
	"github.com/pleimann/clickpad/internal/hid"
)

const (
	reportSize      = 64
	frameHeaderSize = 10
)

// FrameEncoder turns packed frame buffers into display reports
type FrameEncoder struct {
	width  int
	height int
}

// NewFrameEncoder creates a new frame encoder
func NewFrameEncoder(width, height int) *FrameEncoder {
	return &FrameEncoder{width: width, height: height}
}

// EncodeFullFrame creates a full frame display command
func (e *FrameEncoder) EncodeFullFrame(data []byte) *hid.DisplayFrame {
	return hid.NewFullFrame(uint16(e.width), uint16(e.height), data)
}

// EncodePartialFrame creates a partial frame display command
func (e *FrameEncoder) EncodePartialFrame(x, y, width, height int, data []byte) *hid.DisplayFrame {
	return hid.NewPartialFrame(uint16(x), uint16(y), uint16(width), uint16(height), data)
}

// EncodeClear creates a display clear command
func (e *FrameEncoder) EncodeClear() *hid.DisplayFrame {
	return hid.NewClearCommand()
}

// MaxPayloadSize is the pixel data that fits in one report after the frame
// header
func (e *FrameEncoder) MaxPayloadSize() int {
	return reportSize - frameHeaderSize
}

// ChunkFrame splits a full frame buffer into partial frames of whole rows
// that each fit in a single report.
func (e *FrameEncoder) ChunkFrame(data []byte) []*hid.DisplayFrame {
	bytesPerRow := (e.width + 7) / 8
	rowsPerChunk := max(e.MaxPayloadSize()/bytesPerRow, 1)

	var frames []*hid.DisplayFrame
	for y := 0; y < e.height; y += rowsPerChunk {
		rows := min(rowsPerChunk, e.height-y)
		start := min(y*bytesPerRow, len(data))
		end := min((y+rows)*bytesPerRow, len(data))
		frames = append(frames, e.EncodePartialFrame(0, y, e.width, rows, data[start:end]))
	}
	return frames
}
