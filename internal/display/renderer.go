package display

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	pixelOn  = color.Gray{Y: 255}
	pixelOff = color.Gray{Y: 0}
)

// Renderer draws text and simple shapes into a grayscale image that is
// thresholded to the 1-bit OLED format on export.
type Renderer struct {
	width  int
	height int
	img    *image.Gray
	face   font.Face
}

// NewRenderer creates a new display renderer
func NewRenderer(width, height int) *Renderer {
	return &Renderer{
		width:  width,
		height: height,
		img:    image.NewGray(image.Rect(0, 0, width, height)),
		face:   basicfont.Face7x13,
	}
}

// Clear clears the frame buffer
func (r *Renderer) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Black, image.Point{}, draw.Src)
}

// DrawText draws text with its baseline at y
func (r *Renderer) DrawText(x, y int, text string) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.White,
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawTextWrapped draws text word-wrapped to maxWidth and returns the
// height it used
func (r *Renderer) DrawTextWrapped(x, y, maxWidth int, text string) int {
	lineHeight := r.face.Metrics().Height.Ceil()
	lines := r.wrap(splitWords(text), maxWidth)
	for i, line := range lines {
		r.DrawText(x, y+i*lineHeight, line)
	}
	return len(lines) * lineHeight
}

func (r *Renderer) wrap(words []string, maxWidth int) []string {
	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && font.MeasureString(r.face, candidate).Ceil() > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// DrawRect draws a rectangle outline
func (r *Renderer) DrawRect(x, y, width, height int) {
	for i := x; i < x+width; i++ {
		r.img.SetGray(i, y, pixelOn)
		r.img.SetGray(i, y+height-1, pixelOn)
	}
	for i := y; i < y+height; i++ {
		r.img.SetGray(x, i, pixelOn)
		r.img.SetGray(x+width-1, i, pixelOn)
	}
}

// FillRect draws a filled rectangle
func (r *Renderer) FillRect(x, y, width, height int) {
	rect := image.Rect(x, y, x+width, y+height)
	draw.Draw(r.img, rect, image.White, image.Point{}, draw.Src)
}

// DrawButtonRow draws count square cells of side cell starting at (x, y),
// one per button. Cells of buttons set in mask are filled.
func (r *Renderer) DrawButtonRow(x, y, cell, count int, mask uint16) {
	for i := 0; i < count; i++ {
		cx := x + i*(cell+2)
		if mask&(1<<i) != 0 {
			r.FillRect(cx, y, cell, cell)
		} else {
			r.DrawRect(cx, y, cell, cell)
		}
	}
}

// SetPixel sets a single pixel
func (r *Renderer) SetPixel(x, y int, on bool) {
	if on {
		r.img.SetGray(x, y, pixelOn)
	} else {
		r.img.SetGray(x, y, pixelOff)
	}
}

// GetFrameBuffer returns the whole frame as 1-bit packed data
func (r *Renderer) GetFrameBuffer() []byte {
	return r.pack(0, 0, r.width, r.height)
}

// GetRegion returns a portion of the frame as 1-bit packed data
func (r *Renderer) GetRegion(x, y, width, height int) []byte {
	return r.pack(x, y, width, height)
}

// pack thresholds a rectangle to 1 bit per pixel, row-major, 8 pixels per
// byte, MSB first
func (r *Renderer) pack(x, y, width, height int) []byte {
	bytesPerRow := (width + 7) / 8
	data := make([]byte, bytesPerRow*height)

	for dy := 0; dy < height; dy++ {
		row := data[dy*bytesPerRow : (dy+1)*bytesPerRow]
		for dx := 0; dx < width; dx++ {
			if r.img.GrayAt(x+dx, y+dy).Y > 127 {
				row[dx/8] |= 0x80 >> (dx % 8)
			}
		}
	}

	return data
}

// Width returns the renderer width
func (r *Renderer) Width() int {
	return r.width
}

// Height returns the renderer height
func (r *Renderer) Height() int {
	return r.height
}

func splitWords(text string) []string {
	return strings.Fields(text)
}
