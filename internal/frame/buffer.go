package frame

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBuffer is returned when a pixel buffer's declared dimensions do
// not match its data.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// BytesPerPixel is the RGBA stride of one pixel.
const BytesPerPixel = 4

// PixelBuffer is a row-major RGBA frame owned by the capture collaborator
// for the duration of a single analysis call.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NewPixelBuffer allocates a zeroed buffer of the given size
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Validate checks that the buffer is non-empty and that Pix holds exactly
// Width*Height pixels.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if b.Width > math.MaxInt/BytesPerPixel/b.Height {
		return fmt.Errorf("%w: dimensions %dx%d overflow", ErrInvalidBuffer, b.Width, b.Height)
	}
	if want := b.Width * b.Height * BytesPerPixel; len(b.Pix) != want {
		return fmt.Errorf("%w: %d bytes for %dx%d (want %d)", ErrInvalidBuffer, len(b.Pix), b.Width, b.Height, want)
	}
	return nil
}

// RGB returns the colour channels of the pixel at (x, y). Callers are
// expected to stay inside the buffer.
func (b *PixelBuffer) RGB(x, y int) (r, g, bl int) {
	i := (y*b.Width + x) * BytesPerPixel
	return int(b.Pix[i]), int(b.Pix[i+1]), int(b.Pix[i+2])
}

// ChannelSum returns r+g+b of the pixel at (x, y)
func (b *PixelBuffer) ChannelSum(x, y int) int {
	r, g, bl := b.RGB(x, y)
	return r + g + bl
}

// Brightness returns (r+g+b)/3 of the pixel at (x, y)
func (b *PixelBuffer) Brightness(x, y int) float64 {
	return float64(b.ChannelSum(x, y)) / 3
}

// Set writes an opaque pixel; used by tests and synthetic sources.
func (b *PixelBuffer) Set(x, y int, r, g, bl uint8) {
	i := (y*b.Width + x) * BytesPerPixel
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
	b.Pix[i+3] = 255
}

// Fill paints every pixel with one colour
func (b *PixelBuffer) Fill(r, g, bl uint8) {
	for i := 0; i+3 < len(b.Pix); i += BytesPerPixel {
		b.Pix[i] = r
		b.Pix[i+1] = g
		b.Pix[i+2] = bl
		b.Pix[i+3] = 255
	}
}

// Bounds returns the region covering the whole buffer
func (b *PixelBuffer) Bounds() Region {
	return Region{StartX: 0, EndX: b.Width, StartY: 0, EndY: b.Height}
}

// CenterX returns the horizontal middle in buffer coordinates
func (b *PixelBuffer) CenterX() float64 {
	return float64(b.Width) / 2
}

// CenterY returns the vertical middle in buffer coordinates
func (b *PixelBuffer) CenterY() float64 {
	return float64(b.Height) / 2
}
