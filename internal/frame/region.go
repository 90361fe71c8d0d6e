package frame

import "image"

// Region is a half-open axis-aligned rectangle [StartX, EndX) x [StartY, EndY)
// in buffer coordinates.
type Region struct {
	StartX int `json:"start_x"`
	EndX   int `json:"end_x"`
	StartY int `json:"start_y"`
	EndY   int `json:"end_y"`
}

// Width returns the region width
func (r Region) Width() int {
	return r.EndX - r.StartX
}

// Height returns the region height
func (r Region) Height() int {
	return r.EndY - r.StartY
}

// Empty reports whether the region contains no pixels
func (r Region) Empty() bool {
	return r.EndX <= r.StartX || r.EndY <= r.StartY
}

// Clamp restricts the region to a width x height buffer
func (r Region) Clamp(width, height int) Region {
	r.StartX = clampInt(r.StartX, 0, width)
	r.EndX = clampInt(r.EndX, 0, width)
	r.StartY = clampInt(r.StartY, 0, height)
	r.EndY = clampInt(r.EndY, 0, height)
	if r.EndX < r.StartX {
		r.EndX = r.StartX
	}
	if r.EndY < r.StartY {
		r.EndY = r.StartY
	}
	return r
}

// Rect converts the region to an image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.StartX, r.StartY, r.EndX, r.EndY)
}

// CenteredSquare returns a square of fraction*min(width, height) centered on
// the frame, clamped to the buffer.
func CenteredSquare(width, height int, fraction float64) Region {
	side := int(float64(min(width, height)) * fraction)
	startX := (width - side) / 2
	startY := (height - side) / 2
	return Region{
		StartX: startX,
		EndX:   startX + side,
		StartY: startY,
		EndY:   startY + side,
	}.Clamp(width, height)
}

// CenteredWindow returns a rectangle covering fraction of each dimension,
// centered on the frame, clamped to the buffer.
func CenteredWindow(width, height int, fraction float64) Region {
	w := int(float64(width) * fraction)
	h := int(float64(height) * fraction)
	startX := (width - w) / 2
	startY := (height - h) / 2
	return Region{
		StartX: startX,
		EndX:   startX + w,
		StartY: startY,
		EndY:   startY + h,
	}.Clamp(width, height)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
