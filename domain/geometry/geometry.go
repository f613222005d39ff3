package geometry

import (
	"image"
	"math"
)

// Box is a single annotation in normalized label space. CX/CY are the box center and
// W/H its extents, all relative to the unzoomed image frame. Zoom never reaches a Box.
type Box struct {
	Class int
	CX    float64
	CY    float64
	W     float64
	H     float64
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// ToPixelRect converts b to pixel corners for a canvas of canvasW x canvasH at zoom.
func ToPixelRect(b Box, canvasW, canvasH, zoom float64) Rect {
	sx := canvasW * zoom
	sy := canvasH * zoom
	return Rect{
		Left:   (b.CX - b.W/2) * sx,
		Top:    (b.CY - b.H/2) * sy,
		Right:  (b.CX + b.W/2) * sx,
		Bottom: (b.CY + b.H/2) * sy,
	}
}

// FromPixelRect is the inverse of ToPixelRect. The returned box has class 0; callers
// copy the geometry onto an existing box with SetGeometry or set Class themselves.
func FromPixelRect(r Rect, canvasW, canvasH, zoom float64) Box {
	sx := canvasW * zoom
	sy := canvasH * zoom
	return Box{
		CX: (r.Left + r.Right) / 2 / sx,
		CY: (r.Top + r.Bottom) / 2 / sy,
		W:  math.Abs(r.Right-r.Left) / sx,
		H:  math.Abs(r.Bottom-r.Top) / sy,
	}
}

// SetGeometry copies the center and extents of g onto b, keeping b.Class.
func (b *Box) SetGeometry(g Box) {
	if b == nil {
		return
	}
	b.CX, b.CY, b.W, b.H = g.CX, g.CY, g.W, g.H
}

// Width returns the horizontal extent (may be negative for a non-canonical rect).
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent (may be negative for a non-canonical rect).
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Canon returns r with Left<=Right and Top<=Bottom.
func (r Rect) Canon() Rect {
	if r.Right < r.Left {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Bottom < r.Top {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// Image rounds r to an integer image.Rectangle for drawing.
func (r Rect) Image() image.Rectangle {
	c := r.Canon()
	return image.Rect(
		int(math.Round(c.Left)), int(math.Round(c.Top)),
		int(math.Round(c.Right)), int(math.Round(c.Bottom)),
	)
}
