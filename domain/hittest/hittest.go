package hittest

import (
	"math"

	"github.com/soocke/boxlabel-go/domain/geometry"
)

// Handle enumerates the resize regions of a box.
type Handle int

const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleLeft
	HandleRight
	HandleTop
	HandleBottom
)

func (h Handle) String() string {
	switch h {
	case HandleTopLeft:
		return "top_left"
	case HandleTopRight:
		return "top_right"
	case HandleBottomLeft:
		return "bottom_left"
	case HandleBottomRight:
		return "bottom_right"
	case HandleLeft:
		return "left"
	case HandleRight:
		return "right"
	case HandleTop:
		return "top"
	case HandleBottom:
		return "bottom"
	default:
		return "none"
	}
}

// IsCorner reports whether h moves two edges.
func (h Handle) IsCorner() bool {
	switch h {
	case HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return true
	}
	return false
}

// MovesLeft, MovesRight, MovesTop and MovesBottom report which edges a drag on h moves.
func (h Handle) MovesLeft() bool {
	return h == HandleLeft || h == HandleTopLeft || h == HandleBottomLeft
}

func (h Handle) MovesRight() bool {
	return h == HandleRight || h == HandleTopRight || h == HandleBottomRight
}

func (h Handle) MovesTop() bool {
	return h == HandleTop || h == HandleTopLeft || h == HandleTopRight
}

func (h Handle) MovesBottom() bool {
	return h == HandleBottom || h == HandleBottomLeft || h == HandleBottomRight
}

// Cursor is the pointer shape hinted for a canvas position.
type Cursor int

const (
	CursorCrosshair Cursor = iota
	CursorHorizontal
	CursorVertical
	CursorDiagonal
)

func (c Cursor) String() string {
	switch c {
	case CursorHorizontal:
		return "horizontal"
	case CursorVertical:
		return "vertical"
	case CursorDiagonal:
		return "diagonal"
	default:
		return "crosshair"
	}
}

// CursorFor maps a handle to its resize cursor.
func CursorFor(h Handle) Cursor {
	switch h {
	case HandleLeft, HandleRight:
		return CursorHorizontal
	case HandleTop, HandleBottom:
		return CursorVertical
	case HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
		return CursorDiagonal
	default:
		return CursorCrosshair
	}
}

// Tester resolves pointer positions against boxes on the unzoomed canvas. The displayed
// image is always resized to Width x Height, so pointer coordinates never carry zoom.
type Tester struct {
	Width      float64
	Height     float64
	HandleSize float64
}

// FindBox returns the first box in storage order whose rectangle contains (x, y).
// Overlaps resolve to the earliest inserted box, not the one drawn on top.
func (t Tester) FindBox(x, y float64, boxes []*geometry.Box) *geometry.Box {
	for _, b := range boxes {
		if b == nil {
			continue
		}
		if geometry.ToPixelRect(*b, t.Width, t.Height, 1).Contains(x, y) {
			return b
		}
	}
	return nil
}

// FindHandle resolves (x, y) to a resize handle of b. The left edge is examined before
// the right, and both before top/bottom, so narrow boxes resolve deterministically.
func (t Tester) FindHandle(x, y float64, b geometry.Box) Handle {
	r := geometry.ToPixelRect(b, t.Width, t.Height, 1)
	hs := t.HandleSize
	nearTop := math.Abs(y-r.Top) < hs
	nearBottom := math.Abs(y-r.Bottom) < hs
	if math.Abs(x-r.Left) < hs {
		switch {
		case nearTop:
			return HandleTopLeft
		case nearBottom:
			return HandleBottomLeft
		}
		return HandleLeft
	}
	if math.Abs(x-r.Right) < hs {
		switch {
		case nearTop:
			return HandleTopRight
		case nearBottom:
			return HandleBottomRight
		}
		return HandleRight
	}
	if nearTop {
		return HandleTop
	}
	if nearBottom {
		return HandleBottom
	}
	return HandleNone
}

// FindEdge shares the handle resolver; it exists so cursor hints and drag starts can be
// told apart at call sites.
func (t Tester) FindEdge(x, y float64, b geometry.Box) Handle { return t.FindHandle(x, y, b) }

// CursorAt returns the cursor hint for (x, y) without mutating anything.
func (t Tester) CursorAt(x, y float64, boxes []*geometry.Box) Cursor {
	b := t.FindBox(x, y, boxes)
	if b == nil {
		return CursorCrosshair
	}
	return CursorFor(t.FindEdge(x, y, *b))
}
