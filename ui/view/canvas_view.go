package view

import (
	"image"

	"github.com/soocke/boxlabel-go/domain/hittest"
	"github.com/soocke/boxlabel-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CanvasHandlers receive pointer positions in canvas pixels. Nil handlers are not bound.
type CanvasHandlers struct {
	Press       func(x, y int)
	Drag        func(x, y int)
	Release     func(x, y int)
	Motion      func(x, y int)
	ContextMenu func(x, y int)
}

// CanvasView shows the composed frame in a label sized to the canvas.
type CanvasView struct {
	label  *LabelWidget
	photo  *Img // last Tk photo; deleted before it is replaced
	cursor string
}

// NewCanvasView creates the canvas label inside parent at (0,0) and binds the mouse.
func NewCanvasView(parent *FrameWidget, width, height int, h CanvasHandlers) *CanvasView {
	placeholder := image.NewRGBA(image.Rect(0, 0, width, height))
	photo := NewPhoto(Data(images.EncodePNG(placeholder)))
	lbl := Label(Image(photo), Borderwidth(0), Anchor("nw"), Cursor(cursorName(hittest.CursorCrosshair)))
	Grid(lbl, In(parent), Row(0), Column(0), Sticky("nw"))
	v := &CanvasView{label: lbl, photo: photo, cursor: cursorName(hittest.CursorCrosshair)}

	bind := func(seq string, fn func(x, y int)) {
		if fn == nil {
			return
		}
		Bind(lbl, seq, Command(func(e *Event) { fn(e.X, e.Y) }))
	}
	bind("<ButtonPress-1>", h.Press)
	bind("<B1-Motion>", h.Drag)
	bind("<ButtonRelease-1>", h.Release)
	bind("<Motion>", h.Motion)
	bind("<Button-3>", h.ContextMenu)
	// macOS reports the secondary button as 2
	bind("<Button-2>", h.ContextMenu)
	return v
}

// ShowFrame replaces the displayed image.
func (v *CanvasView) ShowFrame(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	next := NewPhoto(Data(images.EncodePNG(img)))
	v.label.Configure(Image(next))
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = next
}

// SetCursor switches the pointer shape over the canvas.
func (v *CanvasView) SetCursor(c hittest.Cursor) {
	if v == nil || v.label == nil {
		return
	}
	name := cursorName(c)
	if name == v.cursor {
		return
	}
	v.cursor = name
	v.label.Configure(Cursor(name))
}

func cursorName(c hittest.Cursor) string {
	switch c {
	case hittest.CursorHorizontal:
		return "sb_h_double_arrow"
	case hittest.CursorVertical:
		return "sb_v_double_arrow"
	case hittest.CursorDiagonal:
		return "sizing"
	default:
		return "crosshair"
	}
}
