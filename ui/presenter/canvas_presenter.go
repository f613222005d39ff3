package presenter

import (
	"errors"
	"image"
	"image/color"
	"log/slog"

	"github.com/soocke/boxlabel-go/domain/annotate"
	"github.com/soocke/boxlabel-go/domain/annotation"
	"github.com/soocke/boxlabel-go/domain/geometry"
	"github.com/soocke/boxlabel-go/domain/hittest"
	"github.com/soocke/boxlabel-go/ui/images"
	"github.com/soocke/boxlabel-go/ui/model"
)

// Annotator narrows the controller to what the canvas needs.
type Annotator interface {
	PointerDown(x, y float64) error
	PointerMove(x, y float64) error
	PointerUp(x, y float64) error
	CursorAt(x, y float64) hittest.Cursor
	BoxAt(x, y float64) *geometry.Box
	RubberBand() (geometry.Rect, bool)
	Boxes() []*geometry.Box
	Frame() image.Image
	Registry() *annotation.Registry
	Canvas() (width, height int)
	Locked() bool
	State() annotate.State
	RemoveBox(b *geometry.Box) error
	ReassignClass(b *geometry.Box, name string) error
}

// CanvasView shows the composed frame and the cursor hint.
type CanvasView interface {
	ShowFrame(img image.Image)
	SetCursor(c hittest.Cursor)
}

// BoxMenu describes the right-click menu of one box. X/Y is the box's bottom-right corner
// on the canvas.
type BoxMenu struct {
	Class         string
	Classes       []string
	Thumb         image.Image
	X, Y          int
	OnDelete      func()
	OnChangeClass func(name string)
}

// MenuView opens the box menu. Callbacks run on the UI thread when the user picks an entry.
type MenuView interface {
	ShowBoxMenu(m BoxMenu)
}

// ErrorView reports failures to the user.
type ErrorView interface {
	ShowError(title, msg string)
}

const lockedNotice = "label file is malformed, editing disabled"

var unknownClassColor = color.RGBA{A: 0xff}

// CanvasPresenter feeds pointer events into the controller and repaints the canvas.
type CanvasPresenter struct {
	ctl    Annotator
	view   CanvasView
	menu   MenuView
	errs   ErrorView
	hover  *model.HoverModel
	logger *slog.Logger
	cursor hittest.Cursor

	// OnChange is called after boxes were added, changed or removed.
	OnChange func()
}

func NewCanvasPresenter(ctl Annotator, view CanvasView, menu MenuView, errs ErrorView, hover *model.HoverModel, logger *slog.Logger) *CanvasPresenter {
	if hover == nil {
		hover = model.NewHoverModel()
	}
	return &CanvasPresenter{ctl: ctl, view: view, menu: menu, errs: errs, hover: hover, logger: logger}
}

// Press handles a left button press.
func (p *CanvasPresenter) Press(x, y int) {
	if p == nil || p.ctl == nil {
		return
	}
	p.report(p.ctl.PointerDown(float64(x), float64(y)))
	p.updateCursor(x, y)
}

// Drag handles pointer motion with the left button held.
func (p *CanvasPresenter) Drag(x, y int) {
	if p == nil || p.ctl == nil {
		return
	}
	st := p.ctl.State()
	p.report(p.ctl.PointerMove(float64(x), float64(y)))
	if st != annotate.StateIdle {
		p.Redraw()
	}
}

// Release handles the left button release.
func (p *CanvasPresenter) Release(x, y int) {
	if p == nil || p.ctl == nil {
		return
	}
	st := p.ctl.State()
	p.report(p.ctl.PointerUp(float64(x), float64(y)))
	if st == annotate.StateIdle {
		return
	}
	p.hover.Set(p.hoverRect(x, y))
	p.Redraw()
	p.updateCursor(x, y)
	p.changed()
}

// Motion handles pointer motion without buttons: cursor hint and hover highlight.
func (p *CanvasPresenter) Motion(x, y int) {
	if p == nil || p.ctl == nil {
		return
	}
	p.updateCursor(x, y)
	if p.hover.Set(p.hoverRect(x, y)) {
		p.Redraw()
	}
}

// ContextMenu opens the box menu for the box under the pointer, if any.
func (p *CanvasPresenter) ContextMenu(x, y int) {
	if p == nil || p.ctl == nil || p.menu == nil || p.ctl.State() != annotate.StateIdle {
		return
	}
	b := p.ctl.BoxAt(float64(x), float64(y))
	if b == nil {
		return
	}
	reg := p.ctl.Registry()
	r := p.pixelRect(b)
	m := BoxMenu{
		Class:   reg.Name(b.Class),
		Classes: reg.Names(),
		X:       r.Max.X,
		Y:       r.Max.Y,
		OnDelete: func() {
			p.report(p.ctl.RemoveBox(b))
			p.hover.Set(image.Rectangle{})
			p.Redraw()
			p.changed()
		},
		OnChangeClass: func(name string) {
			p.report(p.ctl.ReassignClass(b, name))
			p.Redraw()
			p.changed()
		},
	}
	if frame := p.ctl.Frame(); frame != nil {
		if thumb, err := images.Thumbnail(frame, r, 160, 120); err == nil {
			m.Thumb = thumb
		}
	}
	p.menu.ShowBoxMenu(m)
}

// Redraw composes the frame with every box, the rubber band and the hover highlight.
func (p *CanvasPresenter) Redraw() {
	if p == nil || p.ctl == nil || p.view == nil {
		return
	}
	w, h := p.ctl.Canvas()
	reg := p.ctl.Registry()
	hov := p.hover.Rect()
	var ov images.Overlay
	for _, b := range p.ctl.Boxes() {
		r := p.pixelRect(b)
		col := unknownClassColor
		if cl, ok := reg.ByIndex(b.Class); ok {
			col = cl.Color
		}
		ov.Boxes = append(ov.Boxes, images.BoxMark{Rect: r, Color: col, Label: reg.Name(b.Class), Hover: !hov.Empty() && r == hov})
	}
	if band, ok := p.ctl.RubberBand(); ok {
		ov.Band = band.Image()
	}
	if p.ctl.Locked() {
		ov.Notice = lockedNotice
	}
	p.view.ShowFrame(images.Compose(p.ctl.Frame(), w, h, ov))
}

func (p *CanvasPresenter) pixelRect(b *geometry.Box) image.Rectangle {
	w, h := p.ctl.Canvas()
	return geometry.ToPixelRect(*b, float64(w), float64(h), 1).Image()
}

func (p *CanvasPresenter) hoverRect(x, y int) image.Rectangle {
	if b := p.ctl.BoxAt(float64(x), float64(y)); b != nil {
		return p.pixelRect(b)
	}
	return image.Rectangle{}
}

func (p *CanvasPresenter) updateCursor(x, y int) {
	c := p.ctl.CursorAt(float64(x), float64(y))
	if c == p.cursor || p.view == nil {
		return
	}
	p.cursor = c
	p.view.SetCursor(c)
}

func (p *CanvasPresenter) changed() {
	if p.OnChange != nil {
		p.OnChange()
	}
}

// report surfaces err. Edits refused on a locked image are only logged; the canvas already
// carries the notice.
func (p *CanvasPresenter) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, annotate.ErrLabelsLocked) {
		if p.logger != nil {
			p.logger.Debug("edit refused", "error", err)
		}
		return
	}
	if p.logger != nil {
		p.logger.Error("canvas action failed", "error", err)
	}
	if p.errs != nil {
		p.errs.ShowError("Error", err.Error())
	}
}
