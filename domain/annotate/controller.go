package annotate

import (
	"image"
	"log/slog"
	"math"

	"github.com/soocke/boxlabel-go/config"
	"github.com/soocke/boxlabel-go/domain/annotation"
	"github.com/soocke/boxlabel-go/domain/dataset"
	"github.com/soocke/boxlabel-go/domain/geometry"
	"github.com/soocke/boxlabel-go/domain/hittest"
)

// Controller coordinates pointer gestures, navigation and persistence for the image being
// annotated. It is not safe for concurrent use; every call is expected on the UI thread.
type Controller struct {
	logger   *slog.Logger
	cfg      *config.Config
	layout   dataset.Layout
	codec    LabelCodec
	collab   Collaborators
	tester   hittest.Tester
	registry *annotation.Registry
	set      *annotation.Set

	images  []string
	session Session
	frame   image.Image
	locked  bool

	state            State
	anchorX, anchorY float64
	ptrX, ptrY       float64
	target           *geometry.Box
	handle           hittest.Handle

	listeners []StateListener
}

// NewController builds a controller over layout. Classes listed in cfg are registered
// up front; conflicting entries are logged and skipped.
func NewController(logger *slog.Logger, cfg *config.Config, layout dataset.Layout, codec LabelCodec, collab Collaborators, colors annotation.ColorSource) *Controller {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &Controller{
		logger:   logger,
		cfg:      cfg,
		layout:   layout,
		codec:    codec,
		collab:   collab,
		registry: annotation.NewRegistry(colors),
		set:      annotation.NewSet(),
		session:  Session{Zoom: 1},
		tester: hittest.Tester{
			Width:      float64(cfg.CanvasWidth),
			Height:     float64(cfg.CanvasHeight),
			HandleSize: cfg.HandleSize,
		},
	}
	for _, seed := range cfg.Classes {
		if err := c.registry.Register(seed.Name, seed.Index); err != nil && logger != nil {
			logger.Warn("configured class skipped", "name", seed.Name, "index", seed.Index, "error", err)
		}
	}
	return c
}

// AddListener registers a callback fired after every state transition.
func (c *Controller) AddListener(l StateListener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

func (c *Controller) transition(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("annotate state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range c.listeners {
		l(prev, next)
	}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Session returns a copy of the selection state.
func (c *Controller) Session() Session { return c.session }

// Registry exposes the class registry.
func (c *Controller) Registry() *annotation.Registry { return c.registry }

// Boxes returns the boxes of the current image in draw order.
func (c *Controller) Boxes() []*geometry.Box { return c.set.All() }

// Frame returns the rendered current image, nil when it failed to load.
func (c *Controller) Frame() image.Image { return c.frame }

// Locked reports whether editing is disabled because the label file failed to load.
func (c *Controller) Locked() bool { return c.locked }

// Canvas returns the unzoomed canvas size in pixels.
func (c *Controller) Canvas() (width, height int) { return c.cfg.CanvasWidth, c.cfg.CanvasHeight }

// Images returns the active image names.
func (c *Controller) Images() []string {
	out := make([]string, len(c.images))
	copy(out, c.images)
	return out
}

// ImageCount returns the size of the active image list.
func (c *Controller) ImageCount() int { return len(c.images) }

// CurrentImage returns the name of the displayed image, or "" when there is none.
func (c *Controller) CurrentImage() string {
	if c.session.ImageIndex < 0 || c.session.ImageIndex >= len(c.images) {
		return ""
	}
	return c.images[c.session.ImageIndex]
}

// BoxAt returns the first box in storage order containing the pointer.
func (c *Controller) BoxAt(x, y float64) *geometry.Box {
	return c.tester.FindBox(x, y, c.set.All())
}

// CursorAt returns the cursor hint for the pointer position. While resizing the cursor
// follows the grabbed handle.
func (c *Controller) CursorAt(x, y float64) hittest.Cursor {
	if c.state == StateResizingHandle {
		return hittest.CursorFor(c.handle)
	}
	return c.tester.CursorAt(x, y, c.set.All())
}

// RubberBand returns the transient rectangle of a new box being dragged.
func (c *Controller) RubberBand() (geometry.Rect, bool) {
	if c.state != StateDraggingNewBox {
		return geometry.Rect{}, false
	}
	return geometry.Rect{Left: c.anchorX, Top: c.anchorY, Right: c.ptrX, Bottom: c.ptrY}.Canon(), true
}

// PointerDown starts a resize when a handle of a box is hit, or a new box on empty canvas.
// A press on a box body away from its handles does nothing.
func (c *Controller) PointerDown(x, y float64) error {
	if c.state != StateIdle || c.CurrentImage() == "" {
		return nil
	}
	if box := c.tester.FindBox(x, y, c.set.All()); box != nil {
		h := c.tester.FindHandle(x, y, *box)
		if h == hittest.HandleNone {
			return nil
		}
		if c.locked {
			return ErrLabelsLocked
		}
		c.target, c.handle = box, h
		c.transition(StateResizingHandle)
		return nil
	}
	if c.locked {
		return ErrLabelsLocked
	}
	c.anchorX, c.anchorY = c.clampX(x), c.clampY(y)
	c.ptrX, c.ptrY = c.anchorX, c.anchorY
	c.transition(StateDraggingNewBox)
	return nil
}

// PointerMove updates the rubber band, or resizes the grabbed box and persists it.
func (c *Controller) PointerMove(x, y float64) error {
	switch c.state {
	case StateDraggingNewBox:
		c.ptrX, c.ptrY = c.clampX(x), c.clampY(y)
	case StateResizingHandle:
		c.resize(x, y)
		return c.persist()
	}
	return nil
}

// PointerUp commits a new box or ends a resize. A new box without an armed class prompts
// for one; cancelling the prompt discards the box.
func (c *Controller) PointerUp(x, y float64) error {
	switch c.state {
	case StateResizingHandle:
		c.target, c.handle = nil, hittest.HandleNone
		c.transition(StateIdle)
		return nil
	case StateDraggingNewBox:
		c.ptrX, c.ptrY = c.clampX(x), c.clampY(y)
		rect := c.newBoxRect()
		c.transition(StateIdle)
		if !c.session.Armed() {
			if _, ok := c.AddClass(); !ok {
				if c.logger != nil {
					c.logger.Debug("new box discarded, no class chosen")
				}
				return nil
			}
		}
		box := geometry.FromPixelRect(rect, c.tester.Width, c.tester.Height, 1)
		box.Class = c.registry.GetOrCreate(c.session.ArmedClass)
		c.set.Add(&box)
		if c.logger != nil {
			c.logger.Debug("box added", "class", c.session.ArmedClass, "index", box.Class, "image", c.CurrentImage())
		}
		return c.persist()
	}
	return nil
}

// resize moves the edges implicated by the grabbed handle toward the pointer. The box is
// projected with zoom, moved edges are clamped to the canvas and to MinBoxSize from the
// opposite edge, then divided by zoom before normalizing with the zoomed canvas.
func (c *Controller) resize(x, y float64) {
	if c.target == nil {
		return
	}
	w, h, z := c.tester.Width, c.tester.Height, c.session.Zoom
	minSize := c.cfg.MinBoxSize
	r := geometry.ToPixelRect(*c.target, w, h, z)
	if c.handle.MovesLeft() {
		r.Left = math.Min(math.Max(0, x), r.Right-minSize) / z
	}
	if c.handle.MovesRight() {
		r.Right = math.Max(math.Min(w, x), r.Left+minSize) / z
	}
	if c.handle.MovesTop() {
		r.Top = math.Min(math.Max(0, y), r.Bottom-minSize) / z
	}
	if c.handle.MovesBottom() {
		r.Bottom = math.Max(math.Min(h, y), r.Top+minSize) / z
	}
	c.target.SetGeometry(geometry.FromPixelRect(r, w, h, z))
}

// newBoxRect returns the committed rectangle of the drag, each extent grown to at least
// MinBoxSize in the drag direction without leaving the canvas.
func (c *Controller) newBoxRect() geometry.Rect {
	minSize := c.cfg.MinBoxSize
	left, right := growExtent(c.anchorX, c.ptrX, minSize, c.tester.Width)
	top, bottom := growExtent(c.anchorY, c.ptrY, minSize, c.tester.Height)
	return geometry.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

func growExtent(anchor, ptr, minSize, limit float64) (lo, hi float64) {
	lo, hi = math.Min(anchor, ptr), math.Max(anchor, ptr)
	if hi-lo >= minSize {
		return lo, hi
	}
	// A canvas narrower than the minimum size yields the whole extent.
	if limit < minSize {
		return 0, limit
	}
	if ptr >= anchor {
		hi = lo + minSize
		if hi > limit {
			hi, lo = limit, limit-minSize
		}
		return lo, hi
	}
	lo = hi - minSize
	if lo < 0 {
		lo, hi = 0, minSize
	}
	return lo, hi
}

func (c *Controller) clampX(x float64) float64 { return math.Min(math.Max(0, x), c.tester.Width) }
func (c *Controller) clampY(y float64) float64 { return math.Min(math.Max(0, y), c.tester.Height) }

// RemoveBox deletes b from the current image. Unknown boxes are ignored.
func (c *Controller) RemoveBox(b *geometry.Box) error {
	if c.locked {
		return ErrLabelsLocked
	}
	if !c.set.Remove(b) {
		return nil
	}
	return c.persist()
}

// ClearAll deletes every box of the current image; the label file becomes empty.
func (c *Controller) ClearAll() error {
	if c.locked {
		return ErrLabelsLocked
	}
	if c.CurrentImage() == "" {
		return nil
	}
	c.set.Clear()
	return c.persist()
}

// ZoomIn multiplies the zoom factor by ZoomStep, up to ZoomMax. Only honored while idle.
func (c *Controller) ZoomIn() bool {
	return c.setZoom(math.Min(c.session.Zoom*c.cfg.ZoomStep, c.cfg.ZoomMax))
}

// ZoomOut divides the zoom factor by ZoomStep, down to ZoomMin. Only honored while idle.
func (c *Controller) ZoomOut() bool {
	return c.setZoom(math.Max(c.session.Zoom/c.cfg.ZoomStep, c.cfg.ZoomMin))
}

func (c *Controller) setZoom(z float64) bool {
	if c.state != StateIdle || z == c.session.Zoom {
		return false
	}
	c.session.Zoom = z
	if c.logger != nil {
		c.logger.Debug("zoom changed", "zoom", z)
	}
	return true
}
