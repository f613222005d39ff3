package annotate

import (
	"errors"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soocke/boxlabel-go/config"
	"github.com/soocke/boxlabel-go/domain/dataset"
	"github.com/soocke/boxlabel-go/domain/geometry"
	"github.com/soocke/boxlabel-go/domain/labels"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type fakeRenderer struct {
	fail  map[string]bool
	calls int
}

func (r *fakeRenderer) RenderImage(path string, width, height int) (image.Image, error) {
	r.calls++
	if r.fail[filepath.Base(path)] {
		return nil, errors.New("undecodable")
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

type fakePrompter struct {
	strs  []string
	ints  []int
	asked int
}

func (p *fakePrompter) AskString(title, prompt string) (string, bool) {
	p.asked++
	if len(p.strs) == 0 {
		return "", false
	}
	s := p.strs[0]
	p.strs = p.strs[1:]
	return s, true
}

func (p *fakePrompter) AskInteger(title, prompt string) (int, bool) {
	if len(p.ints) == 0 {
		return 0, false
	}
	v := p.ints[0]
	p.ints = p.ints[1:]
	return v, true
}

func fixedColor() uint32 { return 0x336699 }

func newDataset(t *testing.T, names ...string) dataset.Layout {
	t.Helper()
	l := dataset.NewLayout(t.TempDir())
	if err := os.MkdirAll(l.Images, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if err := os.WriteFile(l.ImagePath(n), []byte("px"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func writeLabels(t *testing.T, l dataset.Layout, image, content string) {
	t.Helper()
	if err := os.MkdirAll(l.Labels, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.LabelPath(image), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestController(t *testing.T, l dataset.Layout, cfg *config.Config, p *fakePrompter, r *fakeRenderer) *Controller {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if r == nil {
		r = &fakeRenderer{}
	}
	collab := Collaborators{Renderer: r}
	if p != nil {
		collab.Prompter = p
	}
	return NewController(discardLogger, cfg, l, labels.NewCodec(labels.Strict, discardLogger), collab, fixedColor)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestController_StartWithoutImages(t *testing.T) {
	c := newTestController(t, newDataset(t), nil, nil, nil)
	if err := c.Start(); !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
	if moved, err := c.Next(); moved || err != nil {
		t.Fatalf("next on empty set: moved=%v err=%v", moved, err)
	}
	if err := c.PointerDown(10, 10); err != nil || c.State() != StateIdle {
		t.Fatalf("pointer on empty set must be ignored: %v %v", err, c.State())
	}
}

func TestController_DrawNewBoxWithArmedClass(t *testing.T) {
	l := newDataset(t, "a.png", "b.png")
	c := newTestController(t, l, nil, nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Frame() == nil {
		t.Fatalf("expected rendered frame")
	}
	c.ArmClass("cat")
	if err := c.PointerDown(100, 100); err != nil {
		t.Fatalf("down: %v", err)
	}
	if c.State() != StateDraggingNewBox {
		t.Fatalf("expected drawing state, got %v", c.State())
	}
	_ = c.PointerMove(300, 200)
	band, ok := c.RubberBand()
	if !ok || band.Right != 300 || band.Bottom != 200 {
		t.Fatalf("unexpected rubber band %+v %v", band, ok)
	}
	if err := c.PointerUp(300, 200); err != nil {
		t.Fatalf("up: %v", err)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after release, got %v", c.State())
	}
	boxes := c.Boxes()
	if len(boxes) != 1 {
		t.Fatalf("expected one box, got %d", len(boxes))
	}
	b := boxes[0]
	if b.Class != 0 || !near(b.CX, 200.0/1200) || !near(b.CY, 150.0/900) || !near(b.W, 200.0/1200) || !near(b.H, 100.0/900) {
		t.Fatalf("unexpected box %+v", *b)
	}
	res, err := labels.NewCodec(labels.Strict, nil).Load(l.LabelPath("a.png"))
	if err != nil || len(res.Boxes) != 1 || *res.Boxes[0] != *b {
		t.Fatalf("box not persisted: %v %+v", err, res)
	}
}

func TestController_NewBoxPromptsForClass(t *testing.T) {
	l := newDataset(t, "a.png")
	p := &fakePrompter{strs: []string{"dog"}}
	c := newTestController(t, l, nil, p, nil)
	_ = c.Start()
	_ = c.PointerDown(10, 10)
	if err := c.PointerUp(60, 60); err != nil {
		t.Fatalf("up: %v", err)
	}
	if p.asked != 1 || c.Session().ArmedClass != "dog" {
		t.Fatalf("expected prompt to arm dog: asked=%d armed=%q", p.asked, c.Session().ArmedClass)
	}
	if len(c.Boxes()) != 1 {
		t.Fatalf("expected one box")
	}
	// armed class is reused without prompting
	_ = c.PointerDown(400, 400)
	_ = c.PointerUp(500, 500)
	if p.asked != 1 || len(c.Boxes()) != 2 {
		t.Fatalf("second box should reuse armed class: asked=%d boxes=%d", p.asked, len(c.Boxes()))
	}
}

func TestController_CancelledPromptDiscardsBox(t *testing.T) {
	l := newDataset(t, "a.png")
	c := newTestController(t, l, nil, &fakePrompter{}, nil)
	_ = c.Start()
	_ = c.PointerDown(10, 10)
	if err := c.PointerUp(60, 60); err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(c.Boxes()) != 0 || c.State() != StateIdle {
		t.Fatalf("box must be discarded, boxes=%d state=%v", len(c.Boxes()), c.State())
	}
	if _, err := os.Stat(l.LabelPath("a.png")); !os.IsNotExist(err) {
		t.Fatalf("no label file expected: %v", err)
	}
}

func TestController_NewBoxMinimumSize(t *testing.T) {
	c := newTestController(t, newDataset(t, "a.png"), nil, nil, nil)
	_ = c.Start()
	c.ArmClass("cat")
	_ = c.PointerDown(100, 100)
	_ = c.PointerUp(102, 101)
	r := geometry.ToPixelRect(*c.Boxes()[0], 1200, 900, 1)
	if !near(r.Left, 100) || !near(r.Right, 110) || !near(r.Top, 100) || !near(r.Bottom, 110) {
		t.Fatalf("expected 10px box at anchor, got %+v", r)
	}
	// the release point is clamped to the canvas
	_ = c.PointerDown(1150, 50)
	_ = c.PointerUp(1250, 20)
	r = geometry.ToPixelRect(*c.Boxes()[1], 1200, 900, 1)
	if !near(r.Right, 1200) || !near(r.Left, 1150) || !near(r.Top, 20) || !near(r.Bottom, 50) {
		t.Fatalf("unexpected clamped box %+v", r)
	}
	// near the right border a tiny box grows inward
	_ = c.PointerDown(1199, 400)
	_ = c.PointerUp(1199, 400)
	r = geometry.ToPixelRect(*c.Boxes()[2], 1200, 900, 1)
	if !near(r.Right, 1200) || !near(r.Left, 1190) {
		t.Fatalf("expected box pushed inside canvas, got %+v", r)
	}
}

func TestController_NewBoxOnCanvasSmallerThanMinimum(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CanvasWidth, cfg.CanvasHeight = 5, 5
	c := newTestController(t, newDataset(t, "a.png"), cfg, nil, nil)
	_ = c.Start()
	c.ArmClass("cat")
	_ = c.PointerDown(2, 2)
	if err := c.PointerUp(2, 2); err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(c.Boxes()) != 1 {
		t.Fatalf("expected one box, got %d", len(c.Boxes()))
	}
	b := c.Boxes()[0]
	if !near(b.W, 1) || !near(b.H, 1) || !near(b.CX, 0.5) || !near(b.CY, 0.5) {
		t.Fatalf("expected box covering the canvas, got %+v", *b)
	}
}

// box with pixel edges (100,100)-(300,300) on the default 1200x900 canvas
const squareLabel = "0 0.16666666666666666 0.2222222222222222 0.16666666666666666 0.2222222222222222\n"

func TestController_ResizeClampsToMinimumSeparation(t *testing.T) {
	l := newDataset(t, "a.png")
	writeLabels(t, l, "a.png", squareLabel)
	c := newTestController(t, l, nil, nil, nil)
	if err := c.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.PointerDown(300, 200); err != nil {
		t.Fatalf("down: %v", err)
	}
	if c.State() != StateResizingHandle {
		t.Fatalf("expected resizing state, got %v", c.State())
	}
	if err := c.PointerMove(105, 200); err != nil {
		t.Fatalf("move: %v", err)
	}
	r := geometry.ToPixelRect(*c.Boxes()[0], 1200, 900, 1)
	if r.Right < 110-1e-6 || !near(r.Left, 100) {
		t.Fatalf("right edge must stay 10px from left, got %+v", r)
	}
	// persisted on every move
	res, err := labels.NewCodec(labels.Strict, nil).Load(l.LabelPath("a.png"))
	if err != nil || len(res.Boxes) != 1 || !near(res.Boxes[0].W, 10.0/1200) {
		t.Fatalf("resize not persisted: %v %+v", err, res)
	}
	_ = c.PointerUp(105, 200)
	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %v", c.State())
	}
}

func TestController_ResizeWhileZoomed(t *testing.T) {
	l := newDataset(t, "a.png")
	writeLabels(t, l, "a.png", squareLabel)
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	if !c.ZoomIn() || !near(c.Session().Zoom, 1.2) {
		t.Fatalf("expected zoom 1.2, got %v", c.Session().Zoom)
	}
	// handles are hit in unzoomed pixels
	_ = c.PointerDown(300, 200)
	if c.State() != StateResizingHandle {
		t.Fatalf("expected resizing state, got %v", c.State())
	}
	if err := c.PointerMove(400, 200); err != nil {
		t.Fatalf("move: %v", err)
	}
	// zoomed left edge 120 stays; right becomes 400/1.2; both normalize against 1440x1080
	r := geometry.ToPixelRect(*c.Boxes()[0], 1200, 900, 1)
	wantRight := 100 + (400.0/1.2-120)*1200/1440
	if !near(r.Left, 100) || !near(r.Right, wantRight) || !near(r.Top, 100) || !near(r.Bottom, 300) {
		t.Fatalf("unexpected zoomed resize %+v, want right %v", r, wantRight)
	}
	_ = c.PointerUp(400, 200)
}

func TestController_ResizeCornerClampsToCanvas(t *testing.T) {
	l := newDataset(t, "a.png")
	writeLabels(t, l, "a.png", squareLabel)
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	_ = c.PointerDown(101, 101)
	_ = c.PointerMove(-50, -50)
	r := geometry.ToPixelRect(*c.Boxes()[0], 1200, 900, 1)
	if !near(r.Left, 0) || !near(r.Top, 0) || !near(r.Right, 300) || !near(r.Bottom, 300) {
		t.Fatalf("top-left drag must clamp to origin, got %+v", r)
	}
	if c.CursorAt(-50, -50).String() != "diagonal" {
		t.Fatalf("cursor should follow the grabbed corner")
	}
}

func TestController_BodyPressStaysIdle(t *testing.T) {
	l := newDataset(t, "a.png")
	writeLabels(t, l, "a.png", squareLabel)
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	_ = c.PointerDown(200, 200)
	if c.State() != StateIdle {
		t.Fatalf("body press must not start a gesture, got %v", c.State())
	}
	if c.BoxAt(200, 200) == nil {
		t.Fatalf("expected box under pointer")
	}
}

func TestController_NavigationPersistsBeforeLeaving(t *testing.T) {
	l := newDataset(t, "a.png", "b.png")
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	c.ArmClass("cat")
	_ = c.PointerDown(10, 10)
	_ = c.PointerUp(100, 100)
	moved, err := c.Next()
	if !moved || err != nil || c.CurrentImage() != "b.png" {
		t.Fatalf("next: moved=%v err=%v image=%q", moved, err, c.CurrentImage())
	}
	if len(c.Boxes()) != 0 {
		t.Fatalf("b.png must start empty")
	}
	if moved, _ := c.Next(); moved {
		t.Fatalf("next past the last image must not move")
	}

	restarted := newTestController(t, l, nil, nil, nil)
	if err := restarted.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if len(restarted.Boxes()) != 1 || restarted.CurrentImage() != "a.png" {
		t.Fatalf("box on a.png lost after navigation")
	}
	if moved, _ := restarted.Prev(); moved {
		t.Fatalf("prev before the first image must not move")
	}
}

func TestController_MarkNull(t *testing.T) {
	l := newDataset(t, "a.png", "b.png", "c.png")
	writeLabels(t, l, "b.png", squareLabel)
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	_, _ = c.Next()
	moved, err := c.MarkNull()
	if !moved || err != nil {
		t.Fatalf("mark null: moved=%v err=%v", moved, err)
	}
	if c.CurrentImage() != "c.png" || len(c.Images()) != 2 {
		t.Fatalf("expected c.png current in [a c], got %q %v", c.CurrentImage(), c.Images())
	}
	if _, err := os.Stat(filepath.Join(l.Null, "b.png")); err != nil {
		t.Fatalf("image not in null dir: %v", err)
	}
	if _, err := os.Stat(l.LabelPath("b.png")); err != nil {
		t.Fatalf("label file must stay: %v", err)
	}
	// last image: falls back to the new last one
	moved, _ = c.MarkNull()
	if !moved || c.CurrentImage() != "a.png" {
		t.Fatalf("expected a.png after nulling the last image, got %q", c.CurrentImage())
	}
	moved, err = c.MarkNull()
	if moved || err != nil || c.CurrentImage() != "" || len(c.Images()) != 0 {
		t.Fatalf("expected empty working set: moved=%v err=%v", moved, err)
	}
}

func TestController_Statistics(t *testing.T) {
	l := newDataset(t, "a.png", "b.png", "c.png")
	writeLabels(t, l, "a.png", squareLabel)
	writeLabels(t, l, "b.png", squareLabel)
	cfg := config.DefaultConfig()
	cfg.Classes = []config.ClassSeed{{Name: "cat", Index: 0}, {Name: "dog", Index: 1}}
	c := newTestController(t, l, cfg, nil, nil)
	_ = c.Start()
	st := c.Statistics()
	if st.TotalImages != 3 || st.AnnotatedImages != 2 {
		t.Fatalf("unexpected totals %+v", st)
	}
	if len(st.Classes) != 2 || st.Classes[0].Name != "cat" || st.Classes[0].Images != 2 || st.Classes[1].Images != 0 {
		t.Fatalf("unexpected class counts %+v", st.Classes)
	}
	// in-memory edits of the current image count without a reload
	_ = c.ClearAll()
	if st := c.Statistics(); st.AnnotatedImages != 1 {
		t.Fatalf("expected 1 annotated image after clearing, got %d", st.AnnotatedImages)
	}
}

func TestController_StrictLoadLocksImage(t *testing.T) {
	l := newDataset(t, "a.png", "b.png")
	writeLabels(t, l, "a.png", "0 0.5 0.5 0.1\n")
	c := newTestController(t, l, nil, nil, nil)
	err := c.Start()
	if !errors.Is(err, labels.ErrMalformedLine) {
		t.Fatalf("expected malformed line error, got %v", err)
	}
	if !c.Locked() || c.Frame() == nil {
		t.Fatalf("expected locked image that still displays")
	}
	if err := c.ClearAll(); !errors.Is(err, ErrLabelsLocked) {
		t.Fatalf("expected ErrLabelsLocked, got %v", err)
	}
	if err := c.PointerDown(500, 500); !errors.Is(err, ErrLabelsLocked) {
		t.Fatalf("expected drawing refused, got %v", err)
	}
	if moved, err := c.Next(); !moved || err != nil {
		t.Fatalf("navigation must still work: %v %v", moved, err)
	}
	data, _ := os.ReadFile(l.LabelPath("a.png"))
	if string(data) != "0 0.5 0.5 0.1\n" {
		t.Fatalf("malformed file overwritten: %q", data)
	}
	if c.Locked() {
		t.Fatalf("lock must not carry over to the next image")
	}
	if st := c.Statistics(); st.Unreadable != 1 {
		t.Fatalf("expected one unreadable label file, got %+v", st)
	}
}

func TestController_ImageLoadErrorKeepsSession(t *testing.T) {
	l := newDataset(t, "a.png", "b.png")
	c := newTestController(t, l, nil, nil, &fakeRenderer{fail: map[string]bool{"a.png": true}})
	err := c.Start()
	var ile *ImageLoadError
	if !errors.As(err, &ile) || filepath.Base(ile.Path) != "a.png" {
		t.Fatalf("expected ImageLoadError for a.png, got %v", err)
	}
	if c.Frame() != nil || c.CurrentImage() != "a.png" {
		t.Fatalf("expected blank frame on a.png")
	}
	if moved, err := c.Next(); !moved || err != nil || c.Frame() == nil {
		t.Fatalf("next image should load: %v %v", moved, err)
	}
}

func TestController_ZoomClampedAndIdleOnly(t *testing.T) {
	c := newTestController(t, newDataset(t, "a.png"), nil, nil, nil)
	_ = c.Start()
	for i := 0; i < 20; i++ {
		c.ZoomIn()
	}
	if c.Session().Zoom != 3.0 {
		t.Fatalf("zoom must cap at 3, got %v", c.Session().Zoom)
	}
	if c.ZoomIn() {
		t.Fatalf("zoom at max must report no change")
	}
	for i := 0; i < 40; i++ {
		c.ZoomOut()
	}
	if c.Session().Zoom != 0.5 {
		t.Fatalf("zoom must floor at 0.5, got %v", c.Session().Zoom)
	}
	c.ArmClass("cat")
	_ = c.PointerDown(10, 10)
	if c.ZoomIn() {
		t.Fatalf("zoom during a gesture must be ignored")
	}
}

func TestController_ListenerSeesTransitions(t *testing.T) {
	c := newTestController(t, newDataset(t, "a.png"), nil, nil, nil)
	_ = c.Start()
	c.ArmClass("cat")
	var got []State
	c.AddListener(func(prev, next State) { got = append(got, next) })
	_ = c.PointerDown(10, 10)
	_ = c.PointerUp(50, 50)
	if len(got) != 2 || got[0] != StateDraggingNewBox || got[1] != StateIdle {
		t.Fatalf("unexpected transitions %v", got)
	}
}

func TestController_SeedClasses(t *testing.T) {
	p := &fakePrompter{strs: []string{"cat", "dog", "bird", ""}, ints: []int{3, 3}}
	c := newTestController(t, newDataset(t, "a.png"), nil, p, nil)
	if n := c.SeedClasses(); n != 1 {
		t.Fatalf("expected one registered class (dog conflicts, bird cancelled), got %d", n)
	}
	if cl, ok := c.Registry().ByName("cat"); !ok || cl.Index != 3 {
		t.Fatalf("cat not registered at 3: %+v", cl)
	}
	if idx := c.ArmClass("fish"); idx != 4 {
		t.Fatalf("new class must follow the highest index, got %d", idx)
	}
}

func TestController_ReassignAndRemove(t *testing.T) {
	l := newDataset(t, "a.png")
	writeLabels(t, l, "a.png", squareLabel+squareLabel)
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	b := c.BoxAt(200, 200)
	if err := c.ReassignClass(b, "truck"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if name := c.Registry().Name(b.Class); name != "truck" {
		t.Fatalf("expected truck, got %q", name)
	}
	if err := c.RemoveBox(b); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := c.RemoveBox(b); err != nil {
		t.Fatalf("second remove must be a no-op: %v", err)
	}
	res, _ := labels.NewCodec(labels.Strict, nil).Load(l.LabelPath("a.png"))
	if len(res.Boxes) != 1 || res.Boxes[0].Class != 0 {
		t.Fatalf("unexpected persisted boxes %+v", res.Boxes)
	}
}

func TestController_UnknownIndicesGetPlaceholders(t *testing.T) {
	l := newDataset(t, "a.png")
	writeLabels(t, l, "a.png", "4 0.5 0.5 0.1 0.1\n")
	c := newTestController(t, l, nil, nil, nil)
	_ = c.Start()
	if name := c.Registry().Name(4); name != "class_4" {
		t.Fatalf("expected placeholder, got %q", name)
	}
	if _, ok := c.Registry().ByName("class_4"); !ok {
		t.Fatalf("placeholder must be registered")
	}
}
