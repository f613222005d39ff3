package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/soocke/boxlabel-go/domain/annotate"
	"github.com/soocke/boxlabel-go/domain/geometry"
)

// StatusSource provides the controller state shown on the status line.
type StatusSource interface {
	State() annotate.State
	Session() annotate.Session
	CurrentImage() string
	ImageCount() int
	Boxes() []*geometry.Box
	Locked() bool
}

// StatusView sets the status line in the view.
type StatusView interface{ SetStatus(string) }

// StatusPresenter receives controller transitions and ticks, and updates the status line.
type StatusPresenter struct {
	src     StatusSource
	view    StatusView
	latest  string // last reflected text
	pending []annotate.State
}

func NewStatusPresenter(src StatusSource, view StatusView) *StatusPresenter {
	return &StatusPresenter{src: src, view: view}
}

// OnState queues a transitioned state from the controller listener.
//
// The latest queued state will be reflected on the next Tick.
func (p *StatusPresenter) OnState(prev, next annotate.State) {
	if p == nil {
		return
	}
	p.pending = append(p.pending, next)
}

// Tick renders the status line and pushes it to the view when it changed.
// It clears the pending queue after processing.
func (p *StatusPresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	st := p.src.State()
	if len(p.pending) > 0 {
		st = p.pending[len(p.pending)-1]
		p.pending = p.pending[:0]
	}
	text := StatusLine(st, p.src)
	if text != p.latest {
		p.latest = text
		p.view.SetStatus(text)
	}
}

// StatusLine formats state, position, zoom, armed class and box count.
func StatusLine(st annotate.State, src StatusSource) string {
	sess := src.Session()
	name := src.CurrentImage()
	if name == "" {
		return fmt.Sprintf("State: %s | no images", st)
	}
	class := sess.ArmedClass
	if class == "" {
		class = "<none>"
	}
	parts := []string{
		"State: " + st.String(),
		fmt.Sprintf("%d/%d %s", sess.ImageIndex+1, src.ImageCount(), name),
		fmt.Sprintf("zoom %.2fx", sess.Zoom),
		"class: " + class,
		fmt.Sprintf("boxes: %d", len(src.Boxes())),
	}
	if src.Locked() {
		parts = append(parts, "LOCKED")
	}
	return strings.Join(parts, " | ")
}
